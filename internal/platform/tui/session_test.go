package tui

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tri-runner/internal/core"
	"github.com/vovakirdan/tri-runner/internal/storage"
)

func sessionUpdate(t *testing.T, s SessionModel, msg tea.Msg) (SessionModel, tea.Cmd) {
	t.Helper()
	next, cmd := s.Update(msg)
	sm, ok := next.(SessionModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return sm, cmd
}

func TestSessionDropsTicksOfLeftRun(t *testing.T) {
	cfg := core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60}
	s := NewSessionModel(nil, cfg, "tester", log.New(io.Discard))

	s, _ = sessionUpdate(t, s, keyMsg("enter"))
	if s.run == nil {
		t.Fatal("Expected a run after picking a course")
	}
	first := s.run.run

	s, _ = sessionUpdate(t, s, tickOf(*s.run)) // run ends
	s, _ = sessionUpdate(t, s, keyMsg("esc"))
	if s.run != nil {
		t.Fatal("Expected Back to return to the picker")
	}

	s, _ = sessionUpdate(t, s, keyMsg("enter"))
	if s.run == nil || s.run.run == first {
		t.Fatal("Expected a new run")
	}
	g := s.run.game.(*scriptedGame)

	s, cmd := sessionUpdate(t, s, SecondMsg{Run: first})
	if g.seconds != 0 || cmd != nil {
		t.Errorf("Expected the old run's second tick to be dropped, got %d seconds", g.seconds)
	}
	sessionUpdate(t, s, secondOf(*s.run))
	if g.seconds != 1 {
		t.Errorf("Expected the new run's clock at 1, got %d", g.seconds)
	}
}

func TestMenuShowsCourseHistory(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()
	if _, err := store.SaveRun(storage.RunResult{CourseID: "scripted", Status: storage.StatusWon, Distance: 500, Elapsed: 90}); err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}

	m := NewMenuModel(store, core.RuntimeConfig{ScreenW: 80, ScreenH: 24})
	out := m.View()
	for _, want := range []string{"Scripted", "best 01h30", "1 runs, 1 finished"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in menu, got:\n%s", want, out)
		}
	}

	empty := NewMenuModel(nil, core.RuntimeConfig{ScreenW: 80, ScreenH: 24})
	if !strings.Contains(empty.View(), "no runs yet") {
		t.Error("Expected an empty history without a store")
	}
}

func TestMenuSelection(t *testing.T) {
	m := NewMenuModel(nil, core.RuntimeConfig{ScreenW: 80, ScreenH: 24})

	next, _ := m.Update(keyMsg("down"))
	m = next.(MenuModel)
	if m.cursor != 0 {
		t.Errorf("Expected the cursor to stay on the only course, got %d", m.cursor)
	}

	next, _ = m.Update(keyMsg("tab"))
	if !next.(MenuModel).WantsScoreboard() {
		t.Error("Expected Tab to ask for the leaderboard")
	}

	next, _ = m.Update(keyMsg("enter"))
	if sel := next.(MenuModel).Selected(); sel == nil || sel.CourseID != "scripted" {
		t.Errorf("Expected scripted to be picked, got %+v", sel)
	}
}
