package replay

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/vovakirdan/tri-runner/internal/runner"
)

// liveRun drives an engine with the autopilot while recording it.
func liveRun(t *testing.T, seed int64, ticks int) (runner.Snapshot, *Recording) {
	t.Helper()
	cfg := runner.DefaultConfig()
	e, err := runner.New(cfg, runner.WithSeed(seed))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	pilot := runner.NewAutopilot(&cfg)
	rec := NewRecorder()
	rec.Begin("triathlon", seed)

	e.Start()
	snap := e.Snapshot()
	for i := 0; i < ticks && !snap.Status.Finished(); i++ {
		intents := pilot.Decide(snap)
		for _, in := range intents {
			e.Apply(in)
		}
		dt := 1.0 / 60
		if i%3 == 0 {
			dt = 1.0 / 30
		}
		snap = e.Step(dt)
		rec.Tick(dt, intents)
	}
	return snap, rec.Recording()
}

func TestPlayReproducesRun(t *testing.T) {
	live, rec := liveRun(t, 99, 3000)

	got, err := Play(runner.DefaultConfig(), rec)
	if err != nil {
		t.Fatalf("Play() failed: %v", err)
	}
	if got.Status != live.Status {
		t.Errorf("Expected status %v, got %v", live.Status, got.Status)
	}
	if got.Distance != live.Distance || got.Elapsed != live.Elapsed {
		t.Errorf("Expected %.3fm at %.3fs, got %.3fm at %.3fs",
			live.Distance, live.Elapsed, got.Distance, got.Elapsed)
	}
	if got.Lane != live.Lane || got.SpeedStep != live.SpeedStep {
		t.Errorf("Expected lane %d step %d, got lane %d step %d",
			live.Lane, live.SpeedStep, got.Lane, got.SpeedStep)
	}
	if len(got.Obstacles) != len(live.Obstacles) {
		t.Errorf("Expected %d obstacles, got %d", len(live.Obstacles), len(got.Obstacles))
	}
}

func TestEncodeDecode(t *testing.T) {
	_, rec := liveRun(t, 3, 200)

	data, err := Encode(rec)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if back.ID != rec.ID || back.Course != "triathlon" || back.Seed != 3 {
		t.Errorf("Header mismatch: %+v", back)
	}
	if len(back.Ticks) != len(rec.Ticks) {
		t.Fatalf("Expected %d ticks, got %d", len(rec.Ticks), len(back.Ticks))
	}
	if back.Duration() != rec.Duration() {
		t.Errorf("Expected duration %v, got %v", rec.Duration(), back.Duration())
	}
}

func TestSaveLoad(t *testing.T) {
	live, rec := liveRun(t, 11, 500)
	path := filepath.Join(t.TempDir(), "run.trr")

	if err := Save(path, rec); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	got, err := Play(runner.DefaultConfig(), loaded)
	if err != nil {
		t.Fatalf("Play() failed: %v", err)
	}
	if got.Distance != live.Distance {
		t.Errorf("Expected %.3fm after reload, got %.3fm", live.Distance, got.Distance)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.trr")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	data, err := msgpack.Marshal(&Recording{Version: 42, Course: "triathlon"})
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	if _, err := Decode(data); !errors.Is(err, ErrVersion) {
		t.Errorf("Expected ErrVersion, got %v", err)
	}
	if _, err := Decode([]byte{0xc1}); err == nil {
		t.Error("Expected error for garbage input")
	}
}

func TestRecorderBeginResets(t *testing.T) {
	r := NewRecorder()
	r.Begin("sprint", 1)
	r.Tick(0.1, []runner.Intent{runner.IntentSpeedUp})
	first := r.Recording().ID

	r.Begin("sprint", 2)
	if len(r.Recording().Ticks) != 0 {
		t.Error("Expected Begin to drop old ticks")
	}
	if r.Recording().ID == first {
		t.Error("Expected a fresh recording id")
	}
}

func TestPlayIgnoresTicksAfterFinish(t *testing.T) {
	cfg := runner.DefaultConfig()
	rec := &Recording{Version: FormatVersion, Seed: 1}
	// Long enough to either crash or keep running; extra ticks must not panic.
	for i := 0; i < 2000; i++ {
		rec.Ticks = append(rec.Ticks, Tick{DT: 0.05, Intents: []runner.Intent{runner.IntentSpeedUp}})
	}
	snap, err := Play(cfg, rec)
	if err != nil {
		t.Fatalf("Play() failed: %v", err)
	}
	if snap.Elapsed > rec.Duration()+1e-9 {
		t.Errorf("Elapsed %v beyond recording %v", snap.Elapsed, rec.Duration())
	}

	if _, err := Play(runner.Config{}, rec); err == nil {
		t.Error("Expected error for an empty course")
	}
}
