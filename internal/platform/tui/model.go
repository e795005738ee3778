package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tri-runner/internal/core"
	"github.com/vovakirdan/tri-runner/internal/registry"
	"github.com/vovakirdan/tri-runner/internal/replay"
	"github.com/vovakirdan/tri-runner/internal/runner"
	"github.com/vovakirdan/tri-runner/internal/storage"
)

// SecondTicker is implemented by courses that keep a wall-clock race timer.
type SecondTicker interface {
	ClockSecond()
}

// RunReporter exposes the engine snapshot of the current run.
type RunReporter interface {
	Snapshot() runner.Snapshot
}

// RunOptions are optional extras for a terminal run.
type RunOptions struct {
	// Recorder must already be attached to the game. When RecordPath is set,
	// each finished run's recording is written there.
	Recorder   *replay.Recorder
	RecordPath string
	Logger     *log.Logger
}

// Model is the Bubble Tea model for running a course.
type Model struct {
	run        uint64 // tick messages from other runs are dropped
	game       registry.Game
	screen     *core.Screen
	store      *storage.Store
	config     core.RuntimeConfig
	opts       RunOptions
	keyMapper  *KeyMapper
	inputFrame core.InputFrame
	gameState  core.GameState
	quitting   bool
	runSaved   bool // Whether the current run has been stored

	// embedded models run inside a session; Back returns to its menu
	// instead of quitting the program.
	embedded   bool
	backToMenu bool
}

// NewModel creates a new Bubble Tea model for the given course.
func NewModel(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, opts RunOptions) Model {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = core.DefaultConfig().TickRate
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	return Model{
		run:        runSeq.Add(1),
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:      store,
		config:     cfg,
		opts:       opts,
		keyMapper:  NewKeyMapper(),
		inputFrame: core.NewInputFrame(),
	}
}

// Init initializes the model and starts the run.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	// Note: gameState will be set on first tick (value receiver limitation)

	return tea.Batch(tickCmd(m.run, m.config.TickRate), secondTickCmd(m.run))
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		if msg.Run != m.run {
			return m, nil
		}
		return m.handleTick()

	case SecondMsg:
		if msg.Run != m.run {
			return m, nil
		}
		if st, ok := m.game.(SecondTicker); ok && !m.gameState.GameOver {
			st.ClockSecond()
		}
		return m, secondTickCmd(m.run)
	}

	return m, nil
}

// handleKey buffers the key's action for the next tick.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	action, isQuit := m.keyMapper.MapKey(msg)
	switch {
	case isQuit:
		m.abandonRun()
		m.quitting = true
		return m, tea.Quit

	case action == core.ActionBack:
		// B or Esc leaves only when the run is over or paused
		if !m.gameState.GameOver && !m.gameState.Paused {
			return m, nil
		}
		m.abandonRun()
		if !m.embedded {
			m.quitting = true
			return m, tea.Quit
		}
		m.backToMenu = true
		return m, nil

	case action != core.ActionNone:
		m.inputFrame.Set(action)
	}
	return m, nil
}

// abandonRun stores an unfinished run that covered some distance.
func (m *Model) abandonRun() {
	if !m.gameState.GameOver && m.gameState.Distance > 0 {
		m.finishRun(storage.StatusQuit)
	}
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.inputFrame.Has(core.ActionRestart) && m.gameState.GameOver {
		// Reset seed for new run
		m.config.Seed = time.Now().UnixNano()
		m.game.Reset(m.config)
		m.gameState = m.game.State()
		m.runSaved = false
		m.inputFrame.Clear()
		return m, tickCmd(m.run, m.config.TickRate)
	}

	dt := 1.0 / float64(m.config.TickRate)
	result := m.game.Step(dt, m.inputFrame)
	m.gameState = result.State

	if m.gameState.GameOver {
		status := storage.StatusCrashed
		if m.gameState.Won {
			status = storage.StatusWon
		}
		m.finishRun(status)
	}

	// Clear input for next frame
	m.inputFrame.Clear()

	return m, tickCmd(m.run, m.config.TickRate)
}

// finishRun stores the current run once.
func (m *Model) finishRun(status string) {
	if m.runSaved {
		return
	}
	m.runSaved = true

	res := storage.RunResult{
		CourseID: m.game.ID(),
		Status:   status,
		Distance: m.gameState.Distance,
		Elapsed:  m.gameState.Elapsed,
		Phase:    m.gameState.Phase,
		Seed:     m.config.Seed,
	}
	if rep, ok := m.game.(RunReporter); ok {
		res.RaceSeconds = rep.Snapshot().DisplaySeconds
	}

	if m.opts.Recorder != nil && m.opts.RecordPath != "" {
		rec := m.opts.Recorder.Recording()
		if err := replay.Save(m.opts.RecordPath, rec); err != nil {
			m.opts.Logger.Warn("recording not saved", "path", m.opts.RecordPath, "err", err)
		} else {
			res.ReplayID = rec.ID
		}
	}

	if m.store == nil || res.Distance <= 0 {
		return
	}
	if _, err := m.store.SaveRun(res); err != nil {
		m.opts.Logger.Warn("run not saved", "course", res.CourseID, "err", err)
	}
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	dir := filepath.Join(os.Getenv("HOME"), ".trirunner", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp)
	path := filepath.Join(dir, filename)

	//nolint:errcheck // Best-effort save, run continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// State returns the last run summary.
func (m Model) State() core.GameState {
	return m.gameState
}

// Run starts the Bubble Tea program for one course.
func Run(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, opts RunOptions) error {
	model := NewModel(game, store, cfg, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err := p.Run()
	return err
}
