// Package triathlon adapts the runner engine to the platform's Game
// interface: it loads a course, maps input actions to intents and draws
// snapshots into a terminal screen buffer.
package triathlon

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tri-runner/internal/config"
	"github.com/vovakirdan/tri-runner/internal/core"
	"github.com/vovakirdan/tri-runner/internal/registry"
	"github.com/vovakirdan/tri-runner/internal/runner"
)

// Recorder receives every tick the game feeds to the engine.
type Recorder interface {
	Begin(course string, seed int64)
	Tick(dt float64, intents []runner.Intent)
}

// fallbackCourseID names runner.DefaultConfig, raced when a course cannot load.
const fallbackCourseID = "triathlon"

// configPath stores the custom course path set via CLI
var configPath string
var difficultyPreset config.DifficultyPreset
var logger = log.New(io.Discard)

// SetConfigPath sets the custom course file for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset. Unknown names keep the
// course's own settings.
func SetDifficultyPreset(preset string) {
	p, err := config.ParsePreset(preset)
	if err != nil || preset == "" {
		difficultyPreset = ""
		return
	}
	difficultyPreset = p
}

// SetLogger sets the logger handed to every engine.
func SetLogger(l *log.Logger) {
	if l != nil {
		logger = l
	}
}

// Game plays one course.
type Game struct {
	id    string
	title string

	cfg      runner.Config
	engine   *runner.Engine
	snap     runner.Snapshot
	runtime  core.RuntimeConfig
	paused   bool
	recorder Recorder

	banner      string
	bannerUntil float64
}

// New creates a game for the course id.
func New(id, title string) *Game {
	return &Game{id: id, title: title}
}

// ID returns the course id.
func (g *Game) ID() string {
	return g.id
}

// Title returns the display name for this course.
func (g *Game) Title() string {
	return g.title
}

// SetRecorder attaches a recorder. It takes effect at the next Reset.
func (g *Game) SetRecorder(r Recorder) {
	g.recorder = r
}

// LoadCourse resolves the course configuration for id, applying the CLI
// config path and difficulty preset.
func LoadCourse(id string) (runner.Config, error) {
	c, err := config.Load(id, configPath)
	if err != nil {
		return runner.Config{}, err
	}
	if difficultyPreset != "" {
		config.ApplyPreset(&c, difficultyPreset)
	}
	return c.Build()
}

// Reset loads the course and starts a fresh run.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime

	cfg, err := LoadCourse(g.id)
	if err != nil {
		logger.Warn("course unavailable, racing the built-in triathlon", "course", g.id, "err", err)
		cfg = g.fallback()
	}

	// Build rejects what New would, so this only trips on hand-made configs.
	engine, err := runner.New(cfg, runner.WithSeed(runtime.Seed), runner.WithLogger(logger))
	if err != nil {
		logger.Warn("course rejected, racing the built-in triathlon", "course", g.id, "err", err)
		cfg = g.fallback()
		engine, _ = runner.New(cfg, runner.WithSeed(runtime.Seed), runner.WithLogger(logger))
	}
	g.cfg = cfg
	g.engine = engine
	g.engine.Start()
	g.snap = g.engine.Snapshot()
	g.paused = false
	g.banner = g.snap.Phase.Name
	g.bannerUntil = 2

	if g.recorder != nil {
		g.recorder.Begin(g.id, runtime.Seed)
	}
}

// fallback switches the game to the built-in course so stored runs and
// recordings name the course actually raced.
func (g *Game) fallback() runner.Config {
	g.id, g.title = fallbackCourseID, "Triathlon"
	return runner.DefaultConfig()
}

// Step applies the frame's actions in order, then advances the run by dt.
func (g *Game) Step(dt float64, in core.InputFrame) core.StepResult {
	if g.engine == nil || g.snap.Status.Finished() {
		return core.StepResult{State: g.State()}
	}

	// Handle pause toggle
	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	intents := Intents(in)
	for _, it := range intents {
		g.engine.Apply(it)
	}
	g.snap = g.engine.Step(dt)
	if g.recorder != nil {
		g.recorder.Tick(dt, intents)
	}

	if g.snap.PhaseChanged != nil {
		g.banner = g.snap.PhaseChanged.Name
		g.bannerUntil = g.snap.Elapsed + 2
	}
	return core.StepResult{State: g.State()}
}

// Intents maps platform actions to engine intents, keeping their order.
func Intents(in core.InputFrame) []runner.Intent {
	var out []runner.Intent
	for _, a := range in.Actions {
		switch a {
		case core.ActionLaneUp:
			out = append(out, runner.IntentLaneUp)
		case core.ActionLaneDown:
			out = append(out, runner.IntentLaneDown)
		case core.ActionFaster:
			out = append(out, runner.IntentSpeedUp)
		case core.ActionSlower:
			out = append(out, runner.IntentSlowDown)
		}
	}
	return out
}

// ClockSecond advances the race clock shown in the HUD.
func (g *Game) ClockSecond() {
	if g.engine == nil || g.paused {
		return
	}
	g.engine.ClockSecond()
	g.snap = g.engine.Snapshot()
}

// Snapshot returns the last engine snapshot.
func (g *Game) Snapshot() runner.Snapshot {
	return g.snap
}

// Seed returns the seed of the current run.
func (g *Game) Seed() int64 {
	return g.runtime.Seed
}

// State returns the platform summary of the run.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    int(g.snap.Distance),
		Distance: g.snap.Distance,
		Elapsed:  g.snap.Elapsed,
		Phase:    g.snap.PhaseIndex,
		GameOver: g.snap.Status.Finished(),
		Won:      g.snap.Status == runner.StatusWon,
		Paused:   g.paused,
	}
}

// Register the courses with the registry
func init() {
	registry.Register("triathlon", func() registry.Game {
		return New("triathlon", "Triathlon")
	})
	registry.Register("sprint", func() registry.Game {
		return New("sprint", "Sprint Triathlon")
	})
}
