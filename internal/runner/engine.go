// Package runner implements the triathlon simulation: speed control,
// distance integration, phase progression, obstacle spawning and
// collision detection. It performs no I/O and never reads a clock; the
// caller drives it with Step.
package runner

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tri-runner/internal/core"
)

// Construction errors.
var (
	ErrNoPhases = errors.New("runner: course has no phases")
	ErrNoLanes  = errors.New("runner: course has no lanes")
)

// Status is the lifecycle state of a run.
type Status int

const (
	StatusInitial Status = iota
	StatusRunning
	StatusGameOver
	StatusWon
)

func (s Status) String() string {
	switch s {
	case StatusInitial:
		return "initial"
	case StatusRunning:
		return "running"
	case StatusGameOver:
		return "game-over"
	case StatusWon:
		return "won"
	default:
		return "unknown"
	}
}

// Finished reports whether the status is terminal.
func (s Status) Finished() bool {
	return s == StatusGameOver || s == StatusWon
}

// LaneDirection is the direction of a lane change. Up means a higher lane index.
type LaneDirection int

const (
	LaneDown LaneDirection = -1
	LaneUp   LaneDirection = 1
)

// Intent is a discrete player request.
type Intent uint8

const (
	IntentSpeedUp Intent = iota + 1
	IntentSlowDown
	IntentLaneUp
	IntentLaneDown
)

func (i Intent) String() string {
	switch i {
	case IntentSpeedUp:
		return "speed-up"
	case IntentSlowDown:
		return "slow-down"
	case IntentLaneUp:
		return "lane-up"
	case IntentLaneDown:
		return "lane-down"
	default:
		return "none"
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for diagnostics and lifecycle events.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSeed sets the seed for obstacle selection.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// Engine owns all state of one run. It is not safe for concurrent use.
type Engine struct {
	cfg    Config
	logger *log.Logger
	seed   int64

	speed     *SpeedController
	distance  *DistanceIntegrator
	scaler    DifficultyScaler
	obstacles *ObstacleManager

	status         Status
	phase          int
	lane           int
	covered        float64
	elapsed        float64
	displaySeconds int
	milestones     int

	bgOffset     float64
	groundOffset float64
	frame        int
	frameTimer   float64

	phaseChanged *PhaseInfo
	pending      []string
	reported     map[string]bool
}

// New builds an engine for cfg. The engine stays in StatusInitial until Start.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if len(cfg.Phases) == 0 {
		return nil, ErrNoPhases
	}
	if len(cfg.Lanes) == 0 {
		return nil, ErrNoLanes
	}

	e := &Engine{
		cfg:    cfg,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.speed = NewSpeedController(cfg.SpeedSteps, cfg.Tuning.Acceleration, cfg.Tuning.Deceleration)
	e.distance = NewDistanceIntegrator(cfg.Phases, cfg.Tuning.DistanceFactor)
	e.scaler = NewDifficultyScaler(cfg.Tuning.MilestoneDistance, cfg.Tuning.GrowthFactor)
	e.obstacles = NewObstacleManager(e.seed, &e.cfg)
	e.lane = core.Clamp(cfg.Player.StartLane, 0, len(cfg.Lanes)-1)
	e.resetSpeed()
	return e, nil
}

// SetSeed changes the seed used by the next Start.
func (e *Engine) SetSeed(seed int64) {
	e.seed = seed
}

// Seed returns the seed of the current run.
func (e *Engine) Seed() int64 { return e.seed }

// Config returns the engine's course configuration.
func (e *Engine) Config() *Config { return &e.cfg }

// Status returns the lifecycle status.
func (e *Engine) Status() Status { return e.status }

// Start (re)initialises the run at phase 0 and sets it running.
func (e *Engine) Start() {
	e.phase = 0
	e.lane = core.Clamp(e.cfg.Player.StartLane, 0, len(e.cfg.Lanes)-1)
	e.covered = 0
	e.elapsed = 0
	e.displaySeconds = 0
	e.milestones = 0
	e.resetScroll()
	e.obstacles.Reset(e.seed)
	e.resetSpeed()
	e.phaseChanged = nil
	e.pending = nil
	e.reported = make(map[string]bool)
	for _, issue := range e.distance.Issues() {
		e.report(issue)
	}
	if t := e.cfg.Tuning; t.Acceleration <= 0 || t.Deceleration <= 0 {
		e.report(fmt.Sprintf("acceleration %.2f and deceleration %.2f must be positive, speed will not change",
			t.Acceleration, t.Deceleration))
	}
	e.status = StatusRunning
	e.logger.Debug("run started", "seed", e.seed, "phases", len(e.cfg.Phases), "lanes", len(e.cfg.Lanes))
}

func (e *Engine) resetSpeed() {
	p := e.cfg.Phases[0]
	e.speed.Reset(p.MinSpeed(), p.MaxSpeed(), e.cfg.Tuning.InitialSpeed)
}

func (e *Engine) resetScroll() {
	e.bgOffset = 0
	e.groundOffset = 0
	e.frame = 0
	e.frameTimer = 0
}

// Step advances the run by dt seconds and returns the resulting snapshot.
// Calls outside StatusRunning return the current snapshot unchanged.
func (e *Engine) Step(dt float64) Snapshot {
	if e.status != StatusRunning {
		return e.Snapshot()
	}
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		dt = 0
	}
	e.phaseChanged = nil
	e.elapsed += dt

	e.speed.Advance(dt)
	speed := e.speed.Current()
	e.covered += e.distance.MetersPerTick(e.phase, speed, dt)

	e.scroll(speed, dt)

	phase := e.cfg.Phases[e.phase]
	if _, err := e.obstacles.MaybeSpawn(e.elapsed, phase, speed); err != nil {
		e.report(fmt.Sprintf("phase %q: spawn skipped: %v", phase.Name, err))
	}
	e.obstacles.Update(speed, dt)

	if HasCollision(e.Hitbox(), e.obstacles.Obstacles()) {
		e.status = StatusGameOver
		e.logger.Info("run over", "reason", "collision", "phase", phase.Name,
			"distance", fmt.Sprintf("%.0f", e.covered), "elapsed", fmt.Sprintf("%.2f", e.elapsed))
		return e.flush()
	}

	e.checkPhase()
	if e.status == StatusRunning {
		e.milestones = e.scaler.Milestones(e.covered)
		e.speed.SetMax(e.scaler.MaxSpeed(e.covered, e.cfg.Phases[e.phase]))
	}
	return e.flush()
}

func (e *Engine) checkPhase() {
	last := len(e.cfg.Phases) - 1
	for e.phase < last && e.covered >= e.cfg.Phases[e.phase].Threshold {
		e.setPhase(e.phase + 1)
	}
	if e.phase == last && e.covered >= e.cfg.TotalDistance() {
		e.status = StatusWon
		e.logger.Info("run finished", "distance", fmt.Sprintf("%.0f", e.covered),
			"elapsed", fmt.Sprintf("%.2f", e.elapsed))
	}
}

func (e *Engine) setPhase(i int) {
	e.phase = i
	p := e.cfg.Phases[i]
	e.speed.SetBounds(p.MinSpeed(), p.MaxSpeed())
	e.obstacles.Clear()
	e.resetScroll()
	info := p.info(i)
	e.phaseChanged = &info
	e.logger.Debug("phase changed", "phase", p.Name, "discipline", p.Discipline,
		"distance", fmt.Sprintf("%.0f", e.covered))
}

func (e *Engine) scroll(speed, dt float64) {
	t := e.cfg.Tuning
	e.bgOffset -= speed * dt * t.Parallax
	e.groundOffset -= t.GroundScroll * dt

	p := e.cfg.Phases[e.phase]
	dur := t.BaseFrameDuration
	if p.BaseSpeed > 0 {
		dur /= math.Max(1, speed/p.BaseSpeed)
	}
	dur = math.Max(t.MinFrameDuration, dur)
	if dur <= 0 {
		return
	}
	frames := p.Discipline.FrameCount()
	e.frameTimer += dt
	for e.frameTimer >= dur {
		e.frameTimer -= dur
		e.frame = (e.frame + 1) % frames
	}
}

// report records a configuration problem for the next snapshot. Each distinct
// message is logged once per run.
func (e *Engine) report(msg string) {
	e.pending = append(e.pending, msg)
	if e.reported == nil {
		e.reported = make(map[string]bool)
	}
	if !e.reported[msg] {
		e.reported[msg] = true
		e.logger.Warn("course configuration", "issue", msg)
	}
}

func (e *Engine) flush() Snapshot {
	s := e.Snapshot()
	e.pending = nil
	return s
}

// SpeedUp moves the target speed one step up.
func (e *Engine) SpeedUp() {
	if e.status == StatusRunning {
		e.speed.SpeedUp()
	}
}

// SlowDown brakes the target speed.
func (e *Engine) SlowDown() {
	if e.status == StatusRunning {
		e.speed.SlowDown()
	}
}

// ChangeLane moves the player one lane in dir, clamped to the lane table.
func (e *Engine) ChangeLane(dir LaneDirection) {
	if e.status != StatusRunning {
		return
	}
	e.lane = core.Clamp(e.lane+int(dir), 0, len(e.cfg.Lanes)-1)
}

// Apply dispatches an intent to the matching request.
func (e *Engine) Apply(in Intent) {
	switch in {
	case IntentSpeedUp:
		e.SpeedUp()
	case IntentSlowDown:
		e.SlowDown()
	case IntentLaneUp:
		e.ChangeLane(LaneUp)
	case IntentLaneDown:
		e.ChangeLane(LaneDown)
	}
}

// ClockSecond advances the display timer. It has no effect on the simulation.
func (e *Engine) ClockSecond() {
	if e.status == StatusRunning {
		e.displaySeconds++
	}
}

// Hitbox returns the player's current collision box.
func (e *Engine) Hitbox() core.Box {
	p := e.cfg.Phases[e.phase]
	return PlayerHitbox(SpriteBox(&e.cfg, e.lane), e.cfg.HitboxFor(p.Discipline))
}
