package runner

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"
)

func newTestEngine(t *testing.T, cfg Config, seed int64) *Engine {
	t.Helper()
	e, err := New(cfg, WithSeed(seed))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	e.Start()
	return e
}

// calmConfig has no obstacles so runs cannot end in a collision.
func calmConfig() Config {
	cfg := DefaultConfig()
	for i := range cfg.Phases {
		cfg.Phases[i].Obstacles = nil
	}
	return cfg
}

func TestNewRejectsEmptyCourse(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Phases = nil
	if _, err := New(cfg); !errors.Is(err, ErrNoPhases) {
		t.Errorf("Expected ErrNoPhases, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Lanes = nil
	if _, err := New(cfg); !errors.Is(err, ErrNoLanes) {
		t.Errorf("Expected ErrNoLanes, got %v", err)
	}
}

func TestStartInitialState(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), 1)
	s := e.Snapshot()

	if s.Status != StatusRunning {
		t.Errorf("Expected running, got %v", s.Status)
	}
	if s.PhaseIndex != 0 || s.Phase.Name != "Swim" {
		t.Errorf("Expected phase 0 Swim, got %d %q", s.PhaseIndex, s.Phase.Name)
	}
	if s.Speed != 10 || s.TargetSpeed != 10 {
		t.Errorf("Expected initial speed 10, got %v/%v", s.Speed, s.TargetSpeed)
	}
	if s.MinSpeed != 5 || s.MaxSpeed != 200 {
		t.Errorf("Expected swim envelope [5,200], got [%v,%v]", s.MinSpeed, s.MaxSpeed)
	}
	if s.Lane != 1 || s.LaneCount != 5 {
		t.Errorf("Expected lane 1 of 5, got %d of %d", s.Lane, s.LaneCount)
	}
	if s.TotalDistance != 16000 || s.Remaining != 16000 {
		t.Errorf("Expected 16000 remaining, got total=%v remaining=%v", s.TotalDistance, s.Remaining)
	}
}

func TestIntentsIgnoredWhenNotRunning(t *testing.T) {
	e, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	e.SpeedUp()
	e.ChangeLane(LaneUp)
	e.ClockSecond()
	s := e.Step(0.1)
	if s.Status != StatusInitial {
		t.Fatalf("Expected initial status, got %v", s.Status)
	}
	if s.SpeedStep != 0 || s.Lane != 1 || s.DisplaySeconds != 0 || s.Elapsed != 0 {
		t.Errorf("Expected no effect before Start, got step=%d lane=%d secs=%d elapsed=%v",
			s.SpeedStep, s.Lane, s.DisplaySeconds, s.Elapsed)
	}
}

func TestChangeLaneClamps(t *testing.T) {
	e := newTestEngine(t, calmConfig(), 1)

	e.ChangeLane(LaneDown)
	e.ChangeLane(LaneDown)
	e.ChangeLane(LaneDown)
	if got := e.Snapshot().Lane; got != 0 {
		t.Errorf("Expected lane 0, got %d", got)
	}

	for i := 0; i < 10; i++ {
		e.Apply(IntentLaneUp)
	}
	if got := e.Snapshot().Lane; got != 4 {
		t.Errorf("Expected lane 4, got %d", got)
	}
}

func TestIntentsAccumulateBetweenTicks(t *testing.T) {
	e := newTestEngine(t, calmConfig(), 1)
	e.SpeedUp()
	e.SpeedUp()
	e.SpeedUp()

	s := e.Step(0.01)
	// Swim envelope [5,200], step 3 is 75%.
	if !almostEqual(s.TargetSpeed, 5+0.75*195) {
		t.Errorf("Expected target %v, got %v", 5+0.75*195, s.TargetSpeed)
	}
	if !almostEqual(s.Speed, 30) {
		t.Errorf("Expected speed 10+2000*0.01=30, got %v", s.Speed)
	}
}

func TestDistanceIntegration(t *testing.T) {
	e := newTestEngine(t, calmConfig(), 1)
	s := e.Step(1)

	// 10 speed units * (1300 / (100*20) * 0.6) meters per unit.
	if !almostEqual(s.Distance, 10*0.39) {
		t.Errorf("Expected distance 3.9, got %v", s.Distance)
	}
	if s.Elapsed != 1 {
		t.Errorf("Expected elapsed 1, got %v", s.Elapsed)
	}
}

func TestPhaseTransition(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), 1)
	e.covered = 1300 - 0.01

	s := e.Step(0.05)
	if s.PhaseIndex != 1 {
		t.Fatalf("Expected phase 1 after crossing 1300, got %d (distance %v)", s.PhaseIndex, s.Distance)
	}
	if len(s.Obstacles) != 0 {
		t.Errorf("Expected obstacles cleared on phase change, got %d", len(s.Obstacles))
	}
	if s.PhaseChanged == nil || s.PhaseChanged.Name != "Bike" || s.PhaseChanged.Background != "bg_bike" {
		t.Errorf("Expected PhaseChanged for Bike, got %+v", s.PhaseChanged)
	}
	if s.BackgroundOffset != 0 || s.GroundOffset != 0 || s.Frame != 0 {
		t.Errorf("Expected scroll reset, got bg=%v ground=%v frame=%d", s.BackgroundOffset, s.GroundOffset, s.Frame)
	}
	if s.MinSpeed != 10 {
		t.Errorf("Expected bike min speed 10, got %v", s.MinSpeed)
	}
	if s.Speed < s.MinSpeed {
		t.Errorf("Speed %v below new min %v", s.Speed, s.MinSpeed)
	}

	next := e.Step(0.01)
	if next.PhaseChanged != nil {
		t.Error("Expected PhaseChanged only on the transition tick")
	}
}

func TestPhaseTransitionKeepsStepPercentage(t *testing.T) {
	e := newTestEngine(t, calmConfig(), 1)
	e.SpeedUp()
	e.SpeedUp() // 60%
	e.covered = 1300

	s := e.Step(0.001)
	if s.PhaseIndex != 1 {
		t.Fatalf("Expected phase 1, got %d", s.PhaseIndex)
	}
	want := 10 + 0.60*(500-10)
	if !almostEqual(s.TargetSpeed, want) {
		t.Errorf("Expected target %v at 60%% of the bike envelope, got %v", want, s.TargetSpeed)
	}
}

func TestWinAtTotalDistance(t *testing.T) {
	e := newTestEngine(t, calmConfig(), 1)
	e.setPhase(2)
	e.covered = 16000 - 0.001

	s := e.Step(0.1)
	if s.Status != StatusWon {
		t.Fatalf("Expected won, got %v at %v", s.Status, s.Distance)
	}
	if s.Remaining != 0 {
		t.Errorf("Expected nothing remaining, got %v", s.Remaining)
	}

	after := e.Step(1)
	if after.Distance != s.Distance || after.Elapsed != s.Elapsed {
		t.Error("Expected no progress after the run was won")
	}
}

func TestCollisionEndsRun(t *testing.T) {
	e := newTestEngine(t, calmConfig(), 1)
	hb := e.Hitbox()
	e.obstacles.obstacles = append(e.obstacles.obstacles, Obstacle{
		ID: 100, Kind: KindDebris,
		Type: ObstacleType{Width: hb.W, Height: hb.H},
		X:    hb.X, Y: hb.Y, W: hb.W, H: hb.H, Lane: 1,
	})

	s := e.Step(0.01)
	if s.Status != StatusGameOver {
		t.Fatalf("Expected game over, got %v", s.Status)
	}

	e.SpeedUp()
	e.ChangeLane(LaneUp)
	after := e.Step(0.5)
	if after.Distance != s.Distance || after.Lane != s.Lane || after.SpeedStep != s.SpeedStep {
		t.Error("Expected a finished run to ignore steps and intents")
	}

	e.Start()
	if got := e.Snapshot(); got.Status != StatusRunning || got.Distance != 0 || len(got.Obstacles) != 0 {
		t.Errorf("Expected restart to reset the run, got %+v", got)
	}
}

func TestDifficultyRaisesCeiling(t *testing.T) {
	e := newTestEngine(t, calmConfig(), 1)
	e.setPhase(1)
	e.covered = 3000

	s := e.Step(0.001)
	want := 100 * 5 * math.Pow(1.02, 2)
	if s.Milestones != 2 {
		t.Errorf("Expected 2 milestones, got %d", s.Milestones)
	}
	if !almostEqual(s.MaxSpeed, want) {
		t.Errorf("Expected max %v, got %v", want, s.MaxSpeed)
	}
	if s.MinSpeed != 10 {
		t.Errorf("Expected min unaffected at 10, got %v", s.MinSpeed)
	}
}

func TestRunInvariants(t *testing.T) {
	cfg := DefaultConfig()
	e := newTestEngine(t, cfg, 2024)
	rng := rand.New(rand.NewSource(7))

	prev := e.Snapshot()
	for i := 0; i < 20000 && prev.Running(); i++ {
		switch rng.Intn(6) {
		case 0:
			e.SpeedUp()
		case 1:
			e.SlowDown()
		case 2:
			e.ChangeLane(LaneUp)
		case 3:
			e.ChangeLane(LaneDown)
		}
		s := e.Step(1.0 / 60)

		if s.Speed < s.MinSpeed-1e-9 || s.Speed > s.MaxSpeed+1e-9 {
			t.Fatalf("tick %d: speed %v outside [%v,%v]", i, s.Speed, s.MinSpeed, s.MaxSpeed)
		}
		if s.Distance < prev.Distance {
			t.Fatalf("tick %d: distance decreased %v -> %v", i, prev.Distance, s.Distance)
		}
		if s.PhaseIndex < prev.PhaseIndex {
			t.Fatalf("tick %d: phase decreased %d -> %d", i, prev.PhaseIndex, s.PhaseIndex)
		}
		if s.Lane < 0 || s.Lane >= s.LaneCount {
			t.Fatalf("tick %d: lane %d out of range", i, s.Lane)
		}
		seen := make(map[uint64]bool, len(s.Obstacles))
		for _, o := range s.Obstacles {
			if seen[o.ID] {
				t.Fatalf("tick %d: obstacle %d listed twice", i, o.ID)
			}
			seen[o.ID] = true
		}
		prev = s
	}
}

func TestEngineDeterminism(t *testing.T) {
	run := func() []Snapshot {
		e := newTestEngine(t, DefaultConfig(), 42)
		pilot := NewAutopilot(e.Config())
		var out []Snapshot
		s := e.Snapshot()
		for i := 0; i < 3000 && s.Running(); i++ {
			for _, in := range pilot.Decide(s) {
				e.Apply(in)
			}
			s = e.Step(1.0 / 30)
			out = append(out, s)
		}
		return out
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("Trajectory length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Distance != b[i].Distance || a[i].PhaseIndex != b[i].PhaseIndex ||
			a[i].Status != b[i].Status || len(a[i].Obstacles) != len(b[i].Obstacles) {
			t.Fatalf("tick %d diverged: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSnapshotDoesNotAlias(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), 3)
	s := e.Step(0.01)
	if len(s.Obstacles) == 0 {
		t.Fatal("Expected the first tick to spawn an obstacle")
	}
	s.Obstacles[0].X = -1000

	if e.obstacles.Obstacles()[0].X == -1000 {
		t.Error("Snapshot obstacles alias engine state")
	}
}

func TestZeroDurationPhaseReportsDiagnostic(t *testing.T) {
	cfg := calmConfig()
	cfg.Phases[0].Duration = 0
	e := newTestEngine(t, cfg, 1)

	s := e.Step(1)
	if s.Distance != 0 {
		t.Errorf("Expected no progress with zero duration, got %v", s.Distance)
	}
	if len(s.Diagnostics) == 0 || !strings.Contains(s.Diagnostics[0], "Swim") {
		t.Errorf("Expected a diagnostic naming the phase, got %v", s.Diagnostics)
	}
	if s.Status != StatusRunning {
		t.Errorf("Expected the run to continue, got %v", s.Status)
	}

	if next := e.Step(1); len(next.Diagnostics) != 0 {
		t.Errorf("Expected diagnostics to be reported once, got %v", next.Diagnostics)
	}
}

func TestZeroTuningReportsDiagnostics(t *testing.T) {
	cfg := calmConfig()
	cfg.Tuning.Acceleration = 0
	cfg.Tuning.DistanceFactor = 0
	e := newTestEngine(t, cfg, 1)
	e.SpeedUp()

	s := e.Step(1)
	if s.Distance != 0 {
		t.Errorf("Expected no progress without a distance factor, got %v", s.Distance)
	}
	joined := strings.Join(s.Diagnostics, "\n")
	for _, want := range []string{"distance factor", "acceleration"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected a diagnostic mentioning %q, got %v", want, s.Diagnostics)
		}
	}
}

func TestMissingTypeReportsDiagnostic(t *testing.T) {
	cfg := DefaultConfig()
	delete(cfg.Obstacles, KindBarge)
	delete(cfg.Obstacles, KindDebris)
	e := newTestEngine(t, cfg, 1)

	s := e.Step(0.01)
	if len(s.Diagnostics) != 1 {
		t.Fatalf("Expected one diagnostic, got %v", s.Diagnostics)
	}
	if s.Status != StatusRunning || len(s.Obstacles) != 0 {
		t.Errorf("Expected the run to continue without obstacles, got %v with %d", s.Status, len(s.Obstacles))
	}
}

func TestScrollAndAnimation(t *testing.T) {
	e := newTestEngine(t, calmConfig(), 1)

	s := e.Step(0.1)
	if !almostEqual(s.BackgroundOffset, -10*0.1*0.5) {
		t.Errorf("Expected background offset -0.5, got %v", s.BackgroundOffset)
	}
	if !almostEqual(s.GroundOffset, -2) {
		t.Errorf("Expected ground offset -2, got %v", s.GroundOffset)
	}

	// Below base speed a frame lasts 250ms; swim has two frames.
	s = e.Step(0.2)
	if s.Frame != 1 {
		t.Errorf("Expected frame 1 after 300ms, got %d", s.Frame)
	}
	s = e.Step(0.25)
	if s.Frame != 0 {
		t.Errorf("Expected swim animation to wrap to frame 0, got %d", s.Frame)
	}
}

func TestClockSecond(t *testing.T) {
	e := newTestEngine(t, calmConfig(), 1)
	for i := 0; i < 65; i++ {
		e.ClockSecond()
	}
	s := e.Snapshot()
	if s.DisplaySeconds != 65 {
		t.Errorf("Expected 65 display seconds, got %d", s.DisplaySeconds)
	}
	if s.Elapsed != 0 {
		t.Errorf("ClockSecond must not advance the simulation, elapsed=%v", s.Elapsed)
	}
	if got := FormatTime(s.DisplaySeconds); got != "01h05" {
		t.Errorf("FormatTime(65) = %q, want 01h05", got)
	}
}

func TestAutopilotDodges(t *testing.T) {
	cfg := DefaultConfig()
	pilot := NewAutopilot(&cfg)
	e := newTestEngine(t, calmConfig(), 1)
	s := e.Snapshot()

	if got := pilot.Decide(s); len(got) != 1 || got[0] != IntentSpeedUp {
		t.Errorf("Expected speed-up on a clear course, got %v", got)
	}

	hb := s.Hitbox
	s.Obstacles = []Obstacle{{X: hb.Right() + 20, Y: hb.Y, W: 30, H: hb.H}}
	got := pilot.Decide(s)
	if len(got) != 1 || (got[0] != IntentLaneUp && got[0] != IntentLaneDown) {
		t.Errorf("Expected a lane change with an obstacle ahead, got %v", got)
	}

	s.Status = StatusGameOver
	if got := pilot.Decide(s); got != nil {
		t.Errorf("Expected no intents for a finished run, got %v", got)
	}
}
