package runner

import "math"

// SpeedController tracks the player's scroll speed inside the current
// phase's envelope. Player intents only move the target; Advance eases the
// current speed toward it.
type SpeedController struct {
	current float64
	target  float64
	min     float64
	max     float64

	steps []float64
	step  int

	accel float64
	decel float64
}

// NewSpeedController creates a controller over the given step table.
// An empty table behaves as the two-step table {0, 1}.
func NewSpeedController(steps []float64, accel, decel float64) *SpeedController {
	if len(steps) == 0 {
		steps = []float64{0, 1}
	}
	return &SpeedController{
		steps: steps,
		accel: accel,
		decel: decel,
	}
}

// Reset enters a fresh envelope at step 0 and sets both current and target
// to initial (clamped into the envelope).
func (s *SpeedController) Reset(min, max, initial float64) {
	s.min, s.max = min, max
	s.step = 0
	s.target = s.clamp(initial)
	s.current = s.target
}

// SetBounds switches to a new envelope on phase change. The target keeps
// its step percentage; the current speed is pulled inside the envelope.
func (s *SpeedController) SetBounds(min, max float64) {
	s.min, s.max = min, max
	s.target = s.speedAt(s.step)
	s.current = s.clamp(s.current)
}

// SetMax moves the ceiling only (difficulty growth).
func (s *SpeedController) SetMax(max float64) {
	s.max = max
	s.current = s.clamp(s.current)
}

// Advance eases the current speed toward the target by at most accel·dt
// (or decel·dt) and clamps it into the envelope.
func (s *SpeedController) Advance(dt float64) {
	switch {
	case s.current < s.target:
		s.current = math.Min(s.target, s.current+s.accel*dt)
	case s.current > s.target:
		s.current = math.Max(s.target, s.current-s.decel*dt)
	}
	s.current = s.clamp(s.current)
}

// SpeedUp moves one entry forward in the step table.
func (s *SpeedController) SpeedUp() {
	if s.step < len(s.steps)-1 {
		s.step++
	}
	s.target = s.speedAt(s.step)
}

// SlowDown applies a proportional brake of sqrt(min/max) to the target and
// re-synchronises the step index with it.
func (s *SpeedController) SlowDown() {
	brake := 0.0
	if s.max > 0 && s.min > 0 {
		brake = math.Sqrt(s.min / s.max)
	}
	s.target = math.Max(s.min, s.target*brake)
	s.syncStep(s.target)
}

// syncStep selects the largest step whose percentage is ≤ v's percentage.
func (s *SpeedController) syncStep(v float64) {
	span := s.max - s.min
	if span <= 0 {
		s.step = 0
		return
	}
	pct := (v - s.min) / span
	idx := 0
	for i, step := range s.steps {
		if pct < step {
			break
		}
		idx = i
	}
	s.step = idx
}

func (s *SpeedController) speedAt(step int) float64 {
	return s.min + s.steps[step]*(s.max-s.min)
}

func (s *SpeedController) clamp(v float64) float64 {
	return math.Max(s.min, math.Min(s.max, v))
}

// Current returns the current speed.
func (s *SpeedController) Current() float64 { return s.current }

// Target returns the speed the controller is easing toward.
func (s *SpeedController) Target() float64 { return s.target }

// Min returns the envelope floor.
func (s *SpeedController) Min() float64 { return s.min }

// Max returns the envelope ceiling.
func (s *SpeedController) Max() float64 { return s.max }

// Step returns the current index into the step table.
func (s *SpeedController) Step() int { return s.step }

// StepCount returns the size of the step table.
func (s *SpeedController) StepCount() int { return len(s.steps) }
