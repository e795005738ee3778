package config

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tri-runner/internal/runner"
)

// Validate rejects courses the engine cannot run at all. Softer problems
// (a phase referencing an obstacle with no definition, a zero duration) are
// left to the engine, which reports them while running.
func Validate(c Course) error {
	var errs []error
	t := c.Tuning.withDefaults()

	if t.Acceleration <= 0 || t.Deceleration <= 0 {
		errs = append(errs, fmt.Errorf("tuning: acceleration %v and deceleration %v must be positive", t.Acceleration, t.Deceleration))
	}
	if t.DistanceFactor <= 0 {
		errs = append(errs, fmt.Errorf("tuning: distance_factor %v must be positive", t.DistanceFactor))
	}
	if t.CullMargin < t.SpawnMargin {
		errs = append(errs, fmt.Errorf("tuning: cull_margin %v is below spawn_margin %v", t.CullMargin, t.SpawnMargin))
	}

	if c.Area.Width <= 0 || c.Area.Height <= 0 {
		errs = append(errs, fmt.Errorf("area must be positive, got %vx%v", c.Area.Width, c.Area.Height))
	}

	if len(c.Lanes) == 0 {
		errs = append(errs, errors.New("no lanes defined"))
	}
	for i, l := range c.Lanes {
		if l < 0 || l > 100 {
			errs = append(errs, fmt.Errorf("lane %d: %v is not a percentage", i, l))
		}
	}
	if len(c.Lanes) > 0 && (c.Player.StartLane < 0 || c.Player.StartLane >= len(c.Lanes)) {
		errs = append(errs, fmt.Errorf("player start_lane %d out of range [0,%d)", c.Player.StartLane, len(c.Lanes)))
	}

	if len(c.SpeedSteps) == 0 {
		errs = append(errs, errors.New("no speed steps defined"))
	}
	for i, s := range c.SpeedSteps {
		if s < 0 || s > 1 {
			errs = append(errs, fmt.Errorf("speed step %d: %v outside [0,1]", i, s))
		}
		if i > 0 && s < c.SpeedSteps[i-1] {
			errs = append(errs, fmt.Errorf("speed steps must be ascending, step %d is %v after %v", i, s, c.SpeedSteps[i-1]))
		}
	}

	for name := range c.Hitboxes {
		if _, ok := runner.ParseDiscipline(name); !ok {
			errs = append(errs, fmt.Errorf("hitbox %q: unknown discipline", name))
		}
	}
	for name, o := range c.Obstacles {
		if _, ok := runner.ParseObstacleKind(name); !ok {
			errs = append(errs, fmt.Errorf("obstacle %q: unknown kind", name))
		}
		if o.Width <= 0 || o.Height <= 0 {
			errs = append(errs, fmt.Errorf("obstacle %q: size must be positive", name))
		}
	}

	if len(c.Phases) == 0 {
		errs = append(errs, errors.New("no phases defined"))
	}
	prev := 0.0
	for i, p := range c.Phases {
		label := p.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
			errs = append(errs, fmt.Errorf("phase %s: missing name", label))
		}
		if _, ok := runner.ParseDiscipline(p.Discipline); !ok {
			errs = append(errs, fmt.Errorf("phase %s: unknown discipline %q", label, p.Discipline))
		}
		if p.Threshold <= prev {
			errs = append(errs, fmt.Errorf("phase %s: threshold %v must exceed %v", label, p.Threshold, prev))
		}
		prev = p.Threshold
		if p.MinSpeedFactor < 0 || p.MinSpeedFactor > p.MaxSpeedFactor {
			errs = append(errs, fmt.Errorf("phase %s: speed factors [%v,%v] are not a range", label, p.MinSpeedFactor, p.MaxSpeedFactor))
		}
		for _, name := range p.Obstacles {
			if _, ok := runner.ParseObstacleKind(name); !ok {
				errs = append(errs, fmt.Errorf("phase %s: unknown obstacle %q", label, name))
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: course %q: %w", c.ID, errors.Join(errs...))
}

// withDefaults fills tuning keys left out of a course file from the
// built-in course. Zero is never a usable value for these.
func (t TuningConfig) withDefaults() TuningConfig {
	def := runner.DefaultConfig().Tuning
	fill := func(v *float64, d float64) {
		if *v == 0 {
			*v = d
		}
	}
	fill(&t.Acceleration, def.Acceleration)
	fill(&t.Deceleration, def.Deceleration)
	fill(&t.DistanceFactor, def.DistanceFactor)
	fill(&t.CullMargin, def.CullMargin)
	fill(&t.BaseFrameDuration, def.BaseFrameDuration)
	fill(&t.MinFrameDuration, def.MinFrameDuration)
	return t
}

// Build validates the course and converts it to an engine configuration.
// Missing tuning keys take the built-in course's values.
func (c Course) Build() (runner.Config, error) {
	if err := Validate(c); err != nil {
		return runner.Config{}, err
	}
	c.Tuning = c.Tuning.withDefaults()

	rc := runner.Config{
		Obstacles:      make(map[runner.ObstacleKind]runner.ObstacleType, len(c.Obstacles)),
		Hitboxes:       make(map[runner.Discipline]runner.HitboxProfile, len(c.Hitboxes)),
		Lanes:          append([]float64(nil), c.Lanes...),
		SpeedSteps:     append([]float64(nil), c.SpeedSteps...),
		CrossingPoints: append([]float64(nil), c.CrossingPoints...),
		Area:           runner.Area{Width: c.Area.Width, Height: c.Area.Height},
		Player: runner.PlayerConfig{
			X:         c.Player.X,
			Width:     c.Player.Width,
			Height:    c.Player.Height,
			StartLane: c.Player.StartLane,
		},
		Scale: c.Scale,
		Tuning: runner.Tuning{
			InitialSpeed:      c.Tuning.InitialSpeed,
			Acceleration:      c.Tuning.Acceleration,
			Deceleration:      c.Tuning.Deceleration,
			DensityFactor:     c.Difficulty.DensityFactor,
			DistanceFactor:    c.Tuning.DistanceFactor,
			SpawnMargin:       c.Tuning.SpawnMargin,
			CullMargin:        c.Tuning.CullMargin,
			Jitter:            c.Tuning.Jitter,
			Parallax:          c.Tuning.Parallax,
			GroundScroll:      c.Tuning.GroundScroll,
			BaseFrameDuration: c.Tuning.BaseFrameDuration,
			MinFrameDuration:  c.Tuning.MinFrameDuration,
		},
	}
	if c.Difficulty.Enabled {
		rc.Tuning.MilestoneDistance = c.Difficulty.MilestoneDistance
		rc.Tuning.GrowthFactor = c.Difficulty.GrowthFactor
	}

	for name, h := range c.Hitboxes {
		d, _ := runner.ParseDiscipline(name)
		rc.Hitboxes[d] = runner.HitboxProfile{Width: h.Width, Height: h.Height, Top: h.Top}
	}

	for name, o := range c.Obstacles {
		k, _ := runner.ParseObstacleKind(name)
		t := runner.ObstacleType{
			Width:       o.Width,
			Height:      o.Height,
			SpeedFactor: o.SpeedFactor,
		}
		if len(o.Lanes) > 0 {
			t.AllowedLanes = append([]int(nil), o.Lanes...)
		}
		if o.FallSpeed != nil {
			t.Motion = runner.MotionCrossing
			t.FallSpeed = *o.FallSpeed
		}
		rc.Obstacles[k] = t
	}

	for _, p := range c.Phases {
		d, _ := runner.ParseDiscipline(p.Discipline)
		phase := runner.Phase{
			Name:           p.Name,
			Discipline:     d,
			Threshold:      p.Threshold,
			BaseSpeed:      p.BaseSpeed,
			MinSpeedFactor: p.MinSpeedFactor,
			MaxSpeedFactor: p.MaxSpeedFactor,
			Background:     p.Background,
			Ground:         p.Ground,
			SpawnInterval:  p.SpawnInterval,
			Duration:       p.Duration,
		}
		for _, name := range p.Obstacles {
			k, _ := runner.ParseObstacleKind(name)
			phase.Obstacles = append(phase.Obstacles, k)
		}
		rc.Phases = append(rc.Phases, phase)
	}
	return rc, nil
}
