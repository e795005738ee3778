package config

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/vovakirdan/tri-runner/internal/runner"
)

//go:embed defaults/*.yaml
var defaultCourses embed.FS

// EmbeddedCourses returns the ids of the courses shipped with the binary.
func EmbeddedCourses() []string {
	entries, err := fs.ReadDir(defaultCourses, "defaults")
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(ids)
	return ids
}

func embeddedCourse(id string) ([]byte, bool) {
	data, err := defaultCourses.ReadFile(path.Join("defaults", id+".yaml"))
	if err != nil {
		return nil, false
	}
	return data, true
}

// DefaultCourse returns the hard-coded full triathlon course. It is the last
// fallback when no file can be read.
func DefaultCourse() Course {
	c := FromRunner(runner.DefaultConfig())
	c.ID = "triathlon"
	c.Name = "Triathlon"
	return c
}

// FromRunner converts an engine configuration back to its file form.
func FromRunner(rc runner.Config) Course {
	c := Course{
		Area:           AreaConfig{Width: rc.Area.Width, Height: rc.Area.Height},
		Scale:          rc.Scale,
		Player:         PlayerConfig{X: rc.Player.X, Width: rc.Player.Width, Height: rc.Player.Height, StartLane: rc.Player.StartLane},
		Lanes:          append([]float64(nil), rc.Lanes...),
		SpeedSteps:     append([]float64(nil), rc.SpeedSteps...),
		CrossingPoints: append([]float64(nil), rc.CrossingPoints...),
		Tuning: TuningConfig{
			InitialSpeed:      rc.Tuning.InitialSpeed,
			Acceleration:      rc.Tuning.Acceleration,
			Deceleration:      rc.Tuning.Deceleration,
			DistanceFactor:    rc.Tuning.DistanceFactor,
			SpawnMargin:       rc.Tuning.SpawnMargin,
			CullMargin:        rc.Tuning.CullMargin,
			Jitter:            rc.Tuning.Jitter,
			Parallax:          rc.Tuning.Parallax,
			GroundScroll:      rc.Tuning.GroundScroll,
			BaseFrameDuration: rc.Tuning.BaseFrameDuration,
			MinFrameDuration:  rc.Tuning.MinFrameDuration,
		},
		Difficulty: DifficultyConfig{
			Enabled:           rc.Tuning.MilestoneDistance > 0,
			DensityFactor:     rc.Tuning.DensityFactor,
			MilestoneDistance: rc.Tuning.MilestoneDistance,
			GrowthFactor:      rc.Tuning.GrowthFactor,
		},
		Hitboxes:  make(map[string]HitboxConfig, len(rc.Hitboxes)),
		Obstacles: make(map[string]ObstacleConfig, len(rc.Obstacles)),
	}

	for d, p := range rc.Hitboxes {
		c.Hitboxes[d.String()] = HitboxConfig{Width: p.Width, Height: p.Height, Top: p.Top}
	}
	for k, t := range rc.Obstacles {
		oc := ObstacleConfig{
			Width:       t.Width,
			Height:      t.Height,
			SpeedFactor: t.SpeedFactor,
			Lanes:       append([]int(nil), t.AllowedLanes...),
		}
		if t.Motion == runner.MotionCrossing {
			fall := t.FallSpeed
			oc.FallSpeed = &fall
		}
		c.Obstacles[k.String()] = oc
	}
	for _, p := range rc.Phases {
		pc := PhaseConfig{
			Name:           p.Name,
			Discipline:     p.Discipline.String(),
			Threshold:      p.Threshold,
			BaseSpeed:      p.BaseSpeed,
			MinSpeedFactor: p.MinSpeedFactor,
			MaxSpeedFactor: p.MaxSpeedFactor,
			Background:     p.Background,
			Ground:         p.Ground,
			SpawnInterval:  p.SpawnInterval,
			Duration:       p.Duration,
		}
		for _, k := range p.Obstacles {
			pc.Obstacles = append(pc.Obstacles, k.String())
		}
		c.Phases = append(c.Phases, pc)
	}
	return c
}
