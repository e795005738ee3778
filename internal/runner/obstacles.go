package runner

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/vovakirdan/tri-runner/internal/core"
)

// Spawn configuration errors. They are reported, never fatal.
var (
	ErrUnknownObstacle = errors.New("obstacle kind has no type config")
	ErrNoLane          = errors.New("obstacle kind has no usable lane")
	ErrNoCrossing      = errors.New("course has no crossing points")
)

const minSpeedRatio = 1e-3

// Obstacle is an active obstacle instance. W and H are already scaled.
type Obstacle struct {
	ID     uint64
	Kind   ObstacleKind
	Type   ObstacleType
	X, Y   float64
	W, H   float64
	Lane   int // -1 for crossing obstacles
	Motion MotionMode
}

// Box returns the obstacle's bounds in world units.
func (o Obstacle) Box() core.Box {
	return core.NewBox(o.X, o.Y, o.W, o.H)
}

// ObstacleManager spawns, moves and retires obstacles.
type ObstacleManager struct {
	obstacles []Obstacle
	rng       *rand.Rand
	cfg       *Config
	lastSpawn float64
	nextID    uint64
}

// NewObstacleManager creates a manager whose random choices are driven by seed.
func NewObstacleManager(seed int64, cfg *Config) *ObstacleManager {
	om := &ObstacleManager{
		obstacles: make([]Obstacle, 0, 16),
		cfg:       cfg,
	}
	om.Reset(seed)
	return om
}

// Reset clears all obstacles, reseeds the RNG and re-arms the spawn timer so
// the next MaybeSpawn fires immediately.
func (om *ObstacleManager) Reset(seed int64) {
	om.rng = rand.New(rand.NewSource(seed))
	om.nextID = 0
	om.lastSpawn = math.Inf(-1)
	om.Clear()
}

// Clear drops all active obstacles. The RNG and spawn timer are kept.
func (om *ObstacleManager) Clear() {
	om.obstacles = om.obstacles[:0]
}

// SpawnInterval returns the effective seconds between spawns at speed.
func (om *ObstacleManager) SpawnInterval(p Phase, speed float64) float64 {
	ratio := 1.0
	if p.BaseSpeed > 0 {
		ratio = math.Max(minSpeedRatio, speed/p.BaseSpeed)
	}
	density := om.cfg.Tuning.DensityFactor
	if density <= 0 {
		density = 1
	}
	return p.SpawnInterval / ratio / density
}

// MaybeSpawn adds one obstacle if the spawn interval has elapsed at now.
// The timer is re-armed even when the chosen kind cannot be placed; that
// case returns an error describing the configuration problem.
func (om *ObstacleManager) MaybeSpawn(now float64, p Phase, speed float64) (bool, error) {
	if len(p.Obstacles) == 0 {
		return false, nil
	}
	if now-om.lastSpawn < om.SpawnInterval(p, speed) {
		return false, nil
	}
	om.lastSpawn = now

	kind := p.Obstacles[om.rng.Intn(len(p.Obstacles))]
	typ, ok := om.cfg.Obstacles[kind]
	if !ok {
		return false, fmt.Errorf("%s: %w", kind, ErrUnknownObstacle)
	}

	s := om.cfg.scale()
	o := Obstacle{
		ID:     om.nextID,
		Kind:   kind,
		Type:   typ,
		W:      typ.Width * s,
		H:      typ.Height * s,
		Motion: typ.Motion,
	}

	switch typ.Motion {
	case MotionCrossing:
		if len(om.cfg.CrossingPoints) == 0 {
			return false, fmt.Errorf("%s: %w", kind, ErrNoCrossing)
		}
		road := om.cfg.CrossingPoints[om.rng.Intn(len(om.cfg.CrossingPoints))]
		o.Lane = -1
		o.X = om.cfg.Area.Width * road / 100
		o.Y = -o.H
	default:
		lanes := om.lanesFor(typ)
		if len(lanes) == 0 {
			return false, fmt.Errorf("%s: %w", kind, ErrNoLane)
		}
		o.Lane = lanes[om.rng.Intn(len(lanes))]
		span := math.Min(om.cfg.Tuning.Jitter, o.H)
		jitter := (om.rng.Float64() - 0.5) * span
		o.X = om.cfg.Area.Width + om.cfg.Tuning.SpawnMargin
		o.Y = om.cfg.Area.Height*(1-om.cfg.Lanes[o.Lane]/100) - o.H/2 + jitter
	}

	om.nextID++
	om.obstacles = append(om.obstacles, o)
	return true, nil
}

// lanesFor returns the type's allowed lanes that exist on this course.
func (om *ObstacleManager) lanesFor(typ ObstacleType) []int {
	n := len(om.cfg.Lanes)
	if typ.AllowedLanes == nil {
		lanes := make([]int, n)
		for i := range lanes {
			lanes[i] = i
		}
		return lanes
	}
	lanes := make([]int, 0, len(typ.AllowedLanes))
	for _, l := range typ.AllowedLanes {
		if l >= 0 && l < n {
			lanes = append(lanes, l)
		}
	}
	return lanes
}

// Update moves every obstacle once, then retires those that left the area.
// It returns how many were retired.
func (om *ObstacleManager) Update(speed, dt float64) int {
	for i := range om.obstacles {
		o := &om.obstacles[i]
		o.X -= speed * o.Type.SpeedFactor * dt
		if o.Motion == MotionCrossing {
			o.Y += o.Type.FallSpeed * dt
		}
	}

	kept := om.obstacles[:0]
	for _, o := range om.obstacles {
		if !om.offscreen(o) {
			kept = append(kept, o)
		}
	}
	removed := len(om.obstacles) - len(kept)
	om.obstacles = kept
	return removed
}

func (om *ObstacleManager) offscreen(o Obstacle) bool {
	area := om.cfg.Area
	margin := om.cfg.Tuning.CullMargin
	switch {
	case o.X+o.W < 0:
		return true
	case o.Motion == MotionCrossing && o.Y > area.Height:
		return true
	case o.X > area.Width+margin:
		return true
	case o.Y+o.H < -margin:
		return true
	}
	return false
}

// Obstacles returns the active obstacles. The slice is owned by the manager.
func (om *ObstacleManager) Obstacles() []Obstacle {
	return om.obstacles
}

// Count returns the number of active obstacles.
func (om *ObstacleManager) Count() int {
	return len(om.obstacles)
}
