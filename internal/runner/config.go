package runner

// Area is the playable region in world units. y grows downward from the top edge.
type Area struct {
	Width  float64
	Height float64
}

// PlayerConfig places the player sprite. Width and Height are the native
// sprite size before Config.Scale is applied.
type PlayerConfig struct {
	X         float64
	Width     float64
	Height    float64
	StartLane int
}

// Tuning holds the engine's numeric constants.
type Tuning struct {
	InitialSpeed float64
	Acceleration float64 // speed units per second², applied toward the target
	Deceleration float64

	DensityFactor     float64 // >1 spawns more often
	MilestoneDistance float64 // meters per difficulty milestone
	GrowthFactor      float64 // max-speed multiplier per milestone
	DistanceFactor    float64 // global scale on distance calibration

	SpawnMargin float64 // lane obstacles appear this far past the right edge
	CullMargin  float64 // safety bound beyond the opposite edges
	Jitter      float64 // vertical spawn jitter span, further capped by obstacle height

	Parallax     float64 // background scroll per unit of speed
	GroundScroll float64 // constant ground scroll, units per second

	BaseFrameDuration float64 // seconds per sprite frame at base speed
	MinFrameDuration  float64
}

// Config is everything the engine needs for a run. It is treated as
// immutable once handed to New.
type Config struct {
	Phases    []Phase
	Obstacles map[ObstacleKind]ObstacleType
	Hitboxes  map[Discipline]HitboxProfile

	Lanes          []float64 // percent from the bottom of the area, one entry per lane
	SpeedSteps     []float64 // ascending fractions of [min, max]
	CrossingPoints []float64 // percent of area width where crossing obstacles enter

	Area   Area
	Player PlayerConfig
	Scale  float64 // global sprite scale for player and obstacles
	Tuning Tuning
}

// TotalDistance returns the distance at which the run is won.
func (c *Config) TotalDistance() float64 {
	if len(c.Phases) == 0 {
		return 0
	}
	return c.Phases[len(c.Phases)-1].Threshold
}

// HitboxFor returns the hitbox profile for a discipline.
func (c *Config) HitboxFor(d Discipline) HitboxProfile {
	if p, ok := c.Hitboxes[d]; ok {
		return p
	}
	return fullSprite
}

func (c *Config) scale() float64 {
	if c.Scale <= 0 {
		return 1
	}
	return c.Scale
}

// DefaultConfig returns the full-distance triathlon course.
func DefaultConfig() Config {
	return Config{
		Phases: []Phase{
			{
				Name: "Swim", Discipline: DisciplineSwim,
				Threshold: 1300, BaseSpeed: 100,
				MinSpeedFactor: 0.05, MaxSpeedFactor: 2,
				Background: "bg_swim", Ground: "ground_swim",
				Obstacles:     []ObstacleKind{KindBarge, KindDebris},
				SpawnInterval: 1.8, Duration: 20,
			},
			{
				Name: "Bike", Discipline: DisciplineBike,
				Threshold: 9000, BaseSpeed: 100,
				MinSpeedFactor: 0.1, MaxSpeedFactor: 5,
				Background: "bg_bike", Ground: "ground_bike",
				Obstacles:     []ObstacleKind{KindCar, KindManhole, KindBin, KindParkedCar},
				SpawnInterval: 2.0, Duration: 60,
			},
			{
				Name: "Run", Discipline: DisciplineRun,
				Threshold: 16000, BaseSpeed: 100,
				MinSpeedFactor: 0.1, MaxSpeedFactor: 3.5,
				Background: "bg_run", Ground: "ground_bike",
				Obstacles: []ObstacleKind{
					KindPedestrian, KindManhole, KindBin, KindCar,
					KindOncomingPedestrian, KindParkedCar, KindCrossingPedestrian,
				},
				SpawnInterval: 1.8, Duration: 30,
			},
		},
		Obstacles: map[ObstacleKind]ObstacleType{
			KindBarge:              {Width: 200, Height: 75, SpeedFactor: 1.0, AllowedLanes: []int{0, 2, 4}},
			KindDebris:             {Width: 30, Height: 30, SpeedFactor: 1.0},
			KindCar:                {Width: 100, Height: 50, SpeedFactor: 1.0, AllowedLanes: []int{1, 2, 3, 4}},
			KindParkedCar:          {Width: 95, Height: 45, SpeedFactor: 1.0, AllowedLanes: []int{1, 2, 3, 4}},
			KindPedestrian:         {Width: 45, Height: 45, SpeedFactor: 0.5, AllowedLanes: []int{0}},
			KindOncomingPedestrian: {Width: 45, Height: 43, SpeedFactor: 1.0, AllowedLanes: []int{0}},
			KindBin:                {Width: 50, Height: 45, SpeedFactor: 0.5, AllowedLanes: []int{0}},
			KindManhole:            {Width: 23, Height: 23, SpeedFactor: 0.5},
			KindCrossingPedestrian: {Width: 30, Height: 45, SpeedFactor: 0.5, Motion: MotionCrossing, FallSpeed: 60},
		},
		Hitboxes: map[Discipline]HitboxProfile{
			DisciplineSwim: {Width: 0.85, Height: 0.20, Top: 0.40},
			DisciplineBike: {Width: 0.15, Height: 0.45, Top: 0.40},
			DisciplineRun:  {Width: 0.32, Height: 0.48, Top: 0.45},
		},
		Lanes:          []float64{15, 32.5, 50, 67.5, 85},
		SpeedSteps:     []float64{0, 0.30, 0.60, 0.75, 0.875, 1},
		CrossingPoints: []float64{60, 77.5, 95},
		Area:           Area{Width: 960, Height: 480},
		Player:         PlayerConfig{X: 80, Width: 45, Height: 45, StartLane: 1},
		Scale:          1.3,
		Tuning: Tuning{
			InitialSpeed:      10,
			Acceleration:      2000,
			Deceleration:      2000,
			DensityFactor:     0.8,
			MilestoneDistance: 1500,
			GrowthFactor:      1.02,
			DistanceFactor:    0.6,
			SpawnMargin:       50,
			CullMargin:        100,
			Jitter:            20,
			Parallax:          0.5,
			GroundScroll:      20,
			BaseFrameDuration: 0.25,
			MinFrameDuration:  0.07,
		},
	}
}
