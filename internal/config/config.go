// Package config provides YAML/TOML course loading, validation and
// difficulty presets for the triathlon runner.
package config

// Course is the file representation of a course. Names (obstacle kinds,
// disciplines) are plain strings here and are resolved by Build.
type Course struct {
	ID   string `yaml:"id" toml:"id"`
	Name string `yaml:"name" toml:"name"`

	Area   AreaConfig   `yaml:"area" toml:"area"`
	Scale  float64      `yaml:"scale" toml:"scale"`
	Player PlayerConfig `yaml:"player" toml:"player"`

	Lanes          []float64 `yaml:"lanes" toml:"lanes"` // percent from the bottom
	SpeedSteps     []float64 `yaml:"speed_steps" toml:"speed_steps"`
	CrossingPoints []float64 `yaml:"crossing_points" toml:"crossing_points"` // percent of width

	Tuning     TuningConfig     `yaml:"tuning" toml:"tuning"`
	Difficulty DifficultyConfig `yaml:"difficulty" toml:"difficulty"`

	Hitboxes  map[string]HitboxConfig   `yaml:"hitboxes" toml:"hitboxes"`
	Obstacles map[string]ObstacleConfig `yaml:"obstacles" toml:"obstacles"`
	Phases    []PhaseConfig             `yaml:"phases" toml:"phases"`
}

// AreaConfig is the playable area in world units.
type AreaConfig struct {
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
}

// PlayerConfig defines the player sprite.
type PlayerConfig struct {
	X         float64 `yaml:"x" toml:"x"`
	Width     float64 `yaml:"width" toml:"width"`
	Height    float64 `yaml:"height" toml:"height"`
	StartLane int     `yaml:"start_lane" toml:"start_lane"`
}

// TuningConfig holds motion and presentation constants.
type TuningConfig struct {
	InitialSpeed      float64 `yaml:"initial_speed" toml:"initial_speed"`
	Acceleration      float64 `yaml:"acceleration" toml:"acceleration"`
	Deceleration      float64 `yaml:"deceleration" toml:"deceleration"`
	DistanceFactor    float64 `yaml:"distance_factor" toml:"distance_factor"`
	SpawnMargin       float64 `yaml:"spawn_margin" toml:"spawn_margin"`
	CullMargin        float64 `yaml:"cull_margin" toml:"cull_margin"`
	Jitter            float64 `yaml:"jitter" toml:"jitter"`
	Parallax          float64 `yaml:"parallax" toml:"parallax"`
	GroundScroll      float64 `yaml:"ground_scroll" toml:"ground_scroll"`
	BaseFrameDuration float64 `yaml:"base_frame_duration" toml:"base_frame_duration"` // seconds
	MinFrameDuration  float64 `yaml:"min_frame_duration" toml:"min_frame_duration"`
}

// DifficultyConfig defines spawn density and the max-speed growth curve.
type DifficultyConfig struct {
	Enabled           bool    `yaml:"enabled" toml:"enabled"`
	DensityFactor     float64 `yaml:"density_factor" toml:"density_factor"`
	MilestoneDistance float64 `yaml:"milestone_distance" toml:"milestone_distance"` // meters
	GrowthFactor      float64 `yaml:"growth_factor" toml:"growth_factor"`           // per milestone
}

// HitboxConfig is a hitbox profile as fractions of the sprite size.
type HitboxConfig struct {
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
	Top    float64 `yaml:"top" toml:"top"`
}

// ObstacleConfig defines one obstacle kind. A fall speed marks a crossing
// obstacle; an empty lane list means any lane.
type ObstacleConfig struct {
	Width       float64  `yaml:"width" toml:"width"`
	Height      float64  `yaml:"height" toml:"height"`
	SpeedFactor float64  `yaml:"speed_factor" toml:"speed_factor"`
	FallSpeed   *float64 `yaml:"fall_speed,omitempty" toml:"fall_speed,omitempty"`
	Lanes       []int    `yaml:"lanes,omitempty" toml:"lanes,omitempty"`
}

// PhaseConfig defines one leg of the course.
type PhaseConfig struct {
	Name           string   `yaml:"name" toml:"name"`
	Discipline     string   `yaml:"discipline" toml:"discipline"`
	Threshold      float64  `yaml:"threshold" toml:"threshold"` // cumulative meters
	BaseSpeed      float64  `yaml:"base_speed" toml:"base_speed"`
	MinSpeedFactor float64  `yaml:"min_speed_factor" toml:"min_speed_factor"`
	MaxSpeedFactor float64  `yaml:"max_speed_factor" toml:"max_speed_factor"`
	Background     string   `yaml:"background" toml:"background"`
	Ground         string   `yaml:"ground" toml:"ground"`
	Obstacles      []string `yaml:"obstacles" toml:"obstacles"`
	SpawnInterval  float64  `yaml:"spawn_interval" toml:"spawn_interval"` // seconds at base speed
	Duration       float64  `yaml:"duration" toml:"duration"`             // seconds at base speed
}

// TotalDistance returns the last phase's threshold.
func (c Course) TotalDistance() float64 {
	if len(c.Phases) == 0 {
		return 0
	}
	return c.Phases[len(c.Phases)-1].Threshold
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)
