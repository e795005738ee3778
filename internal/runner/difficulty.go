package runner

import "math"

// DifficultyScaler raises the phase's speed ceiling geometrically every
// milestone. The floor is never touched.
type DifficultyScaler struct {
	milestone float64
	growth    float64
}

// NewDifficultyScaler returns a scaler. A non-positive milestone distance
// disables growth.
func NewDifficultyScaler(milestone, growth float64) DifficultyScaler {
	return DifficultyScaler{milestone: milestone, growth: growth}
}

// Milestones returns how many milestones distance has passed.
func (d DifficultyScaler) Milestones(distance float64) int {
	if d.milestone <= 0 || distance <= 0 {
		return 0
	}
	return int(math.Floor(distance / d.milestone))
}

// MaxSpeed returns the phase ceiling after growth.
func (d DifficultyScaler) MaxSpeed(distance float64, p Phase) float64 {
	n := d.Milestones(distance)
	if n == 0 || d.growth <= 0 {
		return p.MaxSpeed()
	}
	return p.MaxSpeed() * math.Pow(d.growth, float64(n))
}
