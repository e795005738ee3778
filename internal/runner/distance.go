package runner

import "fmt"

// DistanceIntegrator converts speed into world distance. Each phase gets its
// own calibration so that covering the phase at base speed takes roughly the
// phase's target duration.
type DistanceIntegrator struct {
	perUnit []float64 // meters per speed unit per second, indexed by phase
	issues  []string
}

// NewDistanceIntegrator derives the calibration for every phase of phases.
// A non-positive distance factor, or a phase with a non-positive duration or
// base speed, makes no progress; the problem is reported through Issues.
func NewDistanceIntegrator(phases []Phase, distanceFactor float64) *DistanceIntegrator {
	d := &DistanceIntegrator{perUnit: make([]float64, len(phases))}
	if distanceFactor <= 0 {
		d.issues = append(d.issues, fmt.Sprintf(
			"distance factor %.2f must be positive, distance will not advance", distanceFactor))
		return d
	}
	prev := 0.0
	for i, p := range phases {
		span := p.Threshold - prev
		prev = p.Threshold
		if p.Duration <= 0 || p.BaseSpeed <= 0 {
			d.issues = append(d.issues, fmt.Sprintf(
				"phase %q: duration %.2f and base speed %.2f must be positive, distance will not advance",
				p.Name, p.Duration, p.BaseSpeed))
			continue
		}
		d.perUnit[i] = span / (p.BaseSpeed * p.Duration) * distanceFactor
	}
	return d
}

// MetersPerSpeedUnit returns the calibration of phase i.
func (d *DistanceIntegrator) MetersPerSpeedUnit(i int) float64 {
	if i < 0 || i >= len(d.perUnit) {
		return 0
	}
	return d.perUnit[i]
}

// MetersPerTick returns the distance covered in phase i at speed for dt seconds.
func (d *DistanceIntegrator) MetersPerTick(i int, speed, dt float64) float64 {
	if speed <= 0 || dt <= 0 {
		return 0
	}
	return speed * d.MetersPerSpeedUnit(i) * dt
}

// Issues returns calibration problems found at construction.
func (d *DistanceIntegrator) Issues() []string {
	return d.issues
}
