package runner

import "github.com/vovakirdan/tri-runner/internal/core"

// Autopilot is a deterministic intent source used by headless runs. It dodges
// to a free neighbouring lane when something is ahead and speeds up when the
// way is clear.
type Autopilot struct {
	cfg *Config

	// Lookahead is how far ahead, in seconds of travel at the current speed,
	// an obstacle counts as a threat. A fixed margin is always added.
	Lookahead float64
	Margin    float64
	// TopStep caps the speed step the autopilot will request.
	TopStep int
}

// NewAutopilot returns an autopilot for a course.
func NewAutopilot(cfg *Config) *Autopilot {
	return &Autopilot{
		cfg:       cfg,
		Lookahead: 1.2,
		Margin:    120,
		TopStep:   len(cfg.SpeedSteps) - 2,
	}
}

// Decide returns the intents to apply before the next tick.
func (a *Autopilot) Decide(s Snapshot) []Intent {
	if !s.Running() {
		return nil
	}
	profile := a.cfg.HitboxFor(s.Phase.Discipline)
	reach := s.Speed*a.Lookahead + a.Margin

	if !a.threatened(s, profile, s.Lane, reach) {
		if s.SpeedStep < a.TopStep {
			return []Intent{IntentSpeedUp}
		}
		return nil
	}

	for _, dir := range []LaneDirection{LaneUp, LaneDown} {
		lane := s.Lane + int(dir)
		if lane < 0 || lane >= s.LaneCount {
			continue
		}
		if !a.threatened(s, profile, lane, reach) {
			if dir == LaneUp {
				return []Intent{IntentLaneUp}
			}
			return []Intent{IntentLaneDown}
		}
	}
	return []Intent{IntentSlowDown}
}

func (a *Autopilot) threatened(s Snapshot, profile HitboxProfile, lane int, reach float64) bool {
	hb := PlayerHitbox(SpriteBox(a.cfg, lane), profile)
	zone := core.BoxFromEdges(hb.Left(), hb.Top(), hb.Right()+reach, hb.Bottom())
	for _, o := range s.Obstacles {
		if zone.Intersects(o.Box()) {
			return true
		}
	}
	return false
}
