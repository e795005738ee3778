package runner

import "github.com/vovakirdan/tri-runner/internal/core"

// HasCollision reports whether hitbox overlaps any obstacle.
// Touching edges do not count.
func HasCollision(hitbox core.Box, obstacles []Obstacle) bool {
	for i := range obstacles {
		if hitbox.Intersects(obstacles[i].Box()) {
			return true
		}
	}
	return false
}

// SpriteBox returns the rendered player sprite for a lane. The sprite is
// centred on the lane's percent-from-bottom line, like lane obstacles.
func SpriteBox(cfg *Config, lane int) core.Box {
	s := cfg.scale()
	w := cfg.Player.Width * s
	h := cfg.Player.Height * s
	line := cfg.Area.Height * (1 - laneValue(cfg, lane)/100)
	return core.NewBox(cfg.Player.X, line-h/2, w, h)
}

// PlayerHitbox shrinks the sprite box to the discipline's solid area.
func PlayerHitbox(sprite core.Box, p HitboxProfile) core.Box {
	w := sprite.W * p.Width
	h := sprite.H * p.Height
	x := sprite.X + (sprite.W-w)/2
	y := sprite.Y + sprite.H*p.Top
	return core.NewBox(x, y, w, h)
}

func laneValue(cfg *Config, lane int) float64 {
	if len(cfg.Lanes) == 0 {
		return 50
	}
	lane = core.Clamp(lane, 0, len(cfg.Lanes)-1)
	return cfg.Lanes[lane]
}
