package config

import (
	"fmt"
	"strings"
)

// ParsePreset validates a preset name as given on the command line.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(strings.ToLower(strings.TrimSpace(s))); p {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	case "":
		return DifficultyNormal, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q (want easy, normal, hard or fixed)", s)
	}
}

// IsFixedPreset returns true if the preset disables max-speed growth.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}

// densityScale and growthFor describe how each preset bends the course's
// own difficulty settings.
func densityScale(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.75
	case DifficultyHard:
		return 1.25
	default:
		return 1.0
	}
}

func growthFor(preset DifficultyPreset, base float64) float64 {
	switch preset {
	case DifficultyEasy:
		return 1 + (base-1)/2
	case DifficultyHard:
		return 1 + (base-1)*1.5
	default:
		return base
	}
}

// ApplyPreset modifies the course based on a difficulty preset.
func ApplyPreset(c *Course, preset DifficultyPreset) {
	if preset == DifficultyFixed {
		c.Difficulty.Enabled = false
		return
	}
	c.Difficulty.Enabled = true
	c.Difficulty.DensityFactor *= densityScale(preset)
	c.Difficulty.GrowthFactor = growthFor(preset, c.Difficulty.GrowthFactor)
}
