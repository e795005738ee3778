package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnknownCourse is returned when no file or embedded default exists for an id.
var ErrUnknownCourse = errors.New("config: unknown course")

// Load loads a course by id.
// Search order: customPath -> ~/.trirunner/courses/<id>.{yaml,toml} ->
// ./courses/<id>.{yaml,toml} -> embedded default -> DefaultCourse (triathlon only).
func Load(id, customPath string) (Course, error) {
	// Try custom path first
	if customPath != "" {
		c, err := LoadFile(customPath)
		if err != nil {
			return c, err
		}
		if c.ID == "" {
			c.ID = id
		}
		return c, nil
	}

	// Try user config directory, then local courses directory
	for _, dir := range []string{userCoursesDir(), "courses"} {
		if dir == "" {
			continue
		}
		for _, ext := range []string{".yaml", ".yml", ".toml"} {
			p := filepath.Join(dir, id+ext)
			if _, err := os.Stat(p); err != nil {
				continue
			}
			if c, err := LoadFile(p); err == nil {
				if c.ID == "" {
					c.ID = id
				}
				return c, nil
			}
		}
	}

	// Use embedded default YAML
	if data, ok := embeddedCourse(id); ok {
		c, err := Parse(data, ".yaml")
		if err == nil {
			if c.ID == "" {
				c.ID = id
			}
			return c, nil
		}
	}

	if id == "triathlon" {
		return DefaultCourse(), nil // Fallback to hardcoded if embed fails
	}
	return Course{}, fmt.Errorf("%w: %q", ErrUnknownCourse, id)
}

// LoadFile reads a course file, choosing the decoder from its extension.
func LoadFile(path string) (Course, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Course{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	c, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return c, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a course. ext selects TOML for ".toml"; anything else is YAML.
func Parse(data []byte, ext string) (Course, error) {
	var c Course
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, &c); err != nil {
			return c, err
		}
	default:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, err
		}
	}
	return c, nil
}

// Marshal encodes a course as YAML, or TOML when ext is ".toml".
func Marshal(c Course, ext string) ([]byte, error) {
	if strings.ToLower(ext) == ".toml" {
		var sb strings.Builder
		if err := toml.NewEncoder(&sb).Encode(c); err != nil {
			return nil, err
		}
		return []byte(sb.String()), nil
	}
	return yaml.Marshal(c)
}

// userCoursesDir returns the user course directory, or empty if home is unavailable.
func userCoursesDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".trirunner", "courses")
}
