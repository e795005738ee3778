package runner

import "strings"

// ObstacleKind enumerates every obstacle the engine knows how to spawn.
type ObstacleKind int

const (
	KindBarge ObstacleKind = iota
	KindDebris
	KindCar
	KindParkedCar
	KindPedestrian
	KindOncomingPedestrian
	KindBin
	KindManhole
	KindCrossingPedestrian

	kindCount
)

var kindNames = [kindCount]string{
	KindBarge:              "barge",
	KindDebris:             "debris",
	KindCar:                "car",
	KindParkedCar:          "parked-car",
	KindPedestrian:         "pedestrian",
	KindOncomingPedestrian: "oncoming-pedestrian",
	KindBin:                "bin",
	KindManhole:            "manhole",
	KindCrossingPedestrian: "crossing-pedestrian",
}

// String returns the name used in course files.
func (k ObstacleKind) String() string {
	if k < 0 || k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// ParseObstacleKind resolves a course-file name to a kind.
func ParseObstacleKind(s string) (ObstacleKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return ObstacleKind(k), true
		}
	}
	return 0, false
}

// AllObstacleKinds returns every kind in declaration order.
func AllObstacleKinds() []ObstacleKind {
	kinds := make([]ObstacleKind, kindCount)
	for i := range kinds {
		kinds[i] = ObstacleKind(i)
	}
	return kinds
}

// MotionMode tags how an obstacle moves.
type MotionMode int

const (
	// MotionLaneScroll obstacles sit in a lane and drift left with the player's speed.
	MotionLaneScroll MotionMode = iota
	// MotionCrossing obstacles also fall down the screen at a fixed rate.
	MotionCrossing
)

func (m MotionMode) String() string {
	if m == MotionCrossing {
		return "crossing"
	}
	return "lane-scroll"
}

// ObstacleType is the static configuration for one obstacle kind.
type ObstacleType struct {
	Width       float64
	Height      float64
	SpeedFactor float64 // multiplier on player speed for horizontal drift

	Motion    MotionMode
	FallSpeed float64 // world units per second, MotionCrossing only

	// AllowedLanes restricts lane-scroll spawns; nil means any lane.
	AllowedLanes []int
}
