package runner

import (
	"errors"
	"math"
	"testing"

	"github.com/vovakirdan/tri-runner/internal/core"
)

func phaseWith(kinds ...ObstacleKind) Phase {
	return Phase{
		Name: "Test", Discipline: DisciplineSwim,
		Threshold: 1000, BaseSpeed: 100,
		MinSpeedFactor: 0.1, MaxSpeedFactor: 2,
		Obstacles: kinds, SpawnInterval: 1.8, Duration: 20,
	}
}

func TestSpawnInterval(t *testing.T) {
	cfg := DefaultConfig()
	om := NewObstacleManager(1, &cfg)
	p := phaseWith(KindDebris)

	tests := []struct {
		speed float64
		want  float64
	}{
		{100, 1.8 / 0.8},
		{200, 0.9 / 0.8},
		{50, 3.6 / 0.8},
		{0, 1.8 / minSpeedRatio / 0.8},
	}
	for _, tt := range tests {
		if got := om.SpawnInterval(p, tt.speed); !almostEqual(got, tt.want) {
			t.Errorf("SpawnInterval(speed=%v) = %v, want %v", tt.speed, got, tt.want)
		}
	}
}

func TestMaybeSpawnTiming(t *testing.T) {
	cfg := DefaultConfig()
	om := NewObstacleManager(1, &cfg)
	p := phaseWith(KindDebris)

	if ok, err := om.MaybeSpawn(0, p, 100); !ok || err != nil {
		t.Fatalf("Expected first spawn to fire immediately, got ok=%v err=%v", ok, err)
	}
	if ok, _ := om.MaybeSpawn(1, p, 100); ok {
		t.Error("Spawned before the interval elapsed")
	}
	if ok, _ := om.MaybeSpawn(2.3, p, 100); !ok {
		t.Error("Expected spawn once the 2.25s interval elapsed")
	}
	if om.Count() != 2 {
		t.Errorf("Expected 2 obstacles, got %d", om.Count())
	}
}

func TestLaneSpawnPlacement(t *testing.T) {
	cfg := DefaultConfig()
	om := NewObstacleManager(7, &cfg)
	p := phaseWith(KindDebris)

	for i := 0; i < 200; i++ {
		if _, err := om.MaybeSpawn(float64(i)*10, p, 100); err != nil {
			t.Fatalf("MaybeSpawn() failed: %v", err)
		}
	}

	for _, o := range om.Obstacles() {
		if o.X != cfg.Area.Width+cfg.Tuning.SpawnMargin {
			t.Errorf("Obstacle %d spawned at x=%v, want %v", o.ID, o.X, cfg.Area.Width+cfg.Tuning.SpawnMargin)
		}
		if o.Lane < 0 || o.Lane >= len(cfg.Lanes) {
			t.Fatalf("Obstacle %d has invalid lane %d", o.ID, o.Lane)
		}
		centre := cfg.Area.Height*(1-cfg.Lanes[o.Lane]/100) - o.H/2
		if math.Abs(o.Y-centre) > o.H/2 {
			t.Errorf("Obstacle %d jitter %v exceeds half height %v", o.ID, o.Y-centre, o.H/2)
		}
		if !almostEqual(o.W, 30*cfg.Scale) || !almostEqual(o.H, 30*cfg.Scale) {
			t.Errorf("Obstacle %d not scaled: %vx%v", o.ID, o.W, o.H)
		}
	}
}

func TestAllowedLanesRespected(t *testing.T) {
	cfg := DefaultConfig()
	om := NewObstacleManager(3, &cfg)
	p := phaseWith(KindBarge)

	for i := 0; i < 100; i++ {
		om.MaybeSpawn(float64(i)*10, p, 100)
	}
	for _, o := range om.Obstacles() {
		if o.Lane != 0 && o.Lane != 2 && o.Lane != 4 {
			t.Errorf("Barge spawned in lane %d", o.Lane)
		}
	}
}

func TestAllowedLanesFilteredToCourse(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Lanes = []float64{20, 50, 80}
	om := NewObstacleManager(3, &cfg)

	for i := 0; i < 100; i++ {
		if _, err := om.MaybeSpawn(float64(i)*10, phaseWith(KindCar), 100); err != nil {
			t.Fatalf("MaybeSpawn() failed: %v", err)
		}
	}
	for _, o := range om.Obstacles() {
		if o.Lane != 1 && o.Lane != 2 {
			t.Errorf("Car spawned in lane %d on a three-lane course", o.Lane)
		}
	}

	cfg.Obstacles[KindCar] = ObstacleType{Width: 10, Height: 10, SpeedFactor: 1, AllowedLanes: []int{5, 6}}
	_, err := om.MaybeSpawn(5000, phaseWith(KindCar), 100)
	if !errors.Is(err, ErrNoLane) {
		t.Errorf("Expected ErrNoLane, got %v", err)
	}
}

func TestMissingObstacleTypeSkipsSpawn(t *testing.T) {
	cfg := DefaultConfig()
	delete(cfg.Obstacles, KindDebris)
	om := NewObstacleManager(1, &cfg)

	ok, err := om.MaybeSpawn(0, phaseWith(KindDebris), 100)
	if ok {
		t.Error("Expected spawn to be skipped")
	}
	if !errors.Is(err, ErrUnknownObstacle) {
		t.Errorf("Expected ErrUnknownObstacle, got %v", err)
	}
	if om.Count() != 0 {
		t.Errorf("Expected no obstacles, got %d", om.Count())
	}
	// The timer was still re-armed.
	if ok, err := om.MaybeSpawn(0.5, phaseWith(KindDebris), 100); ok || err != nil {
		t.Errorf("Expected no retry before the interval, got ok=%v err=%v", ok, err)
	}
}

func TestCrossingSpawnAndMotion(t *testing.T) {
	cfg := DefaultConfig()
	om := NewObstacleManager(11, &cfg)
	p := phaseWith(KindCrossingPedestrian)

	if _, err := om.MaybeSpawn(0, p, 100); err != nil {
		t.Fatalf("MaybeSpawn() failed: %v", err)
	}
	o := om.Obstacles()[0]
	if o.Motion != MotionCrossing || o.Lane != -1 {
		t.Fatalf("Expected crossing obstacle without lane, got motion=%v lane=%d", o.Motion, o.Lane)
	}
	found := false
	for _, pct := range cfg.CrossingPoints {
		if almostEqual(o.X, cfg.Area.Width*pct/100) {
			found = true
		}
	}
	if !found {
		t.Errorf("Crossing obstacle x=%v is not a crossing point", o.X)
	}
	if o.Y != -o.H {
		t.Errorf("Expected crossing obstacle to start at y=%v, got %v", -o.H, o.Y)
	}

	om.Update(100, 0.5)
	moved := om.Obstacles()[0]
	if !almostEqual(moved.X, o.X-100*0.5*0.5) {
		t.Errorf("Expected x drift %v, got %v", o.X-25, moved.X)
	}
	if !almostEqual(moved.Y, o.Y+60*0.5) {
		t.Errorf("Expected y fall to %v, got %v", o.Y+30, moved.Y)
	}
}

func TestLaneObstacleKeepsY(t *testing.T) {
	cfg := DefaultConfig()
	om := NewObstacleManager(5, &cfg)
	om.MaybeSpawn(0, phaseWith(KindManhole), 100)
	before := om.Obstacles()[0]

	om.Update(100, 0.1)
	after := om.Obstacles()[0]
	if after.Y != before.Y {
		t.Errorf("Lane obstacle moved vertically: %v -> %v", before.Y, after.Y)
	}
	if !almostEqual(after.X, before.X-100*0.5*0.1) {
		t.Errorf("Expected x=%v, got %v", before.X-5, after.X)
	}
}

func TestCullRemovesOnce(t *testing.T) {
	cfg := DefaultConfig()
	om := NewObstacleManager(1, &cfg)
	typ := cfg.Obstacles[KindDebris]
	om.obstacles = append(om.obstacles,
		Obstacle{ID: 1, Type: typ, X: -50, Y: 100, W: 39, H: 39},                          // past left edge
		Obstacle{ID: 2, Type: typ, X: 400, Y: 100, W: 39, H: 39},                          // visible
		Obstacle{ID: 3, Type: typ, X: 2000, Y: 100, W: 39, H: 39},                         // beyond safety margin
		Obstacle{ID: 4, Type: typ, X: 400, Y: 500, W: 39, H: 39, Motion: MotionCrossing}, // fell out
	)

	if removed := om.Update(0, 0); removed != 3 {
		t.Errorf("Expected 3 obstacles culled, got %d", removed)
	}
	if om.Count() != 1 || om.Obstacles()[0].ID != 2 {
		t.Fatalf("Expected only obstacle 2 to remain, got %+v", om.Obstacles())
	}
	if removed := om.Update(0, 0); removed != 0 {
		t.Errorf("Expected nothing culled on second pass, got %d", removed)
	}
}

func TestSpawnDeterminism(t *testing.T) {
	cfg := DefaultConfig()
	a := NewObstacleManager(99, &cfg)
	b := NewObstacleManager(99, &cfg)
	p := cfg.Phases[2]

	for i := 0; i < 50; i++ {
		now := float64(i) * 3
		a.MaybeSpawn(now, p, 150)
		b.MaybeSpawn(now, p, 150)
		a.Update(150, 0.5)
		b.Update(150, 0.5)
	}
	if a.Count() != b.Count() {
		t.Fatalf("Count mismatch: %d vs %d", a.Count(), b.Count())
	}
	for i := range a.Obstacles() {
		oa, ob := a.Obstacles()[i], b.Obstacles()[i]
		if oa.ID != ob.ID || oa.Kind != ob.Kind || oa.Box() != ob.Box() || oa.Lane != ob.Lane {
			t.Errorf("Obstacle %d differs: %+v vs %+v", i, oa, ob)
		}
	}
}

func TestHasCollisionEdges(t *testing.T) {
	hitbox := core.BoxFromEdges(100, 50, 140, 90)

	hit := []Obstacle{{X: 120, Y: 60, W: 40, H: 40}}
	if !HasCollision(hitbox, hit) {
		t.Error("Expected overlapping boxes to collide")
	}

	miss := []Obstacle{{X: 200, Y: 60, W: 40, H: 40}}
	if HasCollision(hitbox, miss) {
		t.Error("Expected disjoint boxes not to collide")
	}

	touching := []Obstacle{{X: 140, Y: 50, W: 20, H: 40}}
	if HasCollision(hitbox, touching) {
		t.Error("Expected touching edges not to collide")
	}

	if HasCollision(hitbox, nil) {
		t.Error("Expected no collision with no obstacles")
	}
}

func TestPlayerHitboxProfile(t *testing.T) {
	sprite := core.NewBox(80, 100, 100, 50)
	hb := PlayerHitbox(sprite, HitboxProfile{Width: 0.5, Height: 0.2, Top: 0.4})

	want := core.NewBox(105, 120, 50, 10)
	if hb != want {
		t.Errorf("PlayerHitbox() = %+v, want %+v", hb, want)
	}
}
