package agent

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"roomsync/internal/client"
)

func TestKinematicWorld_FallsToFloor(t *testing.T) {
	w := NewKinematicWorld()
	w.CreateBody("c", client.BodySpec{
		Shape:        "capsule",
		Radius:       0.3,
		HalfHeight:   1.25,
		GravityScale: 1,
		Pose:         client.Pose{Position: mgl64.Vec3{0, 5, 0}},
	})

	for i := 0; i < 300; i++ {
		w.Step(1.0 / 60)
	}
	p, ok := w.Pose("c")
	if !ok {
		t.Fatal("body lost")
	}
	if math.Abs(p.Position.Y()-1.55) > 1e-9 {
		t.Errorf("rest height = %v, want 1.55", p.Position.Y())
	}
}

func TestKinematicWorld_StaticAndImpulse(t *testing.T) {
	w := NewKinematicWorld()
	w.CreateBody("wall", client.BodySpec{Static: true, GravityScale: 1, Pose: client.Pose{Position: mgl64.Vec3{0, 10, 0}}})
	w.CreateBody("box", client.BodySpec{Mass: 2, HalfHeight: 0.5, Pose: client.Pose{Position: mgl64.Vec3{0, 0.5, 0}}})

	w.ApplyImpulse("wall", mgl64.Vec3{100, 0, 0})
	w.ApplyImpulse("box", mgl64.Vec3{4, 0, 0})
	w.Step(0.5)

	if p, _ := w.Pose("wall"); p.Position != (mgl64.Vec3{0, 10, 0}) {
		t.Errorf("static body moved to %v", p.Position)
	}
	// скорость 4/2 = 2, за 0.5с смещение 1
	if p, _ := w.Pose("box"); math.Abs(p.Position.X()-1) > 1e-9 {
		t.Errorf("box x = %v, want 1", p.Position.X())
	}

	w.RemoveBody("box")
	if _, ok := w.Pose("box"); ok || w.Len() != 1 {
		t.Error("RemoveBody failed")
	}
}

func TestRandomInput_Deterministic(t *testing.T) {
	a, b := NewRandomInput(42), NewRandomInput(42)
	for i := 0; i < 100; i++ {
		a.Advance(0.1)
		b.Advance(0.1)
		for _, k := range append(moveKeys, client.KeyJump) {
			if a.Held(k) != b.Held(k) {
				t.Fatalf("step %d: key %s differs", i, k)
			}
		}
		adx, _ := a.PointerDelta()
		bdx, _ := b.PointerDelta()
		if adx != bdx {
			t.Fatalf("step %d: pointer differs", i)
		}
	}
}

func TestRandomInput_OneMoveKeyHeld(t *testing.T) {
	in := NewRandomInput(7)
	for i := 0; i < 50; i++ {
		in.Advance(0.3)
		n := 0
		for _, k := range moveKeys {
			if in.Held(k) {
				n++
			}
		}
		if n != 1 {
			t.Fatalf("step %d: %d move keys held", i, n)
		}
	}
}
