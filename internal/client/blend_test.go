package client

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"roomsync/internal/domain"
)

func TestBlendAlpha_FrameRateIndependent(t *testing.T) {
	const decay = DefaultBlendDecay

	// два кадра по dt оставляют ту же долю пути, что и один кадр 2*dt
	for _, dt := range []float64{1.0 / 144, 1.0 / 60, 1.0 / 30, 0.25} {
		one := 1 - BlendAlpha(decay, 2*dt)
		two := (1 - BlendAlpha(decay, dt)) * (1 - BlendAlpha(decay, dt))
		if math.Abs(one-two) > 1e-12 {
			t.Errorf("dt=%v: remaining %v vs %v", dt, one, two)
		}
	}
}

func TestBlendAlpha_Bounds(t *testing.T) {
	tests := []struct {
		name       string
		decay, dt  float64
		want       float64
		approxOnly bool
	}{
		{"zero dt", 10, 0, 0, false},
		{"negative dt", 10, -1, 0, false},
		{"zero decay", 0, 1, 0, false},
		{"long frame", 10, 100, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BlendAlpha(tt.decay, tt.dt)
			if tt.approxOnly {
				if math.Abs(got-tt.want) > 1e-9 {
					t.Errorf("got %v, want ~%v", got, tt.want)
				}
				return
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlend_ConvergesToTarget(t *testing.T) {
	target := Pose{Position: mgl64.Vec3{10, 0, -4}, Rotation: eulerToQuat(domain.Euler{Y: 1.2})}
	visible := Pose{Position: mgl64.Vec3{}, Rotation: mgl64.QuatIdent()}

	prev := target.Position.Sub(visible.Position).Len()
	for i := 0; i < 120; i++ {
		visible = Blend(visible, target, BlendAlpha(DefaultBlendDecay, 1.0/60))
		d := target.Position.Sub(visible.Position).Len()
		if d > prev {
			t.Fatalf("frame %d: distance grew %v -> %v", i, prev, d)
		}
		prev = d
	}
	if prev > 1e-3 {
		t.Errorf("distance after 2s = %v", prev)
	}
	if !visible.Rotation.ApproxEqualThreshold(target.Rotation, 1e-3) {
		t.Errorf("rotation %v, want %v", visible.Rotation, target.Rotation)
	}

	if got := Blend(visible, target, 1); got != target {
		t.Error("alpha 1 must snap to target")
	}
}

func TestEulerQuatRoundTrip(t *testing.T) {
	angles := []domain.Euler{
		{},
		{X: 0.3},
		{Y: -1.1},
		{Z: 2.5},
		{X: 0.4, Y: 0.7, Z: -0.9},
		{X: -1.2, Y: 0.2, Z: 0.1},
	}
	for _, e := range angles {
		got := quatToEuler(eulerToQuat(e))
		if !near(got.X, e.X) || !near(got.Y, e.Y) || !near(got.Z, e.Z) {
			t.Errorf("%+v -> %+v", e, got)
		}
	}
}

func TestBodyPose_SubtractsOffset(t *testing.T) {
	e := domain.NewEntityState("c", "character", "me")
	e.Position = domain.Vec3{Y: 2}
	e.SetField("offset", map[string]any{"x": 0.0, "y": -1.55, "z": 0.0})

	p := bodyPose(&e)
	if !near(p.Position.Y(), 3.55) {
		t.Errorf("body y = %v", p.Position.Y())
	}
}
