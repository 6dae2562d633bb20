package client

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultBlendDecay - скорость схождения видимой позы к целевой, 1/с.
const DefaultBlendDecay = 10.0

// BlendAlpha - доля пути к цели за кадр dt. Не зависит от частоты кадров:
// два кадра по dt дают то же, что один кадр 2*dt.
func BlendAlpha(decay, dt float64) float64 {
	if dt <= 0 || decay <= 0 {
		return 0
	}
	return 1 - math.Exp(-decay*dt)
}

// Blend сдвигает видимую позу к целевой: позиция линейно, ориентация slerp.
func Blend(visible, target Pose, alpha float64) Pose {
	if alpha >= 1 {
		return target
	}
	return Pose{
		Position: visible.Position.Add(target.Position.Sub(visible.Position).Mul(alpha)),
		Rotation: mgl64.QuatSlerp(visible.Rotation, target.Rotation, alpha),
	}
}
