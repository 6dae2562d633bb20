package client

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"roomsync/internal/domain"
)

func toVec(v domain.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromVec(v mgl64.Vec3) domain.Vec3 {
	return domain.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// eulerToQuat - углы XYZ в кватернион.
func eulerToQuat(e domain.Euler) mgl64.Quat {
	return mgl64.AnglesToQuat(e.X, e.Y, e.Z, mgl64.XYZ)
}

// quatToEuler - обратное преобразование для порядка XYZ (R = Rx*Ry*Rz).
func quatToEuler(q mgl64.Quat) domain.Euler {
	m := q.Normalize().Mat4()
	m13 := mgl64.Clamp(m.At(0, 2), -1, 1)

	var e domain.Euler
	e.Y = math.Asin(m13)
	if math.Abs(m13) < 0.9999999 {
		e.X = math.Atan2(-m.At(1, 2), m.At(2, 2))
		e.Z = math.Atan2(-m.At(0, 1), m.At(0, 0))
	} else {
		e.X = math.Atan2(m.At(2, 1), m.At(1, 1))
	}
	return e
}

// statePose - целевая поза из состояния сущности.
func statePose(e *domain.EntityState) Pose {
	return Pose{Position: toVec(e.Position), Rotation: eulerToQuat(e.Rotation)}
}

// bodyPose - поза тела: позиция сущности минус offset.
func bodyPose(e *domain.EntityState) Pose {
	p := statePose(e)
	p.Position = p.Position.Sub(toVec(e.Vector("offset", domain.Vec3{})))
	return p
}
