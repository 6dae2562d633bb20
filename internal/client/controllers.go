package client

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"roomsync/internal/catalog"
)

// Клавиши управления.
const (
	KeyForward  = "w"
	KeyBackward = "s"
	KeyLeft     = "a"
	KeyRight    = "d"
	KeyUp       = "e"
	KeyDown     = "q"
	KeyJump     = "f"
)

const (
	// pointerSensitivity - пикселей указателя на радиан поворота.
	pointerSensitivity = 500.0
	jumpHeight         = 5.0
)

// axis возвращает +1, -1 или 0 для пары клавиш.
func axis(in Input, plus, minus string) float64 {
	v := 0.0
	if in.Held(plus) {
		v++
	}
	if in.Held(minus) {
		v--
	}
	return v
}

// moveDirection - нормализованное направление движения в мире с учетом рыскания.
// Вперед - это -Z повернутый на yaw.
func moveDirection(in Input, yaw float64) (mgl64.Vec3, bool) {
	f := axis(in, KeyForward, KeyBackward)
	r := axis(in, KeyRight, KeyLeft)
	u := axis(in, KeyUp, KeyDown)
	if f == 0 && r == 0 && u == 0 {
		return mgl64.Vec3{}, false
	}

	sin, cos := math.Sincos(yaw)
	forward := mgl64.Vec3{-sin, 0, -cos}
	right := mgl64.Vec3{cos, 0, -sin}
	up := mgl64.Vec3{0, 1, 0}

	dir := forward.Mul(f).Add(right.Mul(r)).Add(up.Mul(u))
	if dir.Len() == 0 {
		return mgl64.Vec3{}, false
	}
	return dir.Normalize(), true
}

// simulateController применяет ввод к своей реплике.
func simulateController(r *Replica, in Input, physics Physics, dt float64) {
	switch r.Def.Controller {
	case catalog.ControllerCharacter:
		simulateCharacter(r, in, physics, dt)
	case catalog.ControllerFreecam:
		simulateFreecam(r, in, dt)
	}
}

// simulateCharacter: импульс по направлению, поворот указателем, прыжок по нажатию.
// Персонаж слушает ввод, только если им управляет игрок.
func simulateCharacter(r *Replica, in Input, physics Physics, dt float64) {
	if !r.State.Bool("ownerIsPlayer", false) {
		return
	}
	id := r.ID()

	dx, _ := in.PointerDelta()
	r.State.Rotation.Y -= dx / pointerSensitivity

	dir, moving := moveDirection(in, r.State.Rotation.Y)
	if moving {
		acc := r.State.Float("acceleration", 20)
		physics.ApplyImpulse(id, dir.Mul(acc*dt))
	}

	jump := in.Held(KeyJump)
	if jump && !r.jumpHeld {
		if p, ok := physics.Pose(id); ok {
			p.Position[1] += jumpHeight
			physics.SetPose(id, p)
		}
	}
	r.jumpHeld = jump

	anim := 0
	if moving {
		anim = 1
	}
	r.State.SetField("animationIndex", anim)
}

// simulateFreecam двигает позицию напрямую, без физики.
func simulateFreecam(r *Replica, in Input, dt float64) {
	dx, dy := in.PointerDelta()
	r.State.Rotation.Y -= dx / pointerSensitivity
	r.State.Rotation.X -= dy / pointerSensitivity

	dir, moving := moveDirection(in, r.State.Rotation.Y)
	if !moving {
		return
	}
	speed := r.State.Float("moveSpeed", 20)
	pos := toVec(r.State.Position).Add(dir.Mul(speed * dt))
	r.State.Position = fromVec(pos)
}
