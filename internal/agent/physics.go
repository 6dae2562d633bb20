package agent

import (
	"github.com/go-gl/mathgl/mgl64"

	"roomsync/internal/client"
)

const gravity = 9.81

type body struct {
	spec     client.BodySpec
	pose     client.Pose
	velocity mgl64.Vec3
}

// KinematicWorld - упрощенная физика без столкновений: гравитация,
// затухание скорости и пол на y=0. Достаточно для бота без рендера.
type KinematicWorld struct {
	bodies map[string]*body
}

func NewKinematicWorld() *KinematicWorld {
	return &KinematicWorld{bodies: make(map[string]*body)}
}

func (w *KinematicWorld) CreateBody(uniqueID string, spec client.BodySpec) {
	w.bodies[uniqueID] = &body{spec: spec, pose: spec.Pose}
}

func (w *KinematicWorld) RemoveBody(uniqueID string) {
	delete(w.bodies, uniqueID)
}

func (w *KinematicWorld) Len() int {
	return len(w.bodies)
}

func (w *KinematicWorld) Step(dt float64) {
	if dt <= 0 {
		return
	}
	for _, b := range w.bodies {
		if b.spec.Static || b.spec.Kinematic {
			continue
		}
		b.velocity[1] -= gravity * b.spec.GravityScale * dt
		b.velocity = b.velocity.Mul(1 / (1 + dt*b.spec.LinearDamping))
		b.pose.Position = b.pose.Position.Add(b.velocity.Mul(dt))

		if floor := b.floor(); b.pose.Position[1] < floor {
			b.pose.Position[1] = floor
			b.velocity[1] = 0
		}
	}
}

// floor - высота центра тела, стоящего на полу.
func (b *body) floor() float64 {
	if b.spec.Shape == "capsule" {
		return b.spec.HalfHeight + b.spec.Radius
	}
	return b.spec.HalfHeight
}

func (w *KinematicWorld) Pose(uniqueID string) (client.Pose, bool) {
	b, ok := w.bodies[uniqueID]
	if !ok {
		return client.Pose{}, false
	}
	return b.pose, true
}

func (w *KinematicWorld) SetPose(uniqueID string, p client.Pose) {
	if b, ok := w.bodies[uniqueID]; ok {
		b.pose = p
	}
}

// ApplyImpulse меняет скорость на impulse/mass. Нулевая масса считается единичной.
func (w *KinematicWorld) ApplyImpulse(uniqueID string, impulse mgl64.Vec3) {
	b, ok := w.bodies[uniqueID]
	if !ok || b.spec.Static {
		return
	}
	mass := b.spec.Mass
	if mass <= 0 {
		mass = 1
	}
	b.velocity = b.velocity.Add(impulse.Mul(1 / mass))
}
