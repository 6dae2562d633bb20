package client

import (
	"github.com/go-gl/mathgl/mgl64"

	"roomsync/internal/domain"
)

// Pose - положение и ориентация в мире.
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// Scene - внешний рендер. Движок только сообщает о появлении и удалении реплик.
type Scene interface {
	Add(uniqueID string, r *Replica)
	Remove(uniqueID string)
}

// Physics - внешний физический мир. Тело создается для типов с CapPhysics.
type Physics interface {
	CreateBody(uniqueID string, spec BodySpec)
	RemoveBody(uniqueID string)
	Step(dt float64)
	Pose(uniqueID string) (Pose, bool)
	SetPose(uniqueID string, p Pose)
	ApplyImpulse(uniqueID string, impulse mgl64.Vec3)
}

// Input - состояние клавиатуры и мыши за кадр.
type Input interface {
	Held(key string) bool
	// PointerDelta - смещение указателя с прошлого кадра.
	PointerDelta() (dx, dy float64)
}

// BodySpec - параметры тела, собранные из полей сущности.
type BodySpec struct {
	Shape            string
	Static           bool
	Kinematic        bool
	CCD              bool
	Mass             float64
	Radius           float64
	HalfHeight       float64
	Restitution      float64
	GravityScale     float64
	LinearDamping    float64
	AngularDamping   float64
	EnabledRotations mgl64.Vec3
	Pose             Pose
}

// BodySpecFrom читает параметры тела из состояния (с умолчаниями каталога).
func BodySpecFrom(e *domain.EntityState) BodySpec {
	return BodySpec{
		Shape:            e.Text("shapeType", "box"),
		Static:           e.Bool("static", false),
		Kinematic:        e.Bool("kinematic", false),
		CCD:              e.Bool("ccd", false),
		Mass:             e.Float("mass", 0),
		Radius:           e.Float("radius", 0),
		HalfHeight:       e.Float("halfHeight", 0.5),
		Restitution:      e.Float("restitution", 0.25),
		GravityScale:     e.Float("gravityScale", 1),
		LinearDamping:    e.Float("linearDamping", 0),
		AngularDamping:   e.Float("angularDamping", 0),
		EnabledRotations: toVec(e.Vector("enabledRotations", domain.Vec3{X: 1, Y: 1, Z: 1})),
		Pose:             bodyPose(e),
	}
}

type nopScene struct{}

func (nopScene) Add(string, *Replica) {}
func (nopScene) Remove(string)        {}

type nopPhysics struct{}

func (nopPhysics) CreateBody(string, BodySpec)     {}
func (nopPhysics) RemoveBody(string)               {}
func (nopPhysics) Step(float64)                    {}
func (nopPhysics) Pose(string) (Pose, bool)        { return Pose{}, false }
func (nopPhysics) SetPose(string, Pose)            {}
func (nopPhysics) ApplyImpulse(string, mgl64.Vec3) {}

type nopInput struct{}

func (nopInput) Held(string) bool                 { return false }
func (nopInput) PointerDelta() (float64, float64) { return 0, 0 }
