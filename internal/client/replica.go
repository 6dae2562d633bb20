package client

import (
	"roomsync/internal/catalog"
	"roomsync/internal/domain"
)

type replicaStatus uint8

const (
	statusSpawned replicaStatus = iota + 1
	statusDestroyed
)

// Replica - локальное отражение сетевой (или локальной) сущности.
//
// Для чужих сущностей State - последнее полученное состояние (цель),
// Visible догоняет его смешиванием. Для своих State - результат
// локальной симуляции, Visible совпадает с ним.
type Replica struct {
	State   domain.EntityState
	Def     catalog.Definition
	Visible Pose

	status   replicaStatus
	jumpHeld bool
}

func newReplica(state domain.EntityState, def catalog.Definition) *Replica {
	return &Replica{
		State:   state,
		Def:     def,
		Visible: statePose(&state),
		status:  statusSpawned,
	}
}

func (r *Replica) ID() string {
	return r.State.UniqueID
}

// Destroyed - реплика удалена и больше не участвует в кадрах.
func (r *Replica) Destroyed() bool {
	return r.status == statusDestroyed
}

// AuthoritativeFor - пишет ли клиент с данным ID состояние этой реплики.
func (r *Replica) AuthoritativeFor(clientID string) bool {
	return domain.IsAuthoritative(&r.State, domain.ClientIdentity(clientID))
}

// Target - целевая поза из состояния.
func (r *Replica) Target() Pose {
	return statePose(&r.State)
}
