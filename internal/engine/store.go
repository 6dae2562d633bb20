package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"roomsync/internal/domain"
	"roomsync/pkg/api"
	"roomsync/pkg/logger"
)

// Notifier - куда Store отправляет события членства.
// network.Broadcaster реализует этот интерфейс.
type Notifier interface {
	Multicast(connIDs []string, msg api.Message)
}

// Store - карта комнат. Комната создается при первом обращении и не удаляется.
//
// Блокировки: s.mu защищает только карту комнат, состояние комнаты
// защищено ее собственным мьютексом. События отправляются после
// снятия блокировки комнаты.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	registry *Registry
	notify   Notifier
}

func NewStore(registry *Registry, notify Notifier) *Store {
	return &Store{
		rooms:    make(map[string]*Room),
		registry: registry,
		notify:   notify,
	}
}

// GetOrCreate возвращает комнату, создавая ее при первом обращении.
func (s *Store) GetOrCreate(name string) *Room {
	s.mu.RLock()
	r, ok := s.rooms[name]
	s.mu.RUnlock()
	if ok {
		return r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[name]; ok {
		return r
	}
	r = newRoom(name)
	s.rooms[name] = r
	logger.Log.WithField("room", name).Debug("Room created")
	return r
}

func (s *Store) get(name string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[name]
	return r, ok
}

// Rooms - имена всех комнат, отсортированные.
func (s *Store) Rooms() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.rooms))
	for name := range s.rooms {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Join переводит подключение в комнату. Сначала выход из текущей комнаты
// (если она есть), затем вход и clientJoinedRoom всем участникам, включая вошедшего.
func (s *Store) Join(connID, name string) error {
	current, ok := s.registry.RoomOf(connID)
	if !ok {
		return fmt.Errorf("%w: join: unknown connection %s", domain.ErrProtocol, connID)
	}
	if current != "" {
		s.Leave(connID)
	}

	r := s.GetOrCreate(name)
	r.mu.Lock()
	r.addMember(connID)
	members := r.membersCopy()
	r.mu.Unlock()

	s.registry.SetRoom(connID, name)

	logger.Log.WithFields(logrus.Fields{"conn_id": connID, "room": name}).Info("Client joined room")
	s.notify.Multicast(members, api.Message{
		Event:   api.EventClientJoinedRoom,
		Payload: api.MembershipPayload{ID: connID, Room: name, Clients: members},
	})
	return nil
}

// Leave выводит подключение из текущей комнаты: clientLeftRoom оставшимся
// и самому ушедшему, затем удаление его сущностей с destroyOnOwnerLeave.
// Возвращает число удаленных сущностей. Без комнаты - ничего не делает.
func (s *Store) Leave(connID string) int {
	name, ok := s.registry.RoomOf(connID)
	if !ok || name == "" {
		return 0
	}
	r, ok := s.get(name)
	if !ok {
		s.registry.SetRoom(connID, "")
		return 0
	}

	r.mu.Lock()
	r.removeMember(connID)
	members := r.membersCopy()
	purged := r.purgeOwner(connID)
	r.mu.Unlock()

	s.registry.SetRoom(connID, "")

	logger.Log.WithFields(logrus.Fields{
		"conn_id": connID,
		"room":    name,
		"purged":  len(purged),
	}).Info("Client left room")

	s.notify.Multicast(append(members, connID), api.Message{
		Event:   api.EventClientLeftRoom,
		Payload: api.MembershipPayload{ID: connID, Room: name, Clients: members},
	})
	return len(purged)
}

// CreateEntity создает сущность в комнате. uniqueID выдает сервер,
// владелец по умолчанию - owner, destroyOnOwnerLeave по умолчанию true.
func (s *Store) CreateEntity(room, typeTag, owner string, args domain.EntityPatch) domain.EntityState {
	e := domain.NewEntityState(uuid.NewString(), typeTag, owner)
	args.UniqueID = nil
	args.Type = nil
	e.Apply(args)
	if e.OwnerID == "" {
		e.OwnerID = owner
	}

	r := s.GetOrCreate(room)
	r.mu.Lock()
	r.entities[e.UniqueID] = &e
	out := e.Clone()
	r.mu.Unlock()

	logger.Log.WithFields(logrus.Fields{
		"room":      room,
		"unique_id": out.UniqueID,
		"type":      out.Type,
		"owner":     out.OwnerID,
	}).Debug("Entity created")
	return out
}

// DestroyEntity удаляет сущность и ставит ее в очередь удаления.
// authorize (если задан) решает, может ли запрашивающий ее удалить.
func (s *Store) DestroyEntity(room, uniqueID string, authorize func(*domain.EntityState) bool) error {
	r, ok := s.get(room)
	if !ok {
		return fmt.Errorf("%w: room %q", domain.ErrUnknownEntity, room)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entities[uniqueID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownEntity, uniqueID)
	}
	if authorize != nil && !authorize(e) {
		return fmt.Errorf("%w: %s", domain.ErrNotAuthoritative, uniqueID)
	}
	r.removeEntity(uniqueID)
	return nil
}

// PurgeOwnerEntities удаляет все сущности владельца с destroyOnOwnerLeave.
func (s *Store) PurgeOwnerEntities(room, ownerID string) int {
	r, ok := s.get(room)
	if !ok {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.purgeOwner(ownerID))
}

// MergeEntity вливает патч из ответа на тик. Принимается только от
// авторитетного владельца и без полей идентичности.
func (s *Store) MergeEntity(room, uniqueID string, patch domain.EntityPatch, who domain.Identity) error {
	r, ok := s.get(room)
	if !ok {
		return fmt.Errorf("%w: room %q", domain.ErrUnknownEntity, room)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entities[uniqueID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownEntity, uniqueID)
	}
	if !domain.IsAuthoritative(e, who) {
		return fmt.Errorf("%w: %s owned by %s", domain.ErrNotAuthoritative, uniqueID, e.OwnerID)
	}
	e.Apply(patch.WithoutIdentity())
	return nil
}

// Entity возвращает копию сущности.
func (s *Store) Entity(room, uniqueID string) (domain.EntityState, bool) {
	r, ok := s.get(room)
	if !ok {
		return domain.EntityState{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entities[uniqueID]
	if !ok {
		return domain.EntityState{}, false
	}
	return e.Clone(), true
}

// Members - участники комнаты в порядке входа.
func (s *Store) Members(room string) []string {
	r, ok := s.get(room)
	if !ok {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.membersCopy()
}

// Snapshot снимает глубокую копию комнаты. mark отмечает записи очереди
// удаления как отправленные (так делает только рассылка тика).
func (s *Store) Snapshot(room string, mark bool) (RoomSnapshot, bool) {
	r, ok := s.get(room)
	if !ok {
		return RoomSnapshot{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(mark), true
}

// SweepDestroyQueue очищает записи очереди, уже унесенные снимком.
func (s *Store) SweepDestroyQueue(room string) int {
	r, ok := s.get(room)
	if !ok {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweep()
}

// Info - сводка по всем комнатам.
func (s *Store) Info() []RoomInfo {
	names := s.Rooms()
	out := make([]RoomInfo, 0, len(names))
	for _, name := range names {
		r, ok := s.get(name)
		if !ok {
			continue
		}
		r.mu.Lock()
		out = append(out, RoomInfo{
			Name:         name,
			Clients:      len(r.members),
			Entities:     len(r.entities),
			DestroyQueue: len(r.destroyQueue),
		})
		r.mu.Unlock()
	}
	return out
}
