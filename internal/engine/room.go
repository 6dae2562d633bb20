package engine

import (
	"sort"
	"sync"

	"roomsync/internal/domain"
)

// destroyNotice - запись очереди удаления.
type destroyNotice struct {
	UniqueID string
	// broadcasts - сколько снимков уже унесли эту запись клиентам.
	broadcasts int
}

// Room - авторитетное состояние одной комнаты.
// Все поля читаются и меняются только под mu.
type Room struct {
	Name string

	mu           sync.Mutex
	members      []string // в порядке входа
	entities     map[string]*domain.EntityState
	destroyQueue []destroyNotice
}

func newRoom(name string) *Room {
	return &Room{
		Name:     name,
		entities: make(map[string]*domain.EntityState),
	}
}

// RoomSnapshot - глубокая копия комнаты на момент снимка.
type RoomSnapshot struct {
	Room         string                        `json:"room"`
	Clients      []string                      `json:"clients"`
	Entities     map[string]domain.EntityState `json:"entities"`
	DestroyQueue []string                      `json:"destroyQueue"`
}

// RoomInfo - краткая сводка для отладочных эндпоинтов.
type RoomInfo struct {
	Name         string `json:"name"`
	Clients      int    `json:"clients"`
	Entities     int    `json:"entities"`
	DestroyQueue int    `json:"destroyQueue"`
}

// --- методы ниже вызываются только под r.mu ---

func (r *Room) hasMember(id string) bool {
	for _, m := range r.members {
		if m == id {
			return true
		}
	}
	return false
}

func (r *Room) addMember(id string) {
	if !r.hasMember(id) {
		r.members = append(r.members, id)
	}
}

func (r *Room) removeMember(id string) bool {
	for i, m := range r.members {
		if m == id {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Room) membersCopy() []string {
	out := make([]string, len(r.members))
	copy(out, r.members)
	return out
}

// enqueueDestroy не дублирует uniqueID, уже стоящий в очереди.
func (r *Room) enqueueDestroy(uniqueID string) {
	for _, n := range r.destroyQueue {
		if n.UniqueID == uniqueID {
			return
		}
	}
	r.destroyQueue = append(r.destroyQueue, destroyNotice{UniqueID: uniqueID})
}

func (r *Room) removeEntity(uniqueID string) {
	delete(r.entities, uniqueID)
	r.enqueueDestroy(uniqueID)
}

// purgeOwner удаляет сущности владельца с destroyOnOwnerLeave.
func (r *Room) purgeOwner(ownerID string) []string {
	var purged []string
	for id, e := range r.entities {
		if e.OwnerID == ownerID && e.DestroyOnOwnerLeave {
			purged = append(purged, id)
		}
	}
	sort.Strings(purged)
	for _, id := range purged {
		r.removeEntity(id)
	}
	return purged
}

func (r *Room) snapshot(mark bool) RoomSnapshot {
	s := RoomSnapshot{
		Room:         r.Name,
		Clients:      r.membersCopy(),
		Entities:     make(map[string]domain.EntityState, len(r.entities)),
		DestroyQueue: make([]string, 0, len(r.destroyQueue)),
	}
	for id, e := range r.entities {
		s.Entities[id] = e.Clone()
	}
	for i := range r.destroyQueue {
		s.DestroyQueue = append(s.DestroyQueue, r.destroyQueue[i].UniqueID)
		if mark {
			r.destroyQueue[i].broadcasts++
		}
	}
	return s
}

// sweep оставляет только записи, которые еще не ушли ни в один снимок.
func (r *Room) sweep() int {
	kept := r.destroyQueue[:0]
	removed := 0
	for _, n := range r.destroyQueue {
		if n.broadcasts > 0 {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	r.destroyQueue = kept
	return removed
}
