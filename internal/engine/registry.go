package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Connection - запись о живом подключении.
type Connection struct {
	ID          string
	Room        string // пусто, пока клиент не вошел в комнату
	ConnectedAt time.Time
}

// Registry - реестр живых подключений и комнаты, в которой находится каждое.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Connection
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Connection)}
}

// Connect выдает новый идентификатор. Идентификаторы не переиспользуются.
func (r *Registry) Connect() string {
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &Connection{ID: id, ConnectedAt: time.Now()}
	return id
}

// Disconnect удаляет подключение. Перед удалением записи вызывается leave
// с текущей комнатой, чтобы очистка владения прошла до исчезновения ID.
// Возвращает комнату, в которой было подключение.
func (r *Registry) Disconnect(id string, leave func(room string)) (string, bool) {
	room, ok := r.RoomOf(id)
	if !ok {
		return "", false
	}
	if room != "" && leave != nil {
		leave(room)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.conns[id]; !exists {
		return "", false
	}
	delete(r.conns, id)
	return room, true
}

// RoomOf возвращает комнату подключения. ok=false для неизвестного ID.
func (r *Registry) RoomOf(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[id]
	if !ok {
		return "", false
	}
	return c.Room, true
}

// SetRoom запоминает комнату подключения. Для неизвестного ID ничего не делает.
func (r *Registry) SetRoom(id, room string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	if !ok {
		return false
	}
	c.Room = room
	return true
}

// IDs - все живые подключения, отсортированные.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.conns))
	for id := range r.conns {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Get возвращает копию записи.
func (r *Registry) Get(id string) (Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[id]
	if !ok {
		return Connection{}, false
	}
	return *c, true
}
