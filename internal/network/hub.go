package network

import (
	"roomsync/pkg/api"
	"roomsync/pkg/logger"
	"sync"
)

// DefaultBuffer размер личного канала подписчика, если не задан явно.
const DefaultBuffer = 256

// Broadcaster занимается только рассылкой сообщений подписчикам.
//
// Отправка никогда не блокирует: volatile-сообщение при полном канале
// теряется, а подписчик, не успевший принять надежное сообщение,
// отключается (его канал закрывается, writePump закрывает сокет).
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: ConnID -> Личный канал
	subscribers map[string]chan api.Message
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]chan api.Message),
	}
}

// Register создает личный канал для подключения
func (b *Broadcaster) Register(connID string, buffer int) chan api.Message {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Если канал был, закрываем
	if old, ok := b.subscribers[connID]; ok {
		close(old)
	}

	ch := make(chan api.Message, buffer)
	b.subscribers[connID] = ch
	return ch
}

// Unregister удаляет подписчика и закрывает его канал. Повторный вызов безопасен.
func (b *Broadcaster) Unregister(connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[connID]; ok {
		close(ch)
		delete(b.subscribers, connID)
	}
}

// SendTo отправляет сообщение конкретному ID (Unicast)
func (b *Broadcaster) SendTo(connID string, msg api.Message) {
	b.Multicast([]string{connID}, msg)
}

// Multicast отправляет сообщение списку подключений (участникам комнаты).
func (b *Broadcaster) Multicast(connIDs []string, msg api.Message) {
	var slow []string

	b.mu.RLock()
	for _, id := range connIDs {
		ch, ok := b.subscribers[id]
		if !ok {
			continue
		}
		if !offer(ch, msg) && !msg.Volatile {
			slow = append(slow, id)
		}
	}
	b.mu.RUnlock()

	b.evict(slow, msg.Event)
}

// Broadcast отправляет всем подключениям процесса
func (b *Broadcaster) Broadcast(msg api.Message) {
	var slow []string

	b.mu.RLock()
	for id, ch := range b.subscribers {
		if !offer(ch, msg) && !msg.Volatile {
			slow = append(slow, id)
		}
	}
	b.mu.RUnlock()

	b.evict(slow, msg.Event)
}

// HasSubscriber проверяет, подключен ли ID
func (b *Broadcaster) HasSubscriber(connID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subscribers[connID]
	return ok
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

func offer(ch chan api.Message, msg api.Message) bool {
	select {
	case ch <- msg:
		return true
	default:
		return false
	}
}

func (b *Broadcaster) evict(ids []string, event string) {
	for _, id := range ids {
		logger.Log.WithField("conn_id", id).WithField("event", event).
			Warn("Hub: send buffer full, dropping slow subscriber")
		b.Unregister(id)
	}
}
