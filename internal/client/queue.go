package client

import (
	"fmt"
	"sync"

	"roomsync/internal/domain"
	"roomsync/pkg/api"
	"roomsync/pkg/logger"
)

// Inbound - разобранное сообщение сервера. Payload - одна из структур api.
type Inbound struct {
	Event   string
	Payload any
}

// DecodeServerMessage разбирает payload по имени события.
func DecodeServerMessage(in api.Inbound) (Inbound, error) {
	var payload any
	var err error
	switch in.Event {
	case api.EventWelcome:
		payload, err = bind[api.WelcomePayload](in)
	case api.EventClientConnected, api.EventClientDisconnected:
		payload, err = bind[api.PresencePayload](in)
	case api.EventClientJoinedRoom, api.EventClientLeftRoom:
		payload, err = bind[api.MembershipPayload](in)
	case api.EventServerTick:
		payload, err = bind[api.ServerTickPayload](in)
	case api.EventServerSpawn:
		payload, err = bind[api.SpawnNotice](in)
	case api.EventServerDespawn:
		payload, err = bind[api.DespawnNotice](in)
	default:
		return Inbound{}, fmt.Errorf("%w: unknown server event %q", domain.ErrProtocol, in.Event)
	}
	if err != nil {
		return Inbound{}, err
	}
	return Inbound{Event: in.Event, Payload: payload}, nil
}

func bind[T any](in api.Inbound) (any, error) {
	var p T
	if err := in.Bind(&p); err != nil {
		return nil, err
	}
	return p, nil
}

// Queue - очередь входящих сообщений между сетевой горутиной и циклом кадра.
//
// Снимки тика при переполнении отбрасываются (следующий их заменит),
// остальные сообщения ждут места в очереди.
type Queue struct {
	ch        chan Inbound
	closed    chan struct{}
	closeOnce sync.Once
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 1024
	}
	return &Queue{
		ch:     make(chan Inbound, size),
		closed: make(chan struct{}),
	}
}

// Push вызывается сетевой горутиной. Возвращает false, если сообщение не принято.
func (q *Queue) Push(msg Inbound) bool {
	if msg.Event == api.EventServerTick {
		select {
		case q.ch <- msg:
			return true
		default:
			logger.Log.WithField("event", msg.Event).Debug("Client queue full, snapshot dropped")
			return false
		}
	}

	select {
	case q.ch <- msg:
		return true
	case <-q.closed:
		return false
	}
}

// Drain забирает все накопленные сообщения, не блокируясь.
func (q *Queue) Drain() []Inbound {
	var out []Inbound
	for {
		select {
		case msg := <-q.ch:
			out = append(out, msg)
		default:
			return out
		}
	}
}

// Close освобождает сетевую горутину, ждущую места в очереди.
func (q *Queue) Close() {
	q.closeOnce.Do(func() { close(q.closed) })
}
