package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"roomsync/internal/catalog"
	"roomsync/internal/domain"
	"roomsync/internal/engine/handlers"
	"roomsync/internal/engine/handlers/actions"
	"roomsync/internal/network"
	"roomsync/internal/version"
	"roomsync/pkg/api"
	"roomsync/pkg/logger"
)

// GameService - серверная сторона репликации. Владеет реестром подключений,
// комнатами, рассылкой, каталогом типов и планировщиком тиков.
type GameService struct {
	Config    Config
	Registry  *Registry
	Store     *Store
	Hub       *network.Broadcaster
	Catalog   *catalog.Catalog
	Scheduler *Scheduler

	// Journal, если задан, получает каждый принятый запрос.
	Journal Journal

	handlers map[domain.ActionType]handlers.HandlerFunc
}

// Journal - журнал принятых запросов клиентов.
type Journal interface {
	Record(connID string, action domain.ActionType, codec string, payload []byte) error
}

func NewService(cfg Config, cat *catalog.Catalog) *GameService {
	hub := network.NewBroadcaster()
	registry := NewRegistry()
	store := NewStore(registry, hub)

	s := &GameService{
		Config:    cfg,
		Registry:  registry,
		Store:     store,
		Hub:       hub,
		Catalog:   cat,
		Scheduler: NewScheduler(store, hub, cfg),
		handlers:  make(map[domain.ActionType]handlers.HandlerFunc),
	}

	s.registerHandlers()
	return s
}

func (s *GameService) registerHandlers() {
	s.handlers[domain.ActionReady] = handlers.WithEmptyPayload(actions.HandleReady)
	s.handlers[domain.ActionJoinRoom] = handlers.WithPayload(actions.HandleJoinRoom)
	s.handlers[domain.ActionSpawn] = handlers.InRoom(handlers.WithPayload(actions.HandleSpawn))
	s.handlers[domain.ActionDespawn] = handlers.InRoom(handlers.WithPayload(actions.HandleDespawn))
	s.handlers[domain.ActionTickResponse] = handlers.InRoom(handlers.WithPayload(actions.HandleTickResponse))
}

// Start запускает циклы тика и очистки. Блокируется до отмены ctx.
func (s *GameService) Start(ctx context.Context) error {
	return s.Scheduler.Run(ctx)
}

// SeedEnvironment создает серверные пропы окружения в комнате по умолчанию.
// Они переживают любых клиентов (destroyOnOwnerLeave=false).
func (s *GameService) SeedEnvironment() []domain.EntityState {
	noCascade := false
	out := make([]domain.EntityState, 0, len(s.Config.Environment))
	for _, propID := range s.Config.Environment {
		if propID == "" {
			continue
		}
		e := s.Store.CreateEntity(s.Config.DefaultRoom, catalog.TypeProp, domain.OwnerServer, domain.EntityPatch{
			DestroyOnOwnerLeave: &noCascade,
			Fields:              map[string]any{"propID": propID, "static": true},
		})
		out = append(out, e)
	}
	logger.Log.WithFields(logrus.Fields{
		"room":  s.Config.DefaultRoom,
		"props": len(out),
	}).Info("Environment seeded")
	return out
}

// Connect регистрирует подключение и возвращает его ID и личный канал.
// Клиент первым получает welcome, затем все - clientConnected.
func (s *GameService) Connect() (string, <-chan api.Message) {
	id := s.Registry.Connect()
	ch := s.Hub.Register(id, s.Config.SendBuffer)

	s.Hub.SendTo(id, api.Message{
		Event:   api.EventWelcome,
		Payload: api.WelcomePayload{ID: id, Protocol: api.ProtocolVersion, Build: version.Short()},
	})
	s.Hub.Broadcast(api.Message{
		Event:   api.EventClientConnected,
		Payload: api.PresencePayload{ID: id, Clients: s.Registry.IDs()},
	})

	logger.Log.WithField("conn_id", id).Info("Client connected")
	return id, ch
}

// Disconnect - выход из комнаты (с удалением сущностей), затем
// clientDisconnected бывшей комнате. Повторный вызов ничего не делает.
func (s *GameService) Disconnect(id string) {
	room, ok := s.Registry.Disconnect(id, func(string) {
		s.Store.Leave(id)
	})
	s.Hub.Unregister(id)
	if !ok {
		return
	}

	if room != "" {
		members := s.Store.Members(room)
		s.Hub.Multicast(members, api.Message{
			Event:   api.EventClientDisconnected,
			Payload: api.PresencePayload{ID: id, Clients: members},
		})
	}
	logger.Log.WithFields(logrus.Fields{"conn_id": id, "room": room}).Info("Client disconnected")
}

// ProcessCommand обрабатывает один запрос клиента синхронно,
// в горутине чтения его подключения. Ошибки логируются и возвращаются;
// соединение из-за них не рвется.
func (s *GameService) ProcessCommand(connID string, in api.Inbound) error {
	entry := logger.Log.WithFields(logrus.Fields{"conn_id": connID, "event": in.Event})

	actionType := domain.ParseAction(in.Event)
	handler, ok := s.handlers[actionType]
	if !ok {
		err := fmt.Errorf("%w: unknown event %q", domain.ErrProtocol, in.Event)
		entry.Warn("Unknown event")
		return err
	}

	room, ok := s.Registry.RoomOf(connID)
	if !ok {
		return fmt.Errorf("%w: unknown connection", domain.ErrProtocol)
	}

	ctx := handlers.Context{
		ConnID:      connID,
		Room:        room,
		DefaultRoom: s.Config.DefaultRoom,
		Store:       s.Store,
		HasType:     s.Catalog.Has,
	}

	res, err := handler(ctx, in)
	if err != nil {
		// ответ на тик после удаления сущности - штатная гонка
		if actionType == domain.ActionTickResponse && errors.Is(err, domain.ErrUnknownEntity) {
			entry.WithError(err).Debug("Tick response partially rejected")
		} else {
			entry.WithError(err).Warn("Request rejected")
		}
		return err
	}

	if s.Journal != nil {
		if err := s.Journal.Record(connID, actionType, in.Codec(), in.Payload()); err != nil {
			entry.WithError(err).Warn("Journal write failed")
		}
	}

	if res.Event != nil {
		s.Hub.Multicast(s.Store.Members(res.Room), *res.Event)
	}
	if res.Msg != "" {
		entry.Debug(res.Msg)
	}
	return nil
}
