package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"roomsync/pkg/api"
	"roomsync/pkg/logger"
)

// Scheduler - два независимых периодических цикла: рассылка снимков
// и очистка очередей удаления. Подключения и запросы на них не влияют.
type Scheduler struct {
	store  *Store
	notify Notifier

	tickPeriod      time.Duration
	cleanupInterval time.Duration

}

func NewScheduler(store *Store, notify Notifier, cfg Config) *Scheduler {
	return &Scheduler{
		store:           store,
		notify:          notify,
		tickPeriod:      cfg.TickPeriod(),
		cleanupInterval: cfg.CleanupInterval,
	}
}

// Run блокируется до отмены ctx.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.loop(ctx, s.tickPeriod, s.BroadcastOnce)
		return nil
	})
	g.Go(func() error {
		s.loop(ctx, s.cleanupInterval, s.CleanupOnce)
		return nil
	})

	logger.Component("scheduler").WithField("tick_period", s.tickPeriod).
		WithField("cleanup_interval", s.cleanupInterval).Info("Scheduler started")
	err := g.Wait()
	logger.Component("scheduler").Info("Scheduler stopped")
	return err
}

func (s *Scheduler) loop(ctx context.Context, period time.Duration, step func()) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			step()
		}
	}
}

// BroadcastOnce отправляет каждому участнику каждой комнаты полный снимок.
// Снимок volatile: при переполненном буфере клиента он теряется.
func (s *Scheduler) BroadcastOnce() {
	for _, name := range s.store.Rooms() {
		snap, ok := s.store.Snapshot(name, true)
		if !ok || len(snap.Clients) == 0 {
			continue
		}
		s.notify.Multicast(snap.Clients, api.Message{
			Event: api.EventServerTick,
			Payload: api.ServerTickPayload{
				Room:         snap.Room,
				Clients:      snap.Clients,
				Entities:     snap.Entities,
				DestroyQueue: snap.DestroyQueue,
			},
			Volatile: true,
		})
	}
}

// CleanupOnce очищает очереди удаления всех комнат.
func (s *Scheduler) CleanupOnce() {
	for _, name := range s.store.Rooms() {
		if n := s.store.SweepDestroyQueue(name); n > 0 {
			logger.Component("scheduler").WithField("room", name).
				WithField("cleared", n).Debug("Destroy queue swept")
		}
	}
}
