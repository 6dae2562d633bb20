package engine

import (
	"context"
	"testing"
	"time"

	"roomsync/internal/catalog"
	"roomsync/pkg/api"
)

func TestScheduler_RunBroadcastsUntilCancelled(t *testing.T) {
	cfg := NewConfig()
	cfg.Environment = nil
	cfg.TickRate = 100
	cfg.CleanupInterval = 20 * time.Millisecond
	s := NewService(cfg, catalog.Default())

	a := connect(t, s)
	mustSend(t, s, a, api.EventReady, nil)
	a.drain()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	deadline := time.After(2 * time.Second)
	for ticks := 0; ticks < 3; {
		select {
		case msg := <-a.ch:
			if msg.Event == api.EventServerTick {
				ticks++
			}
		case <-deadline:
			t.Fatalf("only %d ticks before deadline", ticks)
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestScheduler_SkipsEmptyRooms(t *testing.T) {
	s := newTestService(t)
	s.Store.GetOrCreate("empty")
	a := connect(t, s)
	a.drain()

	s.Scheduler.BroadcastOnce()
	if got := a.events(api.EventServerTick); len(got) != 0 {
		t.Errorf("client outside any room got %d ticks", len(got))
	}
}
