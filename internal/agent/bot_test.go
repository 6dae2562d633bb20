package agent

import (
	"context"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"roomsync/internal/catalog"
	"roomsync/internal/client"
	"roomsync/internal/domain"
	"roomsync/internal/engine"
	"roomsync/internal/server"
	"roomsync/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func TestBot_SpawnsCharacterAndDrivesIt(t *testing.T) {
	cfg := engine.NewConfig()
	cfg.TickRate = 50
	game := engine.NewService(cfg, catalog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = game.Start(ctx) }()

	srv := httptest.NewServer(server.New(game, cfg.Port).Handler())
	defer srv.Close()

	ccfg := client.NewConfig()
	ccfg.ServerURL = "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ccfg.Codec = "msgpack"
	bot := NewBot("test-bot", ccfg, catalog.Default(), 1)

	done := make(chan error, 1)
	botCtx, stopBot := context.WithCancel(ctx)
	go func() { done <- bot.Run(botCtx) }()

	character := func() (domain.EntityState, bool) {
		snap, ok := game.Store.Snapshot(cfg.DefaultRoom, false)
		if !ok {
			return domain.EntityState{}, false
		}
		for _, e := range snap.Entities {
			if e.Type == catalog.TypeCharacter && e.Bool("ownerIsPlayer", false) {
				return e, true
			}
		}
		return domain.EntityState{}, false
	}

	// персонаж появляется на высоте 2 и падает на пол (y=0) по ответам бота
	deadline := time.Now().Add(10 * time.Second)
	for {
		if e, ok := character(); ok && e.Position.Y < 0.5 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("bot character never settled on the floor")
		}
		time.Sleep(20 * time.Millisecond)
	}

	stopBot()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("bot did not stop")
	}

	// после отключения персонаж удален вместе с владельцем
	deadline = time.Now().Add(5 * time.Second)
	for {
		if _, ok := character(); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("character survived bot disconnect")
		}
		time.Sleep(20 * time.Millisecond)
	}
}
