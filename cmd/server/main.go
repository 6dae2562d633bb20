package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"roomsync/internal/catalog"
	"roomsync/internal/engine"
	"roomsync/internal/infrastructure/storage"
	"roomsync/internal/server"
	"roomsync/internal/version"
	"roomsync/pkg/api"
	"roomsync/pkg/logger"
)

func init() {
	logger.Init()
}

func main() {
	// 1. Конфигурация: окружение, поверх него флаги
	cfg, err := engine.ParseEnv()
	if err != nil {
		logger.Log.Fatal("Config error: ", err)
	}
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP/WebSocket port")
	flag.IntVar(&cfg.TickRate, "tick", cfg.TickRate, "Room snapshot rate, Hz")
	flag.StringVar(&cfg.DefaultRoom, "room", cfg.DefaultRoom, "Room joined on ready")
	flag.StringVar(&cfg.JournalDir, "journal", cfg.JournalDir, "Directory for the request journal (empty disables)")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		logger.Log.Fatal("Invalid config: ", err)
	}

	logger.Log.Info("Starting roomsync...")
	logger.Log.Info(version.String())

	// 2. Инициализация ядра
	gameService := engine.NewService(cfg, catalog.Default())
	gameService.SeedEnvironment()

	if cfg.JournalDir != "" {
		journal, path, err := storage.Create(cfg.JournalDir, api.ProtocolVersion)
		if err != nil {
			logger.Log.Fatal("Journal error: ", err)
		}
		defer func() {
			if err := journal.Close(); err != nil {
				logger.Log.WithError(err).Error("Journal close failed")
			}
		}()
		gameService.Journal = journal
		logger.Log.Infof("Recording requests to %s", path)
	}

	// Graceful Shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Запуск тика и сервера
	srv := server.New(gameService, cfg.Port)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return gameService.Start(ctx) })
	g.Go(func() error { return srv.Run(ctx) })

	if err := g.Wait(); err != nil {
		logger.Log.WithError(err).Error("Server stopped with error")
		return
	}
	logger.Log.Info("Done.")
}
