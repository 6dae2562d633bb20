package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"roomsync/internal/agent"
	"roomsync/internal/catalog"
	"roomsync/internal/client"
	"roomsync/pkg/logger"
)

func init() {
	logger.Init()
}

func main() {
	cfg, err := client.ParseEnv()
	if err != nil {
		logger.Log.Fatal("Config error: ", err)
	}
	var count int
	var seed int64
	flag.StringVar(&cfg.ServerURL, "url", cfg.ServerURL, "Server WebSocket URL")
	flag.StringVar(&cfg.Codec, "codec", cfg.Codec, "Wire codec: json or msgpack")
	flag.IntVar(&count, "count", 1, "Number of bots")
	flag.Int64Var(&seed, "seed", 1, "Input seed of the first bot")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat := catalog.Default()
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		bot := agent.NewBot(fmt.Sprintf("bot-%d", i+1), cfg, cat, seed+int64(i))
		g.Go(func() error { return bot.Run(ctx) })
	}

	logger.Log.Infof("Started %d bot(s) against %s", count, cfg.ServerURL)
	if err := g.Wait(); err != nil {
		logger.Log.WithError(err).Error("Bot stopped with error")
		os.Exit(1)
	}
}
