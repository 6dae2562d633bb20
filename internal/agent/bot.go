package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"roomsync/internal/catalog"
	"roomsync/internal/client"
	"roomsync/internal/domain"
	"roomsync/pkg/logger"
)

// Bot представляет собой "Игрока-компьютера" (Headless Agent).
// Он подключается к серверу так же, как обычный клиент через WebSocket,
// крутит клиентский движок без рендера и управляет своим персонажем
// случайным вводом.
//
// Жизненный цикл:
//  1. Run -> подключение, ожидание welcome, отправка ready.
//  2. Вход в комнату -> запрос спавна персонажа (ownerIsPlayer).
//  3. Каждый кадр -> новый случайный ввод, шаг физики, ответ на тик.
type Bot struct {
	Name string

	cfg     client.Config
	catalog *catalog.Catalog
	engine  *client.Engine
	physics *KinematicWorld
	input   *RandomInput

	readySent bool
	log       *logrus.Entry
}

func NewBot(name string, cfg client.Config, cat *catalog.Catalog, seed int64) *Bot {
	b := &Bot{
		Name:    name,
		cfg:     cfg,
		catalog: cat,
		physics: NewKinematicWorld(),
		input:   NewRandomInput(seed),
		log:     logger.Component("bot").WithField("bot", name),
	}
	b.engine = client.NewEngine(cfg, cat, nil, client.Options{
		Scene:        &logScene{log: b.log},
		Physics:      b.physics,
		Input:        b.input,
		OnJoinedRoom: b.onJoinedRoom,
	})
	return b
}

// Engine - клиентский движок бота (для тестов и отладки).
func (b *Bot) Engine() *client.Engine {
	return b.engine
}

// Run подключается к серверу и крутит кадры до отмены ctx или обрыва соединения.
func (b *Bot) Run(ctx context.Context) error {
	conn, err := client.Dial(ctx, b.cfg.ServerURL, b.cfg.Codec, b.engine.Queue())
	if err != nil {
		return fmt.Errorf("bot %s: %w", b.Name, err)
	}
	defer conn.Close()
	b.engine.SetTransport(conn)
	b.log.WithField("url", b.cfg.ServerURL).Info("Bot connected")

	period := b.cfg.FramePeriod()
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			b.log.Info("Bot shut down")
			return nil
		case <-conn.Done():
			return fmt.Errorf("bot %s: connection lost", b.Name)
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			b.Step(dt)
		}
	}
}

// Step - один кадр бота.
func (b *Bot) Step(dt float64) {
	b.input.Advance(dt)
	b.engine.Frame(dt)

	// ready отправляем, как только сервер сообщил наш ID
	if !b.readySent && b.engine.ID() != "" {
		if err := b.engine.Ready(); err != nil {
			b.log.WithError(err).Warn("ready not sent")
			return
		}
		b.readySent = true
	}
}

// onJoinedRoom запрашивает персонажа, которым бот будет управлять.
func (b *Bot) onJoinedRoom(room string) {
	id := b.engine.ID()
	args := domain.EntityPatch{
		OwnerID:  &id,
		Position: &domain.Vec3{Y: 2},
		Fields: map[string]any{
			"propID":        "player",
			"ownerIsPlayer": true,
		},
	}
	if err := b.engine.RequestSpawn(catalog.TypeCharacter, args); err != nil {
		b.log.WithError(err).Warn("character spawn not requested")
		return
	}
	b.log.WithField("room", room).Info("Character requested")
}

// logScene заменяет рендер: только пишет в лог.
type logScene struct {
	log *logrus.Entry
}

func (s *logScene) Add(uniqueID string, r *client.Replica) {
	s.log.WithFields(logrus.Fields{"unique_id": uniqueID, "type": r.State.Type}).Debug("Scene add")
}

func (s *logScene) Remove(uniqueID string) {
	s.log.WithField("unique_id", uniqueID).Debug("Scene remove")
}
