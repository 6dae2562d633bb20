package client

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config - параметры клиентского движка.
type Config struct {
	ServerURL string `env:"ROOMSYNC_SERVER_URL" envDefault:"ws://localhost:8080/ws"`
	Codec     string `env:"ROOMSYNC_CODEC" envDefault:"json"`

	// BlendDecay - скорость схождения чужих реплик к полученному состоянию.
	BlendDecay float64 `env:"ROOMSYNC_BLEND_DECAY" envDefault:"10"`
	QueueSize  int     `env:"ROOMSYNC_QUEUE_SIZE" envDefault:"1024"`
	FrameRate  int     `env:"ROOMSYNC_FRAME_RATE" envDefault:"60"`
}

func NewConfig() Config {
	return Config{
		ServerURL:  "ws://localhost:8080/ws",
		Codec:      "json",
		BlendDecay: DefaultBlendDecay,
		QueueSize:  1024,
		FrameRate:  60,
	}
}

// ParseEnv читает конфиг клиента из ROOMSYNC_*.
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// FramePeriod - длительность кадра.
func (c Config) FramePeriod() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.FrameRate)
}
