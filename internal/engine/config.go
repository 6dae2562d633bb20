package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config хранит параметры запуска сервера
type Config struct {
	Port int `env:"ROOMSYNC_PORT" envDefault:"8080"`

	// TickRate - частота рассылки снимков комнат, Гц.
	TickRate int `env:"ROOMSYNC_TICK_RATE" envDefault:"8"`
	// CleanupInterval - период очистки очередей удаления.
	CleanupInterval time.Duration `env:"ROOMSYNC_CLEANUP_INTERVAL" envDefault:"10s"`
	// DefaultRoom - комната, в которую попадает клиент по событию ready.
	DefaultRoom string `env:"ROOMSYNC_DEFAULT_ROOM" envDefault:"lobby"`

	// SendBuffer - размер исходящего канала одного подключения.
	SendBuffer     int   `env:"ROOMSYNC_SEND_BUFFER" envDefault:"256"`
	MaxMessageSize int64 `env:"ROOMSYNC_MAX_MESSAGE_SIZE" envDefault:"65536"`

	// RequestRate и RequestBurst ограничивают входящие сообщения одного подключения.
	RequestRate  float64 `env:"ROOMSYNC_REQUEST_RATE" envDefault:"60"`
	RequestBurst int     `env:"ROOMSYNC_REQUEST_BURST" envDefault:"120"`

	// Environment - propID серверных пропов, создаваемых в DefaultRoom при старте.
	Environment []string `env:"ROOMSYNC_ENVIRONMENT" envDefault:"world" envSeparator:","`

	// JournalDir - каталог журнала запросов. Пусто - журнал выключен.
	JournalDir string `env:"ROOMSYNC_JOURNAL_DIR"`
}

// NewConfig создает конфиг по умолчанию
func NewConfig() Config {
	return Config{
		Port:            8080,
		TickRate:        8,
		CleanupInterval: 10 * time.Second,
		DefaultRoom:     "lobby",
		SendBuffer:      256,
		MaxMessageSize:  64 << 10,
		RequestRate:     60,
		RequestBurst:    120,
		Environment:     []string{"world"},
	}
}

// ParseEnv читает конфиг из переменных окружения ROOMSYNC_*.
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// TickPeriod - интервал между снимками.
func (c Config) TickPeriod() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// Validate проверяет конфиг перед стартом. Ошибка здесь фатальна.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.TickRate <= 0 {
		errs = append(errs, errors.New("tick rate must be positive"))
	}
	if c.CleanupInterval <= 0 {
		errs = append(errs, errors.New("cleanup interval must be positive"))
	}
	if c.DefaultRoom == "" {
		errs = append(errs, errors.New("default room is required"))
	}
	if c.SendBuffer <= 0 {
		errs = append(errs, errors.New("send buffer must be positive"))
	}
	if c.MaxMessageSize <= 0 {
		errs = append(errs, errors.New("max message size must be positive"))
	}
	if c.RequestRate <= 0 || c.RequestBurst <= 0 {
		errs = append(errs, errors.New("request rate and burst must be positive"))
	}
	return errors.Join(errs...)
}
