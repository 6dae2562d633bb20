package logger

import (
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
)

// Log является глобальным экземпляром логгера для всего приложения.
// До вызова Init пишет в stderr с настройками logrus по умолчанию.
var Log = logrus.New()

// Options - настройки логгера из окружения.
type Options struct {
	// Level уровень логирования. По умолчанию - "info". Для отладки "debug".
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	// Format "json" - для продакшена и сбора логов, иначе цветной текст.
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Init инициализирует глобальный логгер из окружения.
// Эта функция должна быть вызвана один раз при старте приложения в main.go.
func Init() {
	opts, err := env.ParseAs[Options]()
	if err != nil {
		opts = Options{Level: "info", Format: "text"}
	}
	Configure(opts, os.Stdout)
}

// Configure пересоздает глобальный логгер с явными настройками.
func Configure(opts Options, out io.Writer) {
	l := logrus.New()

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.ToLower(opts.Format) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	l.SetOutput(out)
	Log = l
}

// Component возвращает запись с полем component.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
