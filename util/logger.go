package util

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	appLogger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	loggerMu  sync.RWMutex
)

// InitLogger configures the process logger. Development uses the console writer,
// every other environment emits JSON lines.
func InitLogger(level, env string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	SetLogger(l)
	return l
}

// SetLogger replaces the process logger.
func SetLogger(l zerolog.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	appLogger = l
}

// Logger returns the process logger.
func Logger() *zerolog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	l := appLogger
	return &l
}
