package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// TypeEnum tags a log line with the subsystem that produced it.
type TypeEnum string

const (
	TypeApp      TypeEnum = "app"
	TypeTracker  TypeEnum = "tracker"
	TypeStore    TypeEnum = "store"
	TypeReport   TypeEnum = "report"
	TypeExport   TypeEnum = "export"
	TypeWatcher  TypeEnum = "watcher"
	TypeIdentity TypeEnum = "identity"
)

// Logger is the diagnostics sink handed to every component.
type Logger interface {
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Errorf(t TypeEnum, format string, args ...interface{})
	Close()
}

// Options configures New.
type Options struct {
	Level string
	// File switches output to JSON lines appended to this path. Empty means
	// human-readable console output on stderr.
	File string
}

type zeroLogger struct {
	log    zerolog.Logger
	closer io.Closer
}

// New builds a zerolog backed Logger.
func New(opts Options) (Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		lvl, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = lvl
	}

	var (
		w      io.Writer
		closer io.Closer
	)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		w, closer = f, f
	} else {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	}

	return &zeroLogger{
		log:    zerolog.New(w).Level(level).With().Timestamp().Logger(),
		closer: closer,
	}, nil
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &zeroLogger{log: zerolog.Nop()}
}

func (l *zeroLogger) Debugf(t TypeEnum, format string, args ...interface{}) {
	l.log.Debug().Str("type", string(t)).Msgf(format, args...)
}

func (l *zeroLogger) Infof(t TypeEnum, format string, args ...interface{}) {
	l.log.Info().Str("type", string(t)).Msgf(format, args...)
}

func (l *zeroLogger) Warnf(t TypeEnum, format string, args ...interface{}) {
	l.log.Warn().Str("type", string(t)).Msgf(format, args...)
}

func (l *zeroLogger) Errorf(t TypeEnum, format string, args ...interface{}) {
	l.log.Error().Str("type", string(t)).Msgf(format, args...)
}

func (l *zeroLogger) Close() {
	if l.closer != nil {
		_ = l.closer.Close()
	}
}
