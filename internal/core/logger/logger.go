// Package logger is a small leveled logger backed by logrus.
package logger

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger writes leveled, printf-style messages.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})
}

type implLogger struct {
	logger *logrus.Logger
}

// New creates a Logger writing to stderr. Unknown levels behave as info.
func New(level string) Logger {
	return NewWriter(os.Stderr, level)
}

// NewWriter creates a Logger writing to w.
func NewWriter(w io.Writer, level string) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})
	l.SetLevel(parseLevel(level))
	return &implLogger{logger: l}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return NewWriter(io.Discard, "error")
}

// ValidLevel reports whether level is one of debug, info, warn or error.
func ValidLevel(level string) bool {
	lvl, err := logrus.ParseLevel(level)
	return err == nil && lvl >= logrus.ErrorLevel && lvl <= logrus.DebugLevel
}

func parseLevel(level string) logrus.Level {
	if !ValidLevel(level) {
		return logrus.InfoLevel
	}
	lvl, _ := logrus.ParseLevel(level)
	return lvl
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.logger.WithContext(ctx).Debugf(msg, args...)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.logger.WithContext(ctx).Infof(msg, args...)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.logger.WithContext(ctx).Warnf(msg, args...)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.logger.WithContext(ctx).Errorf(msg, args...)
}
