// Package logging builds the logrus logger shared by the raffle packages.
package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the logger type passed between packages.
type Logger = *logrus.Logger

// Fields represents structured logging fields.
type Fields = logrus.Fields

// DefaultLevel keeps diagnostics quiet unless asked for.
const DefaultLevel = logrus.WarnLevel

// New returns a text logger writing to w at the given level.
// Unknown level names fall back to DefaultLevel.
func New(w io.Writer, level string) Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	logger.SetLevel(ParseLevel(level))

	return logger
}

// Discard returns a logger that drops everything. Useful as a default.
func Discard() Logger {
	return New(io.Discard, "panic")
}

// ParseLevel maps "debug", "info", "warn", "error" (and anything logrus
// accepts) to a level.
func ParseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return DefaultLevel
	}

	return parsed
}
