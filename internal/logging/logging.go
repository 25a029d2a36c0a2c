// Package logging sets up the file logger. The terminal belongs to the UI,
// so nothing is written to stdout or stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Open creates a logger appending to path at the given level. The returned
// closer releases the file.
func Open(path, level string) (*log.Logger, io.Closer, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(f, lvl), f, nil
}

// New builds a logger on w.
func New(w io.Writer, level log.Level) *log.Logger {
	l := log.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(&log.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	return l
}

// Component tags entries with the part of the program that wrote them.
func Component(l *log.Logger, name string) *log.Entry {
	return l.WithField("component", name)
}

func parseLevel(v string) (log.Level, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(v)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}
