// Package storage is the boundary to the document store holding the task
// collection. Every call is a single round trip with no caching.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"duelist/internal/task"
)

const DefaultCollection = "tasks"

var ErrNotFound = errors.New("task not found")

// Store is the task collection.
type Store interface {
	Insert(ctx context.Context, f task.Fields) (string, error)
	ListAll(ctx context.Context) ([]task.Task, error)
	UpdateFields(ctx context.Context, id string, p task.Patch) error
	Delete(ctx context.Context, id string) error
	Close() error
}

const (
	BackendSQLite   = "sqlite"
	BackendAzure    = "aztables"
	BackendRedis    = "redis"
	defaultBackend  = BackendSQLite
	redisKeyDivider = ":"
)

// Options selects and configures a backend.
type Options struct {
	Backend    string
	Collection string

	DBPath string

	AzureConnectionString string

	RedisURL    string
	RedisPrefix string

	Logger *log.Entry
}

// Open connects to the configured backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}
	if opts.Logger == nil {
		l := log.New()
		l.SetOutput(io.Discard)
		opts.Logger = log.NewEntry(l)
	}
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend == "" {
		backend = defaultBackend
	}
	logger := opts.Logger.WithField("backend", backend)
	switch backend {
	case BackendSQLite:
		return OpenSQLite(opts.DBPath, logger)
	case BackendAzure:
		return OpenAzure(ctx, opts.AzureConnectionString, opts.Collection, logger)
	case BackendRedis:
		return OpenRedis(ctx, opts.RedisURL, opts.RedisPrefix, opts.Collection, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

func newID() string {
	return uuid.NewString()
}

// decodeDeadline keeps records with a broken deadline visible: they get the
// zero time and sort as expired.
func decodeDeadline(logger *log.Entry, id, raw string) time.Time {
	if raw == "" {
		logger.WithField("id", id).Warn("task has no deadline")
		return time.Time{}
	}
	t, err := task.ParseDeadline(raw)
	if err != nil {
		logger.WithField("id", id).WithError(err).Warn("unparseable deadline")
		return time.Time{}
	}
	return t
}
