package storage

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"duelist/internal/task"
)

const defaultRedisPrefix = "duelist"

// insertScript bumps the sequence, writes the hash and indexes the id under
// the new sequence in a single round trip.
// KEYS: doc, index, seq. ARGV: id, then field/value pairs.
var insertScript = redis.NewScript(`
local seq = redis.call('INCR', KEYS[3])
redis.call('HSET', KEYS[1], unpack(ARGV, 2))
redis.call('ZADD', KEYS[2], seq, ARGV[1])
return seq
`)

// Redis keeps each task in a hash and the insertion order in a sorted set
// scored by a counter.
type Redis struct {
	client *redis.Client
	index  string
	prefix string
	log    *log.Entry
}

// OpenRedis accepts a redis:// URL or the "host:port,password=...,ssl=true"
// connection string format.
func OpenRedis(ctx context.Context, conn, prefix, collection string, logger *log.Entry) (*Redis, error) {
	if conn == "" {
		return nil, errors.New("missing redis config")
	}
	client := redis.NewClient(parseRedisOptions(conn))
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedis(client, prefix, collection, logger), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, prefix, collection string, logger *log.Entry) *Redis {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	if collection == "" {
		collection = DefaultCollection
	}
	base := prefix + redisKeyDivider + collection
	return &Redis{client: client, index: base, prefix: base + redisKeyDivider, log: logger}
}

func parseRedisOptions(conn string) *redis.Options {
	if opts, err := redis.ParseURL(conn); err == nil {
		return opts
	}
	parts := strings.Split(conn, ",")
	opts := &redis.Options{Addr: strings.TrimSpace(parts[0])}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(kv[0])) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.EqualFold(strings.TrimSpace(kv[1]), "true") {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts
}

func (r *Redis) Close() error { return r.client.Close() }

func (r *Redis) docKey(id string) string { return r.prefix + id }

func (r *Redis) seqKey() string { return r.index + redisKeyDivider + "seq" }

func (r *Redis) Insert(ctx context.Context, f task.Fields) (string, error) {
	id := newID()
	keys := []string{r.docKey(id), r.index, r.seqKey()}
	err := insertScript.Run(ctx, r.client, keys,
		id,
		"text", f.Text,
		"completed", f.Completed,
		"deadline", task.FormatDeadline(f.Deadline),
		"priority", f.Priority,
		"description", f.Description,
	).Err()
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Redis) ListAll(ctx context.Context) ([]task.Task, error) {
	ids, err := r.client.ZRange(ctx, r.index, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	tasks := []task.Task{}
	if len(ids) == 0 {
		return tasks, nil
	}
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, r.docKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i, cmd := range cmds {
		doc := cmd.Val()
		if len(doc) == 0 {
			r.log.WithField("id", ids[i]).Debug("index entry without document")
			continue
		}
		tasks = append(tasks, r.decode(ids[i], doc))
	}
	return tasks, nil
}

func (r *Redis) UpdateFields(ctx context.Context, id string, p task.Patch) error {
	fields := map[string]any{}
	if p.Text != nil {
		fields["text"] = *p.Text
	}
	if p.Completed != nil {
		fields["completed"] = *p.Completed
	}
	if p.Deadline != nil {
		fields["deadline"] = task.FormatDeadline(*p.Deadline)
	}
	if p.Priority != nil {
		fields["priority"] = *p.Priority
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	key := r.docKey(id)
	return r.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		if len(fields) == 0 {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fields)
			return nil
		})
		return err
	}, key)
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, r.docKey(id))
		pipe.ZRem(ctx, r.index, id)
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Redis) decode(id string, doc map[string]string) task.Task {
	t := task.Task{
		ID:          id,
		Text:        doc["text"],
		Description: doc["description"],
		Deadline:    decodeDeadline(r.log, id, doc["deadline"]),
	}
	t.Completed, _ = strconv.ParseBool(doc["completed"])
	if p, err := strconv.Atoi(doc["priority"]); err == nil {
		t.Priority = p
	}
	return t
}
