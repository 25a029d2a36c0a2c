package storage

import (
	"context"
	"sync/atomic"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedis(client, "test", "", quietLogger())
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStore(t *testing.T) {
	s, _ := newTestRedis(t)
	exerciseStore(t, s)
}

func TestRedisKeyLayout(t *testing.T) {
	s, mr := newTestRedis(t)
	id, err := s.Insert(context.Background(), fieldsForTest())
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if got := mr.HGet("test:tasks:"+id, "text"); got != "Buy milk" {
		t.Fatalf("unexpected hash field: %q", got)
	}
	members, err := mr.ZMembers("test:tasks")
	if err != nil {
		t.Fatalf("zmembers: %v", err)
	}
	if len(members) != 1 || members[0] != id {
		t.Fatalf("unexpected index: %v", members)
	}
}

// roundTrips counts client calls that reach the server.
type roundTrips struct{ n atomic.Int64 }

func (h *roundTrips) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *roundTrips) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.n.Add(1)
		return next(ctx, cmd)
	}
}

func (h *roundTrips) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		h.n.Add(1)
		return next(ctx, cmds)
	}
}

func TestRedisInsertIsOneRoundTrip(t *testing.T) {
	s, mr := newTestRedis(t)
	ctx := context.Background()
	if err := insertScript.Load(ctx, s.client).Err(); err != nil {
		t.Fatalf("load script: %v", err)
	}
	trips := &roundTrips{}
	s.client.AddHook(trips)

	for i := 1; i <= 2; i++ {
		before := trips.n.Load()
		id, err := s.Insert(ctx, fieldsForTest())
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if got := trips.n.Load() - before; got != 1 {
			t.Fatalf("insert %d took %d round trips", i, got)
		}
		score, err := mr.ZScore("test:tasks", id)
		if err != nil {
			t.Fatalf("zscore: %v", err)
		}
		if score != float64(i) {
			t.Fatalf("insert %d scored %v", i, score)
		}
		if got := mr.HGet("test:tasks:"+id, "completed"); got != "0" {
			t.Fatalf("completed stored as %q", got)
		}
	}
	if got, _ := mr.Get("test:tasks:seq"); got != "2" {
		t.Fatalf("seq = %q", got)
	}
}

func TestRedisSkipsDanglingIndex(t *testing.T) {
	s, mr := newTestRedis(t)
	if _, err := mr.ZAdd("test:tasks", 1, "ghost"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	tasks, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected dangling id to be skipped, got %#v", tasks)
	}
}

func TestOpenRedisURL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	s, err := Open(context.Background(), Options{Backend: BackendRedis, RedisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = s.Close()
}

func TestParseRedisConnectionString(t *testing.T) {
	opts := parseRedisOptions("cache.example:6380,password=secret,ssl=True,abortConnect=False")
	if opts.Addr != "cache.example:6380" || opts.Password != "secret" || opts.TLSConfig == nil {
		t.Fatalf("unexpected options: addr=%s password=%s tls=%v", opts.Addr, opts.Password, opts.TLSConfig != nil)
	}
}
