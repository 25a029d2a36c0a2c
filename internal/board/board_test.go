package board

import (
	"context"
	"errors"
	"io"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"duelist/internal/storage"
	"duelist/internal/task"
)

type stubStore struct {
	insertFn func(ctx context.Context, f task.Fields) (string, error)
	listFn   func(ctx context.Context) ([]task.Task, error)
	updateFn func(ctx context.Context, id string, p task.Patch) error
	deleteFn func(ctx context.Context, id string) error
	calls    atomic.Int32
}

func (s *stubStore) Insert(ctx context.Context, f task.Fields) (string, error) {
	s.calls.Add(1)
	if s.insertFn == nil {
		return "", errors.New("unexpected Insert call")
	}
	return s.insertFn(ctx, f)
}

func (s *stubStore) ListAll(ctx context.Context) ([]task.Task, error) {
	s.calls.Add(1)
	if s.listFn == nil {
		return nil, errors.New("unexpected ListAll call")
	}
	return s.listFn(ctx)
}

func (s *stubStore) UpdateFields(ctx context.Context, id string, p task.Patch) error {
	s.calls.Add(1)
	if s.updateFn == nil {
		return errors.New("unexpected UpdateFields call")
	}
	return s.updateFn(ctx, id, p)
}

func (s *stubStore) Delete(ctx context.Context, id string) error {
	s.calls.Add(1)
	if s.deleteFn == nil {
		return errors.New("unexpected Delete call")
	}
	return s.deleteFn(ctx, id)
}

func (s *stubStore) Close() error { return nil }

func testService(store storage.Store) *Service {
	l := log.New()
	l.SetOutput(io.Discard)
	return NewService(store, log.NewEntry(l))
}

func TestAddScenario(t *testing.T) {
	store := &stubStore{
		insertFn: func(ctx context.Context, f task.Fields) (string, error) {
			if f.Text != "Buy milk" || f.Completed {
				t.Fatalf("unexpected fields: %#v", f)
			}
			return "abc123", nil
		},
	}
	svc := testService(store)
	list := NewList(nil)

	deadline := time.Now().Add(3600 * time.Second)
	added, err := svc.Add(context.Background(), task.Draft{Text: "Buy milk", Deadline: deadline.Format(task.InputLayout)})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	list.Append(added)

	all := list.All()
	if len(all) != 1 || all[0].ID != "abc123" || all[0].Completed {
		t.Fatalf("unexpected list: %#v", all)
	}
}

func TestAddValidationSkipsStore(t *testing.T) {
	store := &stubStore{}
	svc := testService(store)
	_, err := svc.Add(context.Background(), task.Draft{Text: "x"})
	if !errors.Is(err, task.ErrDeadlineRequired) {
		t.Fatalf("want ErrDeadlineRequired, got %v", err)
	}
	if store.calls.Load() != 0 {
		t.Fatal("validation failure must not reach the store")
	}
}

func TestAddFailureLeavesNoTask(t *testing.T) {
	boom := errors.New("permission denied")
	svc := testService(&stubStore{
		insertFn: func(context.Context, task.Fields) (string, error) { return "", boom },
	})
	got, err := svc.Add(context.Background(), task.Draft{Text: "x", Deadline: "2030-01-01 10:00"})
	if !errors.Is(err, boom) {
		t.Fatalf("want wrapped store error, got %v", err)
	}
	if got.ID != "" {
		t.Fatalf("expected zero task on failure, got %#v", got)
	}
}

func TestEditKeepsCompletion(t *testing.T) {
	var gotPatch task.Patch
	svc := testService(&stubStore{
		updateFn: func(ctx context.Context, id string, p task.Patch) error {
			if id != "t1" {
				t.Fatalf("unexpected id %s", id)
			}
			gotPatch = p
			return nil
		},
	})
	current := task.Task{ID: "t1", Text: "old", Completed: true, Priority: 1}
	patch, err := svc.Edit(context.Background(), current.ID, task.Draft{Text: "new", Deadline: "2030-01-01 10:00", Priority: "3"})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if gotPatch.Completed != nil || patch.Completed != nil {
		t.Fatal("edit must not write completion")
	}
	if updated := patch.Apply(current); !updated.Completed || updated.Text != "new" || updated.Priority != 3 {
		t.Fatalf("unexpected updated task: %#v", updated)
	}
}

func TestSetCompletedFailure(t *testing.T) {
	svc := testService(&stubStore{
		updateFn: func(context.Context, string, task.Patch) error { return storage.ErrNotFound },
	})
	if err := svc.SetCompleted(context.Background(), "gone", true); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDeleteTreatsNotFoundAsDone(t *testing.T) {
	svc := testService(&stubStore{
		deleteFn: func(context.Context, string) error { return storage.ErrNotFound },
	})
	if err := svc.Delete(context.Background(), "gone"); err != nil {
		t.Fatalf("delete of missing task: %v", err)
	}
}

func TestDeleteManyEmptyMakesNoCalls(t *testing.T) {
	store := &stubStore{}
	svc := testService(store)
	list := NewList([]task.Task{{ID: "a"}, {ID: "b"}})

	deleted, err := svc.DeleteMany(context.Background(), nil)
	if err != nil || len(deleted) != 0 {
		t.Fatalf("DeleteMany(nil) = %v, %v", deleted, err)
	}
	list.Remove(deleted...)
	if store.calls.Load() != 0 {
		t.Fatalf("expected no store calls, got %d", store.calls.Load())
	}
	if !reflect.DeepEqual(list.IDs(), []string{"a", "b"}) {
		t.Fatalf("list changed: %v", list.IDs())
	}
}

func TestDeleteManyConcurrentPartialFailure(t *testing.T) {
	boom := errors.New("network down")
	var mu sync.Mutex
	var seen []string
	svc := testService(&stubStore{
		deleteFn: func(ctx context.Context, id string) error {
			mu.Lock()
			seen = append(seen, id)
			mu.Unlock()
			if id == "b" {
				return boom
			}
			return nil
		},
	})
	list := NewList([]task.Task{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}})

	deleted, err := svc.DeleteMany(context.Background(), []string{"a", "b", "c"})
	if !errors.Is(err, boom) {
		t.Fatalf("want joined error containing boom, got %v", err)
	}
	if !reflect.DeepEqual(deleted, []string{"a", "c"}) {
		t.Fatalf("deleted = %v", deleted)
	}
	sort.Strings(seen)
	if !reflect.DeepEqual(seen, []string{"a", "b", "c"}) {
		t.Fatalf("expected one delete per id, got %v", seen)
	}
	list.Remove(deleted...)
	if !reflect.DeepEqual(list.IDs(), []string{"b", "d"}) {
		t.Fatalf("unexpected list: %v", list.IDs())
	}
}

func TestLoadWrapsError(t *testing.T) {
	boom := errors.New("offline")
	svc := testService(&stubStore{
		listFn: func(context.Context) ([]task.Task, error) { return nil, boom },
	})
	if _, err := svc.Load(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("want wrapped error, got %v", err)
	}
}
