package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"duelist/internal/task"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "todo.db"), quietLogger())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	exerciseStore(t, openTestSQLite(t))
}

func TestSQLiteAddsOptionalColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		t.Fatalf("open raw: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE tasks (id TEXT PRIMARY KEY, text TEXT NOT NULL, completed INTEGER NOT NULL DEFAULT 0, deadline TEXT NOT NULL, created_at TEXT NOT NULL);
INSERT INTO tasks (id, text, completed, deadline, created_at) VALUES ('legacy', 'Old task', 0, '2025-03-01T10:00', '2025-01-01T00:00:00Z');`)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	db.Close()

	s, err := OpenSQLite(path, quietLogger())
	if err != nil {
		t.Fatalf("open migrated: %v", err)
	}
	defer s.Close()
	tasks, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "legacy" || tasks[0].Priority != 0 {
		t.Fatalf("unexpected tasks: %#v", tasks)
	}
	want := time.Date(2025, 3, 1, 10, 0, 0, 0, time.Local)
	if !tasks[0].Deadline.Equal(want) {
		t.Fatalf("datetime-local deadline = %v, want %v", tasks[0].Deadline, want)
	}
}

func TestSQLiteBrokenDeadlineKept(t *testing.T) {
	s := openTestSQLite(t)
	_, err := s.db.Exec(`INSERT INTO tasks (id, text, completed, deadline, created_at) VALUES ('bad', 'x', 0, 'soon', '2025-01-01T00:00:00Z');`)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	tasks, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || !tasks[0].Deadline.IsZero() {
		t.Fatalf("expected task with zero deadline, got %#v", tasks)
	}
	if task.Remaining(tasks[0].Deadline, time.Now()) != task.ExpiredMarker {
		t.Fatal("zero deadline should read as expired")
	}
}

func TestSQLiteEmptyPatchChecksExistence(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()
	if err := s.UpdateFields(ctx, "nope", task.Patch{}); err != ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	id, err := s.Insert(ctx, task.Fields{Text: "x", Deadline: time.Now()})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.UpdateFields(ctx, id, task.Patch{}); err != nil {
		t.Fatalf("empty patch on existing task: %v", err)
	}
}
