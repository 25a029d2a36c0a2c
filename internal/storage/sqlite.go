package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"duelist/internal/task"
)

// Fixed width so created_at sorts as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

// SQLite keeps the collection in a local database file.
type SQLite struct {
	db  *sql.DB
	log *log.Entry
}

func OpenSQLite(dbPath string, logger *log.Entry) (*SQLite, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db, log: logger}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	deadline TEXT NOT NULL,
	created_at TEXT NOT NULL
);`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	return s.ensureTaskColumns()
}

// ensureTaskColumns adds the optional fields to databases created before
// priorities and descriptions existed.
func (s *SQLite) ensureTaskColumns() error {
	required := map[string]string{
		"priority":    "ALTER TABLE tasks ADD COLUMN priority INTEGER DEFAULT NULL;",
		"description": "ALTER TABLE tasks ADD COLUMN description TEXT DEFAULT NULL;",
	}
	existing := map[string]struct{}{}
	rows, err := s.db.Query(`PRAGMA table_info(tasks);`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			rows.Close()
			return err
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()
	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := s.db.Exec(alter); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Insert(ctx context.Context, f task.Fields) (string, error) {
	id := newID()
	now := time.Now().UTC().Format(createdAtLayout)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, text, completed, deadline, priority, description, created_at) VALUES (?, ?, ?, ?, ?, ?, ?);`,
		id, f.Text, boolToInt(f.Completed), task.FormatDeadline(f.Deadline), nullPriority(f.Priority), nullString(f.Description), now)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLite) ListAll(ctx context.Context) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, text, completed, deadline, priority, description FROM tasks ORDER BY created_at, rowid;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		var t task.Task
		var completed int
		var deadline string
		var priority sql.NullInt64
		var description sql.NullString
		if err := rows.Scan(&t.ID, &t.Text, &completed, &deadline, &priority, &description); err != nil {
			return nil, err
		}
		t.Completed = completed == 1
		t.Deadline = decodeDeadline(s.log, t.ID, deadline)
		if priority.Valid {
			t.Priority = int(priority.Int64)
		}
		t.Description = description.String
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *SQLite) UpdateFields(ctx context.Context, id string, p task.Patch) error {
	var sets []string
	var args []any
	if p.Text != nil {
		sets = append(sets, "text = ?")
		args = append(args, *p.Text)
	}
	if p.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, boolToInt(*p.Completed))
	}
	if p.Deadline != nil {
		sets = append(sets, "deadline = ?")
		args = append(args, task.FormatDeadline(*p.Deadline))
	}
	if p.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, nullPriority(*p.Priority))
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, nullString(*p.Description))
	}
	if len(sets) == 0 {
		return s.exists(ctx, id)
	}
	args = append(args, id)
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?;`, args...)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLite) exists(ctx context.Context, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE id = ?;`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullPriority(p int) sql.NullInt64 {
	if p == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(p), Valid: true}
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
