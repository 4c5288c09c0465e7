package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"financeiro/internal/tasks"

	_ "modernc.org/sqlite"
)

// stateKey identifies the single finance snapshot row.
const stateKey = "financeiro"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements StateStore.
func (r *SQLiteRepository) Load(ctx context.Context) ([]byte, bool, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT document FROM finance_state WHERE key = ?`, stateKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load finance state: %w", err)
	}
	return data, true, nil
}

// Save implements StateStore. The snapshot row is replaced wholesale so the
// newest write always wins.
func (r *SQLiteRepository) Save(ctx context.Context, data []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO finance_state (key, document, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		stateKey, data, now)
	if err != nil {
		return fmt.Errorf("save finance state: %w", err)
	}

	slog.DebugContext(ctx, "Finance state saved to SQLite", "bytes", len(data))
	return nil
}

// Tasks returns a task store backed by the same database.
func (r *SQLiteRepository) Tasks() *SQLiteTaskStore {
	return &SQLiteTaskStore{db: r.db}
}

// SQLiteTaskStore implements tasks.Store on the shared SQLite handle.
type SQLiteTaskStore struct {
	db *sql.DB
}

func (s *SQLiteTaskStore) List(ctx context.Context) ([]tasks.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, done FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []tasks.Task
	for rows.Next() {
		var t tasks.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Done); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return out, nil
}

func (s *SQLiteTaskStore) Get(ctx context.Context, id int64) (tasks.Task, error) {
	var t tasks.Task
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, done FROM tasks WHERE id = ?`, id).Scan(&t.ID, &t.Title, &t.Done)
	if errors.Is(err, sql.ErrNoRows) {
		return tasks.Task{}, tasks.ErrNotFound
	}
	if err != nil {
		return tasks.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *SQLiteTaskStore) Create(ctx context.Context, title string) (tasks.Task, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (title, done) VALUES (?, 0)`, title)
	if err != nil {
		return tasks.Task{}, fmt.Errorf("create task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return tasks.Task{}, fmt.Errorf("task insert id: %w", err)
	}
	return tasks.Task{ID: id, Title: title}, nil
}

func (s *SQLiteTaskStore) Update(ctx context.Context, id int64, patch tasks.Patch) (tasks.Task, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return tasks.Task{}, err
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Done != nil {
		t.Done = *patch.Done
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, done = ? WHERE id = ?`, t.Title, t.Done, t.ID)
	if err != nil {
		return tasks.Task{}, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

func (s *SQLiteTaskStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n == 0 {
		return tasks.ErrNotFound
	}
	return nil
}
