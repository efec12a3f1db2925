package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/viswayadeedya/TodoIQ-BE/models"
)

const taskColumns = "id, title, description, priority, created_at, completed, owner_id"

// TaskStore persists todo items.
type TaskStore struct {
	db  *DB
	now func() time.Time
}

// NewTaskStore returns a TaskStore backed by db.
func NewTaskStore(db *DB) *TaskStore {
	return &TaskStore{db: db, now: time.Now}
}

// timestamp returns the server-assigned creation time. It is truncated to the
// precision postgres keeps so that a task reads back exactly as written.
func (s *TaskStore) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &t.CreatedAt, &t.Completed, &t.OwnerID)
	t.CreatedAt = t.CreatedAt.UTC()
	return t, err
}

// Create inserts t, assigning its id and creation time.
func (s *TaskStore) Create(ctx context.Context, t *models.Task) error {
	t.CreatedAt = s.timestamp()
	err := s.db.QueryRowContext(ctx,
		s.db.rebind("INSERT INTO tasks(title, description, priority, created_at, completed, owner_id) VALUES(?, ?, ?, ?, ?, ?) RETURNING id"),
		t.Title, t.Description, t.Priority, t.CreatedAt, t.Completed, t.OwnerID,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// CreateBatch inserts every draft for ownerID in a single transaction. Either
// all drafts are stored or none are.
func (s *TaskStore) CreateBatch(ctx context.Context, ownerID int, drafts []models.TaskDraft) ([]models.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		s.db.rebind("INSERT INTO tasks(title, description, priority, created_at, completed, owner_id) VALUES(?, ?, ?, ?, ?, ?) RETURNING id"))
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	createdAt := s.timestamp()
	tasks := make([]models.Task, 0, len(drafts))
	for i, d := range drafts {
		if strings.TrimSpace(d.Title) == "" {
			return nil, fmt.Errorf("subtask %d: title is empty", i)
		}
		t := models.Task{
			Title:       d.Title,
			Description: d.Description,
			Priority:    d.Priority,
			CreatedAt:   createdAt,
			OwnerID:     ownerID,
		}
		if err := stmt.QueryRowContext(ctx, t.Title, t.Description, t.Priority, t.CreatedAt, t.Completed, t.OwnerID).Scan(&t.ID); err != nil {
			return nil, fmt.Errorf("insert subtask %d: %w", i, err)
		}
		tasks = append(tasks, t)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit subtasks: %w", err)
	}
	return tasks, nil
}

// ListByOwner returns every task owned by ownerID, highest priority first.
func (s *TaskStore) ListByOwner(ctx context.Context, ownerID int) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		s.db.rebind("SELECT "+taskColumns+" FROM tasks WHERE owner_id = ? ORDER BY priority ASC, id ASC"), ownerID)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task rows: %w", err)
	}
	return tasks, nil
}

// Get retrieves a single task by its id.
func (s *TaskStore) Get(ctx context.Context, id int) (*models.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, s.db.rebind("SELECT "+taskColumns+" FROM tasks WHERE id = ?"), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query task %d: %w", id, err)
	}
	return &t, nil
}

// Update writes the user-editable fields of t. The id, owner and creation time
// are never changed.
func (s *TaskStore) Update(ctx context.Context, t *models.Task) error {
	res, err := s.db.ExecContext(ctx,
		s.db.rebind("UPDATE tasks SET title = ?, description = ?, priority = ?, completed = ? WHERE id = ?"),
		t.Title, t.Description, t.Priority, t.Completed, t.ID)
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	return expectOneRow(res)
}

// Delete removes a task by its id.
func (s *TaskStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, s.db.rebind("DELETE FROM tasks WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return expectOneRow(res)
}

// UpdatePriorities stores the priority of every task in a single transaction.
// Only the priority column is written, and only on rows owned by ownerID; if
// any task is missing the whole update is rolled back.
func (s *TaskStore) UpdatePriorities(ctx context.Context, ownerID int, tasks []models.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.db.rebind("UPDATE tasks SET priority = ? WHERE id = ? AND owner_id = ?"))
	if err != nil {
		return fmt.Errorf("prepare priority update: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		res, err := stmt.ExecContext(ctx, t.Priority, t.ID, ownerID)
		if err != nil {
			return fmt.Errorf("update priority of task %d: %w", t.ID, err)
		}
		if err := expectOneRow(res); err != nil {
			return fmt.Errorf("task %d: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit priorities: %w", err)
	}
	return nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
