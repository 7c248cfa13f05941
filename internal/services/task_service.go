package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isdelr/taskmaster-be/internal/database"
	"github.com/isdelr/taskmaster-be/internal/models"
	"github.com/isdelr/taskmaster-be/internal/stats"
)

// Listing bounds.
const (
	DefaultTaskLimit = 100
	MaxTaskLimit     = 500
)

// TaskServiceProvider defines the interface for task services.
type TaskServiceProvider interface {
	GetAllTasks(ctx context.Context, ownerID int64, filter models.TaskFilter) ([]models.Task, error)
	GetTaskByID(ctx context.Context, ownerID, id int64) (models.Task, error)
	CreateTask(ctx context.Context, ownerID int64, in models.NewTask) (models.Task, error)
	UpdateTask(ctx context.Context, ownerID, id int64, upd models.TaskUpdate) (models.Task, error)
	DeleteTask(ctx context.Context, ownerID, id int64) error
	GetStats(ctx context.Context, ownerID int64) (models.TaskStats, error)
}

// TaskService provides business logic for task management.
type TaskService struct {
	db  *sql.DB
	now func() time.Time
}

// NewTaskService creates a new TaskService. A nil clock defaults to time.Now.
func NewTaskService(db *sql.DB, now func() time.Time) *TaskService {
	if now == nil {
		now = time.Now
	}
	return &TaskService{db: db, now: now}
}

const taskColumns = "id, owner_id, title, description, is_completed, priority, deadline, category_id, location_id, reminded_at, created_at"

func scanTask(row interface{ Scan(...any) error }) (models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.IsCompleted, &t.Priority,
		&t.Deadline, &t.CategoryID, &t.LocationID, &t.RemindedAt, &t.CreatedAt)
	return t, err
}

func scanTasks(rows *sql.Rows) ([]models.Task, error) {
	defer rows.Close()
	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func getTask(ctx context.Context, q database.DBTX, ownerID, id int64) (models.Task, error) {
	t, err := scanTask(q.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ? AND owner_id = ?", id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
		}
		return models.Task{}, err
	}
	return t, nil
}

func validateTask(t models.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("title is required: %w", ErrValidation)
	}
	if t.Priority < models.PriorityLow || t.Priority > models.PriorityHigh {
		return fmt.Errorf("priority %d out of range: %w", t.Priority, ErrValidation)
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// orderClause maps a filter's sort options onto a fixed set of ORDER BY
// clauses. Tasks without a deadline always sort last.
func orderClause(f models.TaskFilter) (string, error) {
	dir := "DESC"
	switch strings.ToLower(f.SortOrder) {
	case "", "desc":
	case "asc":
		dir = "ASC"
	default:
		return "", fmt.Errorf("sort_order %q: %w", f.SortOrder, ErrValidation)
	}

	switch f.SortBy {
	case "", "created_at":
		return "created_at " + dir + ", id " + dir, nil
	case "deadline":
		return "deadline IS NULL, deadline " + dir + ", id " + dir, nil
	case "priority":
		return "priority " + dir + ", id " + dir, nil
	default:
		return "", fmt.Errorf("sort_by %q: %w", f.SortBy, ErrValidation)
	}
}

// GetAllTasks lists the user's tasks, newest first unless the filter says
// otherwise.
func (s *TaskService) GetAllTasks(ctx context.Context, ownerID int64, filter models.TaskFilter) ([]models.Task, error) {
	if filter.Limit == 0 {
		filter.Limit = DefaultTaskLimit
	}
	if filter.Limit < 0 || filter.Limit > MaxTaskLimit {
		return nil, fmt.Errorf("limit must be between 1 and %d: %w", MaxTaskLimit, ErrValidation)
	}
	if filter.Skip < 0 {
		return nil, fmt.Errorf("skip must not be negative: %w", ErrValidation)
	}
	order, err := orderClause(filter)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + taskColumns + " FROM tasks WHERE owner_id = ?"
	args := []any{ownerID}
	if filter.IsCompleted != nil {
		query += " AND is_completed = ?"
		args = append(args, *filter.IsCompleted)
	}
	if filter.CategoryID != nil {
		query += " AND category_id = ?"
		args = append(args, *filter.CategoryID)
	}
	query += " ORDER BY " + order + " LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Skip)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanTasks(rows)
}

// GetTaskByID retrieves one of the user's tasks.
func (s *TaskService) GetTaskByID(ctx context.Context, ownerID, id int64) (models.Task, error) {
	return getTask(ctx, s.db, ownerID, id)
}

// CreateTask stores a new task. Priority defaults to medium.
func (s *TaskService) CreateTask(ctx context.Context, ownerID int64, in models.NewTask) (models.Task, error) {
	t := models.Task{
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Deadline:    utcPtr(in.Deadline),
		CategoryID:  in.CategoryID,
		LocationID:  in.LocationID,
	}
	if t.Priority == 0 {
		t.Priority = models.PriorityMedium
	}
	if err := validateTask(t); err != nil {
		return models.Task{}, err
	}

	var id int64
	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		if err := checkCategoryRef(ctx, tx, ownerID, t.CategoryID); err != nil {
			return err
		}
		if err := checkLocationRef(ctx, tx, ownerID, t.LocationID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO tasks (owner_id, title, description, priority, deadline, category_id, location_id) VALUES (?, ?, ?, ?, ?, ?, ?)",
			ownerID, t.Title, t.Description, t.Priority, t.Deadline, t.CategoryID, t.LocationID)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return models.Task{}, err
	}
	return s.GetTaskByID(ctx, ownerID, id)
}

// UpdateTask applies the fields present in upd. Description, deadline,
// category_id and location_id may be cleared with null; the other fields may
// not. Changing the deadline re-arms its reminder.
func (s *TaskService) UpdateTask(ctx context.Context, ownerID, id int64, upd models.TaskUpdate) (models.Task, error) {
	if upd.Title.Null || upd.IsCompleted.Null || upd.Priority.Null {
		return models.Task{}, fmt.Errorf("title, is_completed and priority cannot be null: %w", ErrValidation)
	}

	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		t, err := getTask(ctx, tx, ownerID, id)
		if err != nil {
			return err
		}

		if upd.Title.Set {
			t.Title = upd.Title.Value
		}
		if upd.Description.Set {
			t.Description = upd.Description.Ptr()
		}
		if upd.IsCompleted.Set {
			t.IsCompleted = upd.IsCompleted.Value
		}
		if upd.Priority.Set {
			t.Priority = upd.Priority.Value
		}
		if upd.Deadline.Set {
			next := utcPtr(upd.Deadline.Ptr())
			if !sameInstant(t.Deadline, next) {
				t.RemindedAt = nil
			}
			t.Deadline = next
		}
		if upd.CategoryID.Set {
			t.CategoryID = upd.CategoryID.Ptr()
			if err := checkCategoryRef(ctx, tx, ownerID, t.CategoryID); err != nil {
				return err
			}
		}
		if upd.LocationID.Set {
			t.LocationID = upd.LocationID.Ptr()
			if err := checkLocationRef(ctx, tx, ownerID, t.LocationID); err != nil {
				return err
			}
		}
		if err := validateTask(t); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `UPDATE tasks SET title = ?, description = ?, is_completed = ?, priority = ?,
			deadline = ?, category_id = ?, location_id = ?, reminded_at = ? WHERE id = ? AND owner_id = ?`,
			t.Title, t.Description, t.IsCompleted, t.Priority, t.Deadline, t.CategoryID, t.LocationID, utcPtr(t.RemindedAt), id, ownerID)
		return err
	})
	if err != nil {
		return models.Task{}, err
	}
	return s.GetTaskByID(ctx, ownerID, id)
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// DeleteTask removes one of the user's tasks.
func (s *TaskService) DeleteTask(ctx context.Context, ownerID, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return err
	}
	return expectRow(res, "task", id)
}

// GetStats computes progress statistics over all of the user's tasks.
func (s *TaskService) GetStats(ctx context.Context, ownerID int64) (models.TaskStats, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE owner_id = ?", ownerID)
	if err != nil {
		return models.TaskStats{}, err
	}
	tasks, err := scanTasks(rows)
	if err != nil {
		return models.TaskStats{}, err
	}
	return stats.Compute(tasks, s.now()), nil
}

// CountTasks tallies the tasks of all users. Overdue tasks are also open.
func (s *TaskService) CountTasks(ctx context.Context) (models.TaskCounts, error) {
	var c models.TaskCounts
	err := s.db.QueryRowContext(ctx, `SELECT
			COALESCE(SUM(CASE WHEN is_completed THEN 0 ELSE 1 END), 0),
			COALESCE(SUM(CASE WHEN is_completed THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN NOT is_completed AND deadline IS NOT NULL AND deadline < ? THEN 1 ELSE 0 END), 0)
		FROM tasks`, s.now().UTC()).Scan(&c.Open, &c.Completed, &c.Overdue)
	return c, err
}
