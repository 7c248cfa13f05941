package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/isdelr/taskmaster-be/internal/database"
	"github.com/isdelr/taskmaster-be/internal/models"
)

// Notification listing bounds.
const (
	DefaultNotificationLimit = 20
	MaxNotificationLimit     = 100
)

// NotificationServiceProvider defines the interface for notification services.
type NotificationServiceProvider interface {
	GetRecentNotifications(ctx context.Context, userID int64, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id int64) error
	GetTasksDueForReminder(ctx context.Context, now time.Time, lead time.Duration) ([]models.Task, error)
	RecordReminder(ctx context.Context, task models.Task, message string, now time.Time) (*models.Notification, error)
}

// NotificationService records notifications surfaced to users.
type NotificationService struct {
	db *sql.DB
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(db *sql.DB) *NotificationService {
	return &NotificationService{db: db}
}

const notificationColumns = "id, user_id, task_id, type, message, is_read, created_at"

func scanNotification(row interface{ Scan(...any) error }) (models.Notification, error) {
	var n models.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.TaskID, &n.Type, &n.Message, &n.Read, &n.CreatedAt)
	return n, err
}

func insertNotification(ctx context.Context, q database.DBTX, userID int64, taskID *int64, kind, message string) (models.Notification, error) {
	res, err := q.ExecContext(ctx, "INSERT INTO notifications (user_id, task_id, type, message) VALUES (?, ?, ?, ?)",
		userID, taskID, kind, message)
	if err != nil {
		return models.Notification{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Notification{}, err
	}
	return scanNotification(q.QueryRowContext(ctx, "SELECT "+notificationColumns+" FROM notifications WHERE id = ?", id))
}

// GetRecentNotifications retrieves the user's most recent notifications.
func (s *NotificationService) GetRecentNotifications(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	if limit > MaxNotificationLimit {
		limit = MaxNotificationLimit
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+notificationColumns+" FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?", userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, "UPDATE notifications SET is_read = TRUE WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	return expectRow(res, "notification", id)
}

// GetTasksDueForReminder returns incomplete, not yet reminded tasks of all
// users whose deadline falls in (now, now+lead]. Deadlines are stored in UTC,
// so the window is compared in UTC as well.
func (s *NotificationService) GetTasksDueForReminder(ctx context.Context, now time.Time, lead time.Duration) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
		WHERE is_completed = FALSE AND reminded_at IS NULL AND deadline IS NOT NULL AND deadline > ? AND deadline <= ?
		ORDER BY deadline, id`,
		now.UTC(), now.Add(lead).UTC())
	if err != nil {
		return nil, err
	}
	return scanTasks(rows)
}

// RecordReminder marks task as reminded and records the matching
// notification in one transaction. It returns nil when the task was already
// reminded, completed or deleted in the meantime.
func (s *NotificationService) RecordReminder(ctx context.Context, task models.Task, message string, now time.Time) (*models.Notification, error) {
	var created *models.Notification
	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE tasks SET reminded_at = ? WHERE id = ? AND reminded_at IS NULL AND is_completed = FALSE",
			now.UTC(), task.ID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil || n == 0 {
			return err
		}

		notification, err := insertNotification(ctx, tx, task.OwnerID, &task.ID, models.NotificationTaskDeadline, message)
		if err != nil {
			return fmt.Errorf("failed to record reminder for task %d: %w", task.ID, err)
		}
		created = &notification
		return nil
	})
	return created, err
}
