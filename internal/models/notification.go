package models

import "time"

// Notification types.
const (
	NotificationTaskDeadline = "task.deadline"
)

// Notification is a message surfaced to a user, e.g. an approaching deadline.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	TaskID    *int64    `json:"task_id,omitempty"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
