package models

import (
	"encoding/json"
	"time"
)

// Task priorities.
const (
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
)

// Task is a to-do item owned by one user.
type Task struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"owner_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	IsCompleted bool       `json:"is_completed"`
	Priority    int        `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
	CategoryID  *int64     `json:"category_id"`
	LocationID  *int64     `json:"location_id"`
	RemindedAt  *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewTask is the payload used to create a task.
type NewTask struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=4000"`
	Priority    int        `json:"priority" validate:"omitempty,min=1,max=3"`
	Deadline    *time.Time `json:"deadline"`
	CategoryID  *int64     `json:"category_id"`
	LocationID  *int64     `json:"location_id"`
}

func (n *NewTask) UnmarshalJSON(data []byte) error {
	type plain NewTask
	aux := struct {
		*plain
		Deadline *Timestamp `json:"deadline"`
	}{plain: (*plain)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	n.Deadline = aux.Deadline.TimePtr()
	return nil
}

// TaskUpdate is a partial update; only fields that were sent are applied.
type TaskUpdate struct {
	Title       Optional[string]    `json:"title"`
	Description Optional[string]    `json:"description"`
	IsCompleted Optional[bool]      `json:"is_completed"`
	Priority    Optional[int]       `json:"priority"`
	Deadline    Optional[time.Time] `json:"deadline"`
	CategoryID  Optional[int64]     `json:"category_id"`
	LocationID  Optional[int64]     `json:"location_id"`
}

func (u *TaskUpdate) UnmarshalJSON(data []byte) error {
	type plain TaskUpdate
	aux := struct {
		*plain
		Deadline Optional[Timestamp] `json:"deadline"`
	}{plain: (*plain)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	u.Deadline = Optional[time.Time]{Value: time.Time(aux.Deadline.Value), Set: aux.Deadline.Set, Null: aux.Deadline.Null}
	return nil
}

// TaskFilter narrows and orders a task listing.
type TaskFilter struct {
	SortBy      string // created_at, deadline or priority
	SortOrder   string // asc or desc
	Skip        int
	Limit       int
	IsCompleted *bool
	CategoryID  *int64
}
