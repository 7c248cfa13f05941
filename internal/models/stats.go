package models

// TaskStats summarizes a user's progress.
type TaskStats struct {
	Total          int         `json:"total"`
	Completed      int         `json:"completed"`
	Overdue        int         `json:"overdue"`
	CompletionRate float64     `json:"completion_rate"`
	Mood           string      `json:"mood"`
	Weekly         WeeklyStats `json:"weekly"`
}

// WeeklyStats covers tasks whose deadline falls in the current week.
type WeeklyStats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Overdue        int `json:"overdue"`
	Pending        int `json:"pending"`
	CompletionRate int `json:"completion_rate"` // percent
}

// TaskCounts is a store-wide tally of tasks by state.
type TaskCounts struct {
	Open      int `json:"open"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
}
