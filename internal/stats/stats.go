// Package stats derives progress aggregates from a user's tasks.
package stats

import (
	"math"
	"time"

	"github.com/isdelr/taskmaster-be/internal/models"
)

// Mood values.
const (
	MoodHappy   = "happy"
	MoodNormal  = "normal"
	MoodAnnoyed = "annoyed"
	MoodAngry   = "angry"
)

const (
	overduePenalty    = 0.15
	maxOverduePenalty = 0.3
)

// Compute summarizes tasks as of now. The weekly window is the calendar week
// containing now, starting Sunday 00:00 in now's location.
func Compute(tasks []models.Task, now time.Time) models.TaskStats {
	var s models.TaskStats
	weekStart := StartOfWeek(now)
	weekEnd := weekStart.AddDate(0, 0, 7)

	for _, t := range tasks {
		s.Total++
		overdue := isOverdue(t, now)
		if t.IsCompleted {
			s.Completed++
		} else if overdue {
			s.Overdue++
		}

		if t.Deadline == nil {
			continue
		}
		d := t.Deadline.In(now.Location())
		if d.Before(weekStart) || !d.Before(weekEnd) {
			continue
		}
		s.Weekly.Total++
		if t.IsCompleted {
			s.Weekly.Completed++
		} else if overdue {
			s.Weekly.Overdue++
		}
	}

	s.CompletionRate = 1
	if s.Total > 0 {
		s.CompletionRate = float64(s.Completed) / float64(s.Total)
	}
	s.Mood = Mood(s.CompletionRate, s.Overdue)

	s.Weekly.Pending = s.Weekly.Total - s.Weekly.Completed - s.Weekly.Overdue
	if s.Weekly.Total > 0 {
		s.Weekly.CompletionRate = int(math.Round(float64(s.Weekly.Completed) / float64(s.Weekly.Total) * 100))
	}
	return s
}

// Mood classifies a completion rate penalized by the number of overdue tasks.
func Mood(completionRate float64, overdue int) string {
	adjusted := completionRate - math.Min(overduePenalty*float64(overdue), maxOverduePenalty)
	switch {
	case adjusted >= 0.8:
		return MoodHappy
	case adjusted >= 0.5:
		return MoodNormal
	case adjusted >= 0.3:
		return MoodAnnoyed
	default:
		return MoodAngry
	}
}

// StartOfWeek returns the most recent Sunday 00:00 at or before t, in t's location.
func StartOfWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -int(day.Weekday()))
}

func isOverdue(t models.Task, now time.Time) bool {
	return !t.IsCompleted && t.Deadline != nil && t.Deadline.Before(now)
}
