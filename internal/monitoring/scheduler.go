package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/isdelr/taskmaster-be/internal/metrics"
	"github.com/isdelr/taskmaster-be/internal/models"
	"github.com/isdelr/taskmaster-be/internal/services"
	"github.com/isdelr/taskmaster-be/internal/websocket"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Pusher delivers a message to every live connection of a user.
type Pusher interface {
	SendToUser(userID int64, message []byte)
}

// ReminderScheduler periodically records deadline notifications and pushes
// them to connected clients.
type ReminderScheduler struct {
	notificationSvc services.NotificationServiceProvider
	pusher          Pusher
	metrics         *metrics.Metrics
	lead            time.Duration
	now             func() time.Time
	cron            *cron.Cron
}

// NewReminderScheduler creates a scheduler that runs on the standard cron
// expression spec and reminds about deadlines within lead. A nil clock
// defaults to time.Now and nil metrics are not recorded.
func NewReminderScheduler(notificationSvc services.NotificationServiceProvider, pusher Pusher, m *metrics.Metrics, spec string, lead time.Duration, now func() time.Time) (*ReminderScheduler, error) {
	if now == nil {
		now = time.Now
	}
	logger := cronLogger{}
	s := &ReminderScheduler{
		notificationSvc: notificationSvc,
		pusher:          pusher,
		metrics:         m,
		lead:            lead,
		now:             now,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}

	if _, err := s.cron.AddFunc(spec, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			log.Error().Err(err).Msg("Scheduler: Reminder run failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the schedule in its own goroutine.
func (s *ReminderScheduler) Start() {
	log.Info().Dur("lead", s.lead).Msg("Starting reminder scheduler")
	s.cron.Start()
}

// Stop halts the schedule. The returned context is done once a running job
// has finished.
func (s *ReminderScheduler) Stop() context.Context {
	log.Info().Msg("Stopping reminder scheduler")
	return s.cron.Stop()
}

// RunOnce records a notification for every task due within the lead time
// and pushes each one to its owner. It returns the number of reminders sent.
func (s *ReminderScheduler) RunOnce(ctx context.Context) (int, error) {
	now := s.now()
	tasks, err := s.notificationSvc.GetTasksDueForReminder(ctx, now, s.lead)
	if err != nil {
		return 0, fmt.Errorf("failed to query due tasks: %w", err)
	}

	sent := 0
	for _, task := range tasks {
		notification, err := s.notificationSvc.RecordReminder(ctx, task, reminderMessage(task, now), now)
		if err != nil {
			log.Error().Err(err).Int64("task_id", task.ID).Msg("Scheduler: Failed to record reminder")
			continue
		}
		if notification == nil {
			continue
		}
		sent++
		if s.metrics != nil {
			s.metrics.RemindersSent.Inc()
		}
		s.pusher.SendToUser(task.OwnerID, websocket.NewNotificationMessage(notification))
	}

	if sent > 0 {
		log.Info().Int("count", sent).Msg("Scheduler: Sent deadline reminders")
	}
	return sent, nil
}

func reminderMessage(task models.Task, now time.Time) string {
	left := task.Deadline.Sub(now).Round(time.Minute)
	return fmt.Sprintf("Task %q is due in %s", task.Title, left)
}

// cronLogger routes cron's internal logging to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keyValues(keysAndValues)).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keyValues(keysAndValues)).Msg("cron: " + msg)
}

func keyValues(kv []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}

