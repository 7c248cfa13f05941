package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/isdelr/taskmaster-be/internal/database"
	"github.com/isdelr/taskmaster-be/internal/metrics"
	"github.com/isdelr/taskmaster-be/internal/models"
	"github.com/isdelr/taskmaster-be/internal/services"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPusher struct {
	mu   sync.Mutex
	sent map[int64][][]byte
}

func (p *recordingPusher) SendToUser(userID int64, message []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sent == nil {
		p.sent = make(map[int64][][]byte)
	}
	p.sent[userID] = append(p.sent[userID], message)
}

func TestReminderScheduler_RunOnce(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	users := services.NewUserService(db)
	tasks := services.NewTaskService(db, clock)
	notifications := services.NewNotificationService(db)

	alice, err := users.CreateUser(ctx, "alice", "pw123")
	require.NoError(t, err)
	soon := now.Add(20 * time.Minute)
	later := now.Add(3 * time.Hour)
	due, err := tasks.CreateTask(ctx, alice.ID, models.NewTask{Title: "Submit report", Deadline: &soon})
	require.NoError(t, err)
	_, err = tasks.CreateTask(ctx, alice.ID, models.NewTask{Title: "Later", Deadline: &later})
	require.NoError(t, err)

	pusher := &recordingPusher{}
	m := metrics.New()
	s, err := NewReminderScheduler(notifications, pusher, m, "*/5 * * * *", time.Hour, clock)
	require.NoError(t, err)

	sent, err := s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemindersSent))

	require.Len(t, pusher.sent[alice.ID], 1)
	var msg struct {
		Action  string              `json:"action"`
		Payload models.Notification `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(pusher.sent[alice.ID][0], &msg))
	assert.Equal(t, "notification", msg.Action)
	assert.Equal(t, due.ID, *msg.Payload.TaskID)
	assert.Equal(t, `Task "Submit report" is due in 20m0s`, msg.Payload.Message)

	sent, err = s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent, "a deadline is only reminded once")

	stored, err := notifications.GetRecentNotifications(ctx, alice.ID, 10)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestNewReminderScheduler_InvalidSpec(t *testing.T) {
	_, err := NewReminderScheduler(nil, &recordingPusher{}, nil, "every tuesday", time.Hour, nil)
	assert.Error(t, err)
}

type failingNotifications struct {
	services.NotificationServiceProvider
}

func (failingNotifications) GetTasksDueForReminder(context.Context, time.Time, time.Duration) ([]models.Task, error) {
	return nil, errors.New("database is locked")
}

func TestReminderScheduler_QueryFailure(t *testing.T) {
	s, err := NewReminderScheduler(failingNotifications{}, &recordingPusher{}, nil, "@every 1m", time.Hour, nil)
	require.NoError(t, err)

	_, err = s.RunOnce(context.Background())
	assert.ErrorContains(t, err, "database is locked")
}

func TestReminderScheduler_StartStop(t *testing.T) {
	s, err := NewReminderScheduler(failingNotifications{}, &recordingPusher{}, nil, "@every 1h", time.Hour, nil)
	require.NoError(t, err)

	s.Start()
	select {
	case <-s.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
