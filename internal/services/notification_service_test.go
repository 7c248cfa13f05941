package services

import (
	"time"

	"github.com/isdelr/taskmaster-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *ServiceTestSuite) TestRegisterDevice_Idempotent() {
	alice := s.createUser("alice")

	d, created, err := s.devices.RegisterDevice(s.ctx, alice.ID, "tok-1", ptr("ios"))
	require.NoError(s.T(), err)
	assert.True(s.T(), created)
	assert.Equal(s.T(), "ios", *d.DeviceType)

	again, created, err := s.devices.RegisterDevice(s.ctx, alice.ID, "tok-1", ptr("android"))
	require.NoError(s.T(), err)
	assert.False(s.T(), created)
	assert.Equal(s.T(), d.ID, again.ID)
	assert.Equal(s.T(), "ios", *again.DeviceType)

	devices, err := s.devices.GetDevices(s.ctx, alice.ID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), devices, 1)

	_, _, err = s.devices.RegisterDevice(s.ctx, alice.ID, "", nil)
	assert.ErrorIs(s.T(), err, ErrValidation)
}

func (s *ServiceTestSuite) TestDeleteDevice() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	_, _, err := s.devices.RegisterDevice(s.ctx, alice.ID, "tok-1", nil)
	require.NoError(s.T(), err)

	assert.ErrorIs(s.T(), s.devices.DeleteDevice(s.ctx, bob.ID, "tok-1"), ErrNotFound)
	assert.NoError(s.T(), s.devices.DeleteDevice(s.ctx, alice.ID, "tok-1"))
	assert.ErrorIs(s.T(), s.devices.DeleteDevice(s.ctx, alice.ID, "tok-1"), ErrNotFound)
}

func (s *ServiceTestSuite) TestNotifications_RecentAndMarkRead() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	remind := func(title string) *models.Notification {
		deadline := s.now.Add(30 * time.Minute)
		task := s.createTask(alice.ID, models.NewTask{Title: title, Deadline: &deadline})
		n, err := s.notifications.RecordReminder(s.ctx, task, title+" is due soon", s.now)
		require.NoError(s.T(), err)
		require.NotNil(s.T(), n)
		return n
	}
	first := remind("first")
	second := remind("second")

	recent, err := s.notifications.GetRecentNotifications(s.ctx, alice.ID, 0)
	require.NoError(s.T(), err)
	require.Len(s.T(), recent, 2)
	assert.Equal(s.T(), second.ID, recent[0].ID)
	assert.False(s.T(), recent[0].Read)

	one, err := s.notifications.GetRecentNotifications(s.ctx, alice.ID, 1)
	require.NoError(s.T(), err)
	assert.Len(s.T(), one, 1)

	assert.ErrorIs(s.T(), s.notifications.MarkRead(s.ctx, bob.ID, first.ID), ErrNotFound)
	require.NoError(s.T(), s.notifications.MarkRead(s.ctx, alice.ID, first.ID))

	recent, err = s.notifications.GetRecentNotifications(s.ctx, alice.ID, 10)
	require.NoError(s.T(), err)
	assert.True(s.T(), recent[1].Read)
}

func (s *ServiceTestSuite) TestTasksDueForReminder() {
	alice := s.createUser("alice")
	at := func(d time.Duration) *time.Time { t := s.now.Add(d); return &t }

	due := s.createTask(alice.ID, models.NewTask{Title: "due", Deadline: at(30 * time.Minute)})
	edge := s.createTask(alice.ID, models.NewTask{Title: "edge", Deadline: at(time.Hour)})
	s.createTask(alice.ID, models.NewTask{Title: "too far", Deadline: at(2 * time.Hour)})
	s.createTask(alice.ID, models.NewTask{Title: "past", Deadline: at(-time.Minute)})
	s.createTask(alice.ID, models.NewTask{Title: "no deadline"})
	done := s.createTask(alice.ID, models.NewTask{Title: "done", Deadline: at(10 * time.Minute)})
	_, err := s.tasks.UpdateTask(s.ctx, alice.ID, done.ID, models.TaskUpdate{IsCompleted: models.Some(true)})
	require.NoError(s.T(), err)

	tasks, err := s.notifications.GetTasksDueForReminder(s.ctx, s.now, time.Hour)
	require.NoError(s.T(), err)
	require.Len(s.T(), tasks, 2)
	assert.Equal(s.T(), due.ID, tasks[0].ID)
	assert.Equal(s.T(), edge.ID, tasks[1].ID)

	// The window does not depend on the zone of the clock.
	tokyo := s.now.In(time.FixedZone("JST", 9*60*60))
	zoned, err := s.notifications.GetTasksDueForReminder(s.ctx, tokyo, time.Hour)
	require.NoError(s.T(), err)
	require.Len(s.T(), zoned, 2)
	assert.Equal(s.T(), due.ID, zoned[0].ID)
	assert.Equal(s.T(), edge.ID, zoned[1].ID)
}

func (s *ServiceTestSuite) TestRecordReminder_OncePerDeadline() {
	alice := s.createUser("alice")
	deadline := s.now.Add(30 * time.Minute)
	task := s.createTask(alice.ID, models.NewTask{Title: "Call", Deadline: &deadline})

	n, err := s.notifications.RecordReminder(s.ctx, task, "Call is due soon", s.now)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), n)
	assert.Equal(s.T(), models.NotificationTaskDeadline, n.Type)
	assert.Equal(s.T(), alice.ID, n.UserID)
	assert.Equal(s.T(), task.ID, *n.TaskID)

	again, err := s.notifications.RecordReminder(s.ctx, task, "Call is due soon", s.now)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), again)

	tasks, err := s.notifications.GetTasksDueForReminder(s.ctx, s.now, time.Hour)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), tasks)
}
