package services

import (
	"encoding/json"
	"time"

	"github.com/isdelr/taskmaster-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *ServiceTestSuite) createTask(ownerID int64, in models.NewTask) models.Task {
	task, err := s.tasks.CreateTask(s.ctx, ownerID, in)
	require.NoError(s.T(), err)
	return task
}

func ptr[T any](v T) *T { return &v }

func (s *ServiceTestSuite) TestCreateTask_Defaults() {
	alice := s.createUser("alice")
	task := s.createTask(alice.ID, models.NewTask{Title: "Buy milk"})

	assert.Equal(s.T(), alice.ID, task.OwnerID)
	assert.Equal(s.T(), models.PriorityMedium, task.Priority)
	assert.False(s.T(), task.IsCompleted)
	assert.Nil(s.T(), task.Deadline)
}

func (s *ServiceTestSuite) TestCreateTask_DeadlineStoredAsInstant() {
	alice := s.createUser("alice")
	jst := time.FixedZone("JST", 9*60*60)
	deadline := time.Date(2026, 10, 15, 9, 0, 0, 0, jst)

	task := s.createTask(alice.ID, models.NewTask{Title: "Report", Deadline: &deadline})
	require.NotNil(s.T(), task.Deadline)
	assert.True(s.T(), deadline.Equal(*task.Deadline))
}

func (s *ServiceTestSuite) TestTask_LocalDeadlineFormsRoundTrip() {
	alice := s.createUser("alice")

	var in models.NewTask
	require.NoError(s.T(), json.Unmarshal([]byte(`{"title":"Report","deadline":"2026-10-14T15:30"}`), &in))
	task := s.createTask(alice.ID, in)
	require.NotNil(s.T(), task.Deadline)
	assert.True(s.T(), time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC).Equal(*task.Deadline))

	var upd models.TaskUpdate
	require.NoError(s.T(), json.Unmarshal([]byte(`{"deadline":"2026-10-14T16:45:00"}`), &upd))
	updated, err := s.tasks.UpdateTask(s.ctx, alice.ID, task.ID, upd)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), updated.Deadline)
	assert.True(s.T(), time.Date(2026, 10, 14, 16, 45, 0, 0, time.UTC).Equal(*updated.Deadline))

	// The stored value is visible to the reminder window.
	due, err := s.notifications.GetTasksDueForReminder(s.ctx, time.Date(2026, 10, 14, 16, 0, 0, 0, time.UTC), time.Hour)
	require.NoError(s.T(), err)
	require.Len(s.T(), due, 1)
	assert.Equal(s.T(), task.ID, due[0].ID)
}

func (s *ServiceTestSuite) TestCreateTask_RejectsForeignReferences() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	bobsCategory, err := s.categories.CreateCategory(s.ctx, bob.ID, models.NewCategory{Name: "Bob's"})
	require.NoError(s.T(), err)

	_, err = s.tasks.CreateTask(s.ctx, alice.ID, models.NewTask{Title: "x", CategoryID: &bobsCategory.ID})
	assert.ErrorIs(s.T(), err, ErrValidation)

	_, err = s.tasks.CreateTask(s.ctx, alice.ID, models.NewTask{Title: "x", LocationID: ptr(int64(999))})
	assert.ErrorIs(s.T(), err, ErrValidation)

	_, err = s.tasks.CreateTask(s.ctx, alice.ID, models.NewTask{Title: "x", Priority: 4})
	assert.ErrorIs(s.T(), err, ErrValidation)
}

func (s *ServiceTestSuite) TestGetTask_OwnerScoped() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	task := s.createTask(alice.ID, models.NewTask{Title: "secret"})

	_, err := s.tasks.GetTaskByID(s.ctx, bob.ID, task.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)

	_, err = s.tasks.UpdateTask(s.ctx, bob.ID, task.ID, models.TaskUpdate{Title: models.Some("mine")})
	assert.ErrorIs(s.T(), err, ErrNotFound)

	assert.ErrorIs(s.T(), s.tasks.DeleteTask(s.ctx, bob.ID, task.ID), ErrNotFound)

	list, err := s.tasks.GetAllTasks(s.ctx, bob.ID, models.TaskFilter{})
	require.NoError(s.T(), err)
	assert.Empty(s.T(), list)
}

func (s *ServiceTestSuite) TestGetAllTasks_SortAndFilter() {
	alice := s.createUser("alice")
	work, err := s.categories.CreateCategory(s.ctx, alice.ID, models.NewCategory{Name: "Work"})
	require.NoError(s.T(), err)

	soon := s.now.Add(time.Hour)
	later := s.now.Add(48 * time.Hour)
	a := s.createTask(alice.ID, models.NewTask{Title: "a", Priority: models.PriorityLow, Deadline: &later})
	b := s.createTask(alice.ID, models.NewTask{Title: "b", Priority: models.PriorityHigh, CategoryID: &work.ID})
	c := s.createTask(alice.ID, models.NewTask{Title: "c", Deadline: &soon, CategoryID: &work.ID})
	_, err = s.tasks.UpdateTask(s.ctx, alice.ID, c.ID, models.TaskUpdate{IsCompleted: models.Some(true)})
	require.NoError(s.T(), err)

	ids := func(tasks []models.Task) []int64 {
		out := make([]int64, 0, len(tasks))
		for _, t := range tasks {
			out = append(out, t.ID)
		}
		return out
	}
	list := func(f models.TaskFilter) []int64 {
		tasks, err := s.tasks.GetAllTasks(s.ctx, alice.ID, f)
		require.NoError(s.T(), err)
		return ids(tasks)
	}

	assert.Equal(s.T(), []int64{c.ID, b.ID, a.ID}, list(models.TaskFilter{}))
	assert.Equal(s.T(), []int64{c.ID, a.ID, b.ID}, list(models.TaskFilter{SortBy: "deadline", SortOrder: "asc"}))
	assert.Equal(s.T(), []int64{a.ID, c.ID, b.ID}, list(models.TaskFilter{SortBy: "deadline", SortOrder: "desc"}))
	assert.Equal(s.T(), []int64{b.ID, c.ID, a.ID}, list(models.TaskFilter{SortBy: "priority"}))
	assert.Equal(s.T(), []int64{b.ID}, list(models.TaskFilter{IsCompleted: ptr(false), CategoryID: &work.ID}))
	assert.Equal(s.T(), []int64{b.ID}, list(models.TaskFilter{Skip: 1, Limit: 1}))

	_, err = s.tasks.GetAllTasks(s.ctx, alice.ID, models.TaskFilter{SortBy: "title; DROP TABLE tasks"})
	assert.ErrorIs(s.T(), err, ErrValidation)
	_, err = s.tasks.GetAllTasks(s.ctx, alice.ID, models.TaskFilter{Limit: MaxTaskLimit + 1})
	assert.ErrorIs(s.T(), err, ErrValidation)
}

func (s *ServiceTestSuite) TestUpdateTask_OptionalFields() {
	alice := s.createUser("alice")
	deadline := s.now.Add(time.Hour)
	task := s.createTask(alice.ID, models.NewTask{Title: "Report", Description: ptr("draft"), Deadline: &deadline})

	updated, err := s.tasks.UpdateTask(s.ctx, alice.ID, task.ID, models.TaskUpdate{Priority: models.Some(models.PriorityHigh)})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.PriorityHigh, updated.Priority)
	assert.Equal(s.T(), "Report", updated.Title)
	require.NotNil(s.T(), updated.Description)
	assert.NotNil(s.T(), updated.Deadline)

	updated, err = s.tasks.UpdateTask(s.ctx, alice.ID, task.ID, models.TaskUpdate{
		Description: models.Null[string](),
		Deadline:    models.Null[time.Time](),
	})
	require.NoError(s.T(), err)
	assert.Nil(s.T(), updated.Description)
	assert.Nil(s.T(), updated.Deadline)
	assert.Equal(s.T(), models.PriorityHigh, updated.Priority)

	_, err = s.tasks.UpdateTask(s.ctx, alice.ID, task.ID, models.TaskUpdate{Title: models.Null[string]()})
	assert.ErrorIs(s.T(), err, ErrValidation)
	_, err = s.tasks.UpdateTask(s.ctx, alice.ID, task.ID, models.TaskUpdate{Title: models.Some("  ")})
	assert.ErrorIs(s.T(), err, ErrValidation)
}

func (s *ServiceTestSuite) TestUpdateTask_DeadlineChangeRearmsReminder() {
	alice := s.createUser("alice")
	deadline := s.now.Add(30 * time.Minute)
	task := s.createTask(alice.ID, models.NewTask{Title: "Call", Deadline: &deadline})

	n, err := s.notifications.RecordReminder(s.ctx, task, "soon", s.now)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), n)

	updated, err := s.tasks.UpdateTask(s.ctx, alice.ID, task.ID, models.TaskUpdate{Title: models.Some("Call mom")})
	require.NoError(s.T(), err)
	assert.NotNil(s.T(), updated.RemindedAt, "unrelated edits keep the reminder state")

	moved := s.now.Add(45 * time.Minute)
	updated, err = s.tasks.UpdateTask(s.ctx, alice.ID, task.ID, models.TaskUpdate{Deadline: models.Some(moved)})
	require.NoError(s.T(), err)
	assert.Nil(s.T(), updated.RemindedAt)
}

func (s *ServiceTestSuite) TestDeleteCategory_ClearsTaskReference() {
	alice := s.createUser("alice")
	cat, err := s.categories.CreateCategory(s.ctx, alice.ID, models.NewCategory{Name: "Home"})
	require.NoError(s.T(), err)
	task := s.createTask(alice.ID, models.NewTask{Title: "Dishes", CategoryID: &cat.ID})

	require.NoError(s.T(), s.categories.DeleteCategory(s.ctx, alice.ID, cat.ID))

	got, err := s.tasks.GetTaskByID(s.ctx, alice.ID, task.ID)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), got.CategoryID)
}

func (s *ServiceTestSuite) TestGetStats() {
	alice := s.createUser("alice")
	past := s.now.Add(-time.Hour)
	future := s.now.Add(time.Hour)
	s.createTask(alice.ID, models.NewTask{Title: "overdue", Deadline: &past})
	s.createTask(alice.ID, models.NewTask{Title: "upcoming", Deadline: &future})
	done := s.createTask(alice.ID, models.NewTask{Title: "done"})
	_, err := s.tasks.UpdateTask(s.ctx, alice.ID, done.ID, models.TaskUpdate{IsCompleted: models.Some(true)})
	require.NoError(s.T(), err)

	stats, err := s.tasks.GetStats(s.ctx, alice.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 3, stats.Total)
	assert.Equal(s.T(), 1, stats.Completed)
	assert.Equal(s.T(), 1, stats.Overdue)
	assert.Equal(s.T(), "angry", stats.Mood)
	assert.Equal(s.T(), 2, stats.Weekly.Total)
	assert.Equal(s.T(), 1, stats.Weekly.Pending)
}

func (s *ServiceTestSuite) TestCountTasks() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	past := s.now.Add(-time.Hour)
	s.createTask(alice.ID, models.NewTask{Title: "late", Deadline: &past})
	s.createTask(bob.ID, models.NewTask{Title: "open"})
	done := s.createTask(bob.ID, models.NewTask{Title: "done", Deadline: &past})
	_, err := s.tasks.UpdateTask(s.ctx, bob.ID, done.ID, models.TaskUpdate{IsCompleted: models.Some(true)})
	require.NoError(s.T(), err)

	counts, err := s.tasks.CountTasks(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.TaskCounts{Open: 2, Completed: 1, Overdue: 1}, counts)
}
