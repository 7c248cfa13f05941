package handlers

import (
	"net/http"
	"strconv"

	"github.com/isdelr/taskmaster-be/internal/models"
	"github.com/isdelr/taskmaster-be/internal/services"
)

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	service services.TaskServiceProvider
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service services.TaskServiceProvider) *TaskHandler {
	return &TaskHandler{service: service}
}

func parseTaskFilter(r *http.Request) (models.TaskFilter, error) {
	q := r.URL.Query()
	f := models.TaskFilter{
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}
	var err error
	if v := q.Get("skip"); v != "" {
		if f.Skip, err = strconv.Atoi(v); err != nil {
			return f, err
		}
	}
	if v := q.Get("limit"); v != "" {
		if f.Limit, err = strconv.Atoi(v); err != nil {
			return f, err
		}
	}
	if v := q.Get("is_completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, err
		}
		f.IsCompleted = &b
	}
	if v := q.Get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, err
		}
		f.CategoryID = &id
	}
	return f, nil
}

// GetAll lists the caller's tasks.
func (h *TaskHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	filter, err := parseTaskFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid query parameter")
		return
	}

	tasks, err := h.service.GetAllTasks(r.Context(), user.ID, filter)
	if err != nil {
		writeServiceError(w, r, err, "Task")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Create adds a task for the caller.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var payload models.NewTask
	if !decodeJSON(w, r, &payload) {
		return
	}

	task, err := h.service.CreateTask(r.Context(), user.ID, payload)
	if err != nil {
		writeServiceError(w, r, err, "Task")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// Get returns a single task.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	task, err := h.service.GetTaskByID(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, r, err, "Task")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Update applies a partial update to a task. It serves both PUT and PATCH.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload models.TaskUpdate
	if !decodeJSON(w, r, &payload) {
		return
	}

	task, err := h.service.UpdateTask(r.Context(), user.ID, id, payload)
	if err != nil {
		writeServiceError(w, r, err, "Task")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Delete removes a task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTask(r.Context(), user.ID, id); err != nil {
		writeServiceError(w, r, err, "Task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats returns the caller's progress statistics.
func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	stats, err := h.service.GetStats(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err, "Task")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
