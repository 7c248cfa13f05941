package handlers

import (
	"net/http"

	"github.com/isdelr/taskmaster-be/internal/models"
	"github.com/isdelr/taskmaster-be/internal/services"
)

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	service services.CategoryServiceProvider
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service services.CategoryServiceProvider) *CategoryHandler {
	return &CategoryHandler{service: service}
}

func (h *CategoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	categories, err := h.service.GetAllCategories(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err, "Category")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var payload models.NewCategory
	if !decodeJSON(w, r, &payload) {
		return
	}
	category, err := h.service.CreateCategory(r.Context(), user.ID, payload)
	if err != nil {
		writeServiceError(w, r, err, "Category")
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	category, err := h.service.GetCategoryByID(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, r, err, "Category")
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload models.CategoryUpdate
	if !decodeJSON(w, r, &payload) {
		return
	}
	category, err := h.service.UpdateCategory(r.Context(), user.ID, id, payload)
	if err != nil {
		writeServiceError(w, r, err, "Category")
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteCategory(r.Context(), user.ID, id); err != nil {
		writeServiceError(w, r, err, "Category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// InitDefaults creates the default categories the caller is missing.
func (h *CategoryHandler) InitDefaults(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	categories, err := h.service.InitDefaultCategories(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err, "Category")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}
