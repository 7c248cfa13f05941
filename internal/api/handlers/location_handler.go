package handlers

import (
	"net/http"
	"strconv"

	"github.com/isdelr/taskmaster-be/internal/models"
	"github.com/isdelr/taskmaster-be/internal/services"
)

// LocationHandler handles HTTP requests for saved locations.
type LocationHandler struct {
	service services.LocationServiceProvider
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(service services.LocationServiceProvider) *LocationHandler {
	return &LocationHandler{service: service}
}

func (h *LocationHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	locations, err := h.service.GetAllLocations(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err, "Location")
		return
	}
	writeJSON(w, http.StatusOK, locations)
}

func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var payload models.NewLocation
	if !decodeJSON(w, r, &payload) {
		return
	}
	location, err := h.service.CreateLocation(r.Context(), user.ID, payload)
	if err != nil {
		writeServiceError(w, r, err, "Location")
		return
	}
	writeJSON(w, http.StatusCreated, location)
}

func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	location, err := h.service.GetLocationByID(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, r, err, "Location")
		return
	}
	writeJSON(w, http.StatusOK, location)
}

func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload models.LocationUpdate
	if !decodeJSON(w, r, &payload) {
		return
	}
	location, err := h.service.UpdateLocation(r.Context(), user.ID, id, payload)
	if err != nil {
		writeServiceError(w, r, err, "Location")
		return
	}
	writeJSON(w, http.StatusOK, location)
}

func (h *LocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteLocation(r.Context(), user.ID, id); err != nil {
		writeServiceError(w, r, err, "Location")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Nearby resolves ?latitude=&longitude= against the caller's geofences. The
// body is the matching location with its distance in meters, or null.
func (h *LocationHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("latitude"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("longitude"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "latitude and longitude must be numbers")
		return
	}

	match, err := h.service.FindNearby(r.Context(), user.ID, lat, lon)
	if err != nil {
		writeServiceError(w, r, err, "Location")
		return
	}
	writeJSON(w, http.StatusOK, match)
}
