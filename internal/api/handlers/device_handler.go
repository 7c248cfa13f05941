package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/taskmaster-be/internal/services"
)

// DeviceHandler handles registration of push notification devices.
type DeviceHandler struct {
	service services.DeviceServiceProvider
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(service services.DeviceServiceProvider) *DeviceHandler {
	return &DeviceHandler{service: service}
}

// DevicePayload is the body of a device registration.
type DevicePayload struct {
	DeviceToken string  `json:"device_token" validate:"required,max=512"`
	DeviceType  *string `json:"device_type" validate:"omitempty,oneof=ios android web"`
}

// Register stores a device token. An already registered token is returned
// unchanged with 200; a new one yields 201.
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var payload DevicePayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	device, created, err := h.service.RegisterDevice(r.Context(), user.ID, payload.DeviceToken, payload.DeviceType)
	if err != nil {
		writeServiceError(w, r, err, "Device")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, device)
}

func (h *DeviceHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	devices, err := h.service.GetDevices(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err, "Device")
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

// Delete unregisters the token in the URL, e.g. on logout.
func (h *DeviceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	token := chi.URLParam(r, "device_token")
	if err := h.service.DeleteDevice(r.Context(), user.ID, token); err != nil {
		writeServiceError(w, r, err, "Device")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Device token deleted"})
}
