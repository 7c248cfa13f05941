package models

import "time"

// NotificationDevice is a push token registered by one of the user's clients.
type NotificationDevice struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	DeviceToken string    `json:"device_token"`
	DeviceType  *string   `json:"device_type"` // "ios", "android", "web"
	CreatedAt   time.Time `json:"created_at"`
}
