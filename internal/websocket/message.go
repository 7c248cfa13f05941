package websocket

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Actions exchanged with clients.
const (
	ActionPing         = "ping"
	ActionPong         = "pong"
	ActionError        = "error"
	ActionNotification = "notification"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage encodes a message with the given action and payload.
func NewMessage(action string, payload any) []byte {
	msg := struct {
		Action  string `json:"action"`
		Payload any    `json:"payload,omitempty"`
	}{Action: action, Payload: payload}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to encode websocket message")
		data, _ = json.Marshal(map[string]any{"action": ActionError, "payload": map[string]string{"message": "internal error"}})
	}
	return data
}

// NewErrorMessage encodes an error message for a client.
func NewErrorMessage(text string) []byte {
	return NewMessage(ActionError, map[string]string{"message": text})
}

// NewPongMessage encodes the reply to a ping.
func NewPongMessage() []byte {
	return NewMessage(ActionPong, nil)
}

// NewNotificationMessage wraps a stored notification for delivery.
func NewNotificationMessage(notification any) []byte {
	return NewMessage(ActionNotification, notification)
}
