package push

import "context"

// PushProvider delivers dispatch and lifecycle alerts to driver and
// hospital devices.
type PushProvider interface {
	SendNotification(ctx context.Context, request *NotificationRequest) (*NotificationResponse, error)
}

type NotificationRequest struct {
	Token string            `json:"token"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound,omitempty"`
	TTL   int               `json:"ttl,omitempty"` // seconds
}

type NotificationResponse struct {
	MessageID string `json:"message_id"`
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	Error     string `json:"error,omitempty"`
}
