package model

import "time"

// Notification is one entry of the admin notification list. The JSON shape is
// the persisted format shared by every instance reading the same slot.
type Notification struct {
	ID        int64             `json:"id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Read      bool              `json:"read"`
	Temporary *bool             `json:"temporary,omitempty"`
	Silent    bool              `json:"silent,omitempty"`
}

// NotificationInput holds the fields a producer supplies. Temporary left nil
// means the notification expires on its own.
type NotificationInput struct {
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	Temporary *bool             `json:"temporary,omitempty"`
	Silent    bool              `json:"silent,omitempty"`
}

type Snapshot struct {
	Notifications []Notification `json:"notifications"`
	Unread        int            `json:"unread"`
}

func Bool(v bool) *bool {
	return &v
}
