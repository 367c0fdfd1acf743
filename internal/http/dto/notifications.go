package dto

import "time"

type CreateNotificationRequest struct {
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	Temporary *bool             `json:"temporary,omitempty"`
	Silent    bool              `json:"silent,omitempty"`
}

type UnreadCountResponse struct {
	Unread int `json:"unread"`
}

type LastVisitResponse struct {
	LastVisit *time.Time `json:"last_visit"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type StatusResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
