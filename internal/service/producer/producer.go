// Package producer turns storefront events into admin notifications.
package producer

import (
	"fmt"
	"strings"

	"notification_center/internal/domain"
	"notification_center/internal/model"
)

type AppointmentBooked struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

func (e AppointmentBooked) Validate() error {
	return required(map[string]string{"name": e.Name, "service": e.Service, "date": e.Date})
}

func (e AppointmentBooked) Notification() model.NotificationInput {
	message := fmt.Sprintf("%s booked %s on %s", e.Name, e.Service, e.Date)
	if e.Time != "" {
		message += " at " + e.Time
	}
	return model.NotificationInput{
		Type:    domain.NotificationTypeAppointment,
		Title:   "New Appointment Booked",
		Message: message,
		Details: details(
			"Client", e.Name,
			"Email", e.Email,
			"Phone", e.Phone,
			"Service", e.Service,
			"Date", e.Date,
			"Time", e.Time,
		),
		Temporary: model.Bool(false),
	}
}

type InquirySubmitted struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (e InquirySubmitted) Validate() error {
	return required(map[string]string{"name": e.Name, "email": e.Email, "subject": e.Subject})
}

func (e InquirySubmitted) Notification() model.NotificationInput {
	return model.NotificationInput{
		Type:    domain.NotificationTypeInfo,
		Title:   "New Inquiry Received",
		Message: fmt.Sprintf("%s submitted an inquiry: %s", e.Name, e.Subject),
		Details: details(
			"Email", e.Email,
			"Phone", e.Phone,
			"Subject", e.Subject,
		),
		Temporary: model.Bool(false),
	}
}

type AdminSignup struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (e AdminSignup) Validate() error {
	return required(map[string]string{"name": e.Name, "email": e.Email})
}

func (e AdminSignup) Notification() model.NotificationInput {
	return model.NotificationInput{
		Type:      domain.NotificationTypeUserRegistration,
		Title:     "New Admin Registration",
		Message:   fmt.Sprintf("%s has registered as an administrator", e.Name),
		Details:   details("Name", e.Name, "Email", e.Email),
		Temporary: model.Bool(false),
	}
}

// details builds a label map from label/value pairs, skipping blank values.
func details(pairs ...string) map[string]string {
	out := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if v := strings.TrimSpace(pairs[i+1]); v != "" {
			out[pairs[i]] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
