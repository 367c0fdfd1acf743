package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"notification_center/internal/http/dto"
	"notification_center/internal/http/resp"
	"notification_center/internal/model"
	"notification_center/internal/service/producer"
)

type producerEvent interface {
	Validate() error
	Notification() model.NotificationInput
}

func (h *Handler) RecordAppointment(c *gin.Context) {
	recordEvent[producer.AppointmentBooked](h, c)
}

func (h *Handler) RecordInquiry(c *gin.Context) {
	recordEvent[producer.InquirySubmitted](h, c)
}

func (h *Handler) RecordAdminSignup(c *gin.Context) {
	recordEvent[producer.AdminSignup](h, c)
}

func recordEvent[E producerEvent](h *Handler, c *gin.Context) {
	var event E
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "invalid json"})
		return
	}
	if err := event.Validate(); err != nil {
		msg := "invalid event"
		if errors.Is(err, producer.ErrMissingFields) {
			msg = err.Error()
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: msg})
		return
	}
	created := h.svc.Add(c.Request.Context(), event.Notification())
	c.JSON(http.StatusCreated, created)
}
