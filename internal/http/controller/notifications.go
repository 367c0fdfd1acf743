package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"notification_center/internal/config"
	"notification_center/internal/domain"
	"notification_center/internal/http/dto"
	"notification_center/internal/http/resp"
	"notification_center/internal/model"
	"notification_center/internal/queue"
	"notification_center/internal/service/notify"
	"notification_center/internal/sse"
)

type Handler struct {
	cfg *config.Config
	svc notify.Notifier
	hub *sse.Hub
	log *zap.Logger
	pub queue.Publisher
}

func NewHandler(cfg *config.Config, svc notify.Notifier, hub *sse.Hub, logger *zap.Logger, publisher queue.Publisher) *Handler {
	return &Handler{cfg: cfg, svc: svc, hub: hub, log: logger, pub: publisher}
}

func (h *Handler) ListNotifications(c *gin.Context) {
	filter, err := domain.ParseFilter(c.Query("filter"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "filter must be one of: all, unread, read, since_last_visit"})
		return
	}
	c.JSON(http.StatusOK, h.svc.Filter(c.Request.Context(), filter))
}

func (h *Handler) CreateNotification(c *gin.Context) {
	input, ok := bindNotification(c)
	if !ok {
		return
	}
	created := h.svc.Add(c.Request.Context(), input)
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) PublishNotification(c *gin.Context) {
	input, ok := bindNotification(c)
	if !ok {
		return
	}

	payload, err := json.Marshal(input)
	if err != nil {
		h.log.Error("publish payload marshal failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to publish notification"})
		return
	}

	prefix := h.cfg.RabbitPublishPrefix
	if prefix == "" {
		prefix = "notification"
	}
	routingKey := prefix + "." + input.Type
	if err := h.pub.Publish(c.Request.Context(), payload, routingKey); err != nil {
		h.log.Error("publish notification failed",
			zap.String("type", input.Type),
			zap.String("title", input.Title),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to publish notification"})
		return
	}

	c.JSON(http.StatusAccepted, dto.StatusResponse{Code: resp.CodeQueued, Message: "queued"})
}

func (h *Handler) RemoveNotification(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	h.svc.Remove(c.Request.Context(), id)
	c.Status(http.StatusNoContent)
}

func (h *Handler) ClearNotifications(c *gin.Context) {
	h.svc.ClearAll(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *Handler) MarkAsRead(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	h.svc.MarkAsRead(c.Request.Context(), id)
	c.Status(http.StatusNoContent)
}

func (h *Handler) MarkAllAsRead(c *gin.Context) {
	h.svc.MarkAllAsRead(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *Handler) UnreadCount(c *gin.Context) {
	c.JSON(http.StatusOK, dto.UnreadCountResponse{Unread: h.svc.UnreadCount()})
}

func (h *Handler) GetLastVisit(c *gin.Context) {
	c.JSON(http.StatusOK, dto.LastVisitResponse{LastVisit: h.svc.LastVisit(c.Request.Context())})
}

func (h *Handler) UpdateLastVisit(c *gin.Context) {
	visit := h.svc.UpdateLastVisit(c.Request.Context())
	c.JSON(http.StatusOK, dto.LastVisitResponse{LastVisit: &visit})
}

func bindNotification(c *gin.Context) (model.NotificationInput, bool) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "invalid json"})
		return model.NotificationInput{}, false
	}
	if req.Type == "" || req.Title == "" || req.Message == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "type, title, message are required"})
		return model.NotificationInput{}, false
	}
	if !domain.IsValidNotificationType(req.Type) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: domain.ErrInvalidNotificationType.Error()})
		return model.NotificationInput{}, false
	}
	return model.NotificationInput{
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		Details:   req.Details,
		Temporary: req.Temporary,
		Silent:    req.Silent,
	}, true
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		msg := "id must be an integer"
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			msg = "id out of range"
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: msg})
		return 0, false
	}
	return id, true
}
