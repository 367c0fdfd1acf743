package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"notification_center/internal/chime"
	"notification_center/internal/http/dto"
	"notification_center/internal/http/resp"
	"notification_center/internal/sse"
)

func (h *Handler) SSE(c *gin.Context) {
	topic := c.Param("topic")
	if !sse.IsTopic(topic) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "topic must be one of: notifications, banner, chime"})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		h.log.Error("streaming unsupported", zap.String("topic", topic))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "streaming unsupported"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	client := &sse.Client{
		Topic: topic,
		Ch:    make(chan sse.Event, 16),
	}
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	// The list stream opens with the current state so a fresh bell or list
	// page renders without waiting for the next change.
	if topic == sse.TopicNotifications {
		initial := sse.Event{Topic: topic, Name: "snapshot", Data: h.svc.Snapshot()}
		if err := writeEvent(c.Writer, initial); err != nil {
			h.log.Error("write snapshot failed", zap.Error(err))
			return
		}
	}
	flusher.Flush()

	heartbeat := h.cfg.SSEHeartbeat
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-h.hub.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(c.Writer, ": ping\n\n"); err != nil {
				h.log.Error("heartbeat write failed", zap.String("topic", topic), zap.Error(err))
				return
			}
			flusher.Flush()
		case event, ok := <-client.Ch:
			if !ok {
				return
			}
			if err := writeEvent(c.Writer, event); err != nil {
				h.log.Error("write event failed", zap.String("topic", topic), zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

func (h *Handler) ChimeWAV(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "audio/wav", chime.ToneFromConfig(h.cfg).WAV(chime.DefaultSampleRate))
}

func writeEvent(w http.ResponseWriter, event sse.Event) error {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return err
	}
	if event.ID != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", event.ID); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, payload)
	return err
}
