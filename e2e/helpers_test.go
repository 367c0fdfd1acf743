package e2e

import (
	"bufio"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"notification_center/internal/chime"
	"notification_center/internal/config"
	httpserver "notification_center/internal/http"
	"notification_center/internal/http/controller"
	"notification_center/internal/metrics"
	"notification_center/internal/queue"
	"notification_center/internal/repository"
	"notification_center/internal/service/notify"
	"notification_center/internal/sse"
)

func ginTestMode() {
	gin.SetMode(gin.TestMode)
}

type noopPublisher struct{}

func (n *noopPublisher) Publish(context.Context, []byte, string) error {
	return nil
}

func testConfig(instance string) *config.Config {
	return &config.Config{
		HTTPAddr:            ":0",
		InstanceID:          instance,
		SSEHeartbeat:        5 * time.Second,
		NotificationsKey:    "admin_notifications",
		LastVisitKey:        "admin_notifications_last_visit",
		MaxNotifications:    10,
		TransientTTL:        5 * time.Second,
		StorageTimeout:      time.Second,
		ChimeEnabled:        true,
		ChimeFrequency:      880,
		ChimeDuration:       250 * time.Millisecond,
		RabbitPublishPrefix: "notification",
		OTELServiceName:     "notification-center-e2e",
	}
}

type instance struct {
	svc    *notify.Service
	server *httptest.Server
}

// startInstance runs one service instance over the given slot store and
// change feed, the way cmd/server wires it.
func startInstance(t *testing.T, cfg *config.Config, slots repository.SlotStore, feed repository.ChangeFeed, publisher queue.Publisher) *instance {
	t.Helper()
	logger := zap.NewNop()
	hub := sse.NewHub()
	reg := prometheus.NewRegistry()
	svc := notify.NewService(cfg, slots, feed, hub, chime.NewPlayer(cfg, hub), metrics.New(reg), logger)
	handler := controller.NewHandler(cfg, svc, hub, logger, publisher)
	router := httpserver.NewRouter(handler, logger, reg, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	go func() { _ = svc.Sync(ctx) }()

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		svc.Close()
		cancel()
	})
	return &instance{svc: svc, server: server}
}

type sseFrame struct {
	event string
	data  string
}

func readSSEFrame(body io.Reader, timeout time.Duration) (sseFrame, error) {
	reader := bufio.NewReader(body)
	return readSSEFrameFrom(reader, timeout)
}

func readSSEFrameFrom(reader *bufio.Reader, timeout time.Duration) (sseFrame, error) {
	type result struct {
		frame sseFrame
		err   error
	}
	ch := make(chan result, 1)

	go func() {
		var frame sseFrame
		var dataLines []string
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				ch <- result{sseFrame{}, err}
				return
			}
			line = strings.TrimRight(line, "\r\n")
			if line == "" {
				if len(dataLines) > 0 {
					frame.data = strings.Join(dataLines, "\n")
					ch <- result{frame, nil}
					return
				}
				continue
			}
			if strings.HasPrefix(line, ":") {
				continue
			}
			if strings.HasPrefix(line, "event:") {
				frame.event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			}
			if strings.HasPrefix(line, "data:") {
				dataLines = append(dataLines, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
			}
		}
	}()

	select {
	case res := <-ch:
		return res.frame, res.err
	case <-time.After(timeout):
		return sseFrame{}, context.DeadlineExceeded
	}
}
