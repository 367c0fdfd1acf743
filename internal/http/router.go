package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"notification_center/internal/config"
	"notification_center/internal/http/controller"
	"notification_center/internal/http/dto"
	"notification_center/internal/http/middleware"
	"notification_center/internal/http/resp"
)

func NewRouter(handler *controller.Handler, logger *zap.Logger, reg *prometheus.Registry, cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(
		otelgin.Middleware(cfg.OTELServiceName),
		middleware.ZapLogger(logger, "/health", "/metrics"),
		middleware.ZapRecovery(logger),
	)

	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	router.GET("/chime.wav", handler.ChimeWAV)

	notifications := router.Group("/notifications")
	notifications.GET("", handler.ListNotifications)
	notifications.POST("", handler.CreateNotification)
	notifications.DELETE("", handler.ClearNotifications)
	notifications.POST("/publish", handler.PublishNotification)
	notifications.POST("/read", handler.MarkAllAsRead)
	notifications.GET("/unread-count", handler.UnreadCount)
	notifications.GET("/last-visit", handler.GetLastVisit)
	notifications.POST("/last-visit", handler.UpdateLastVisit)
	notifications.DELETE("/:id", handler.RemoveNotification)
	notifications.POST("/:id/read", handler.MarkAsRead)

	events := router.Group("/events")
	events.POST("/appointments", handler.RecordAppointment)
	events.POST("/inquiries", handler.RecordInquiry)
	events.POST("/admin-signups", handler.RecordAdminSignup)

	router.GET("/sse/:topic", handler.SSE)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Code: resp.CodeNotFound, Message: "not found"})
	})

	return router
}
