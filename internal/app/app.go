package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"notification_center/internal/config"
	"notification_center/internal/queue"
	"notification_center/internal/repository"
	"notification_center/internal/service/notify"
	"notification_center/internal/sse"
)

type App struct {
	cfg      *config.Config
	hub      *sse.Hub
	svc      *notify.Service
	feed     repository.ChangeFeed
	consumer queue.Consumer
	pub      queue.Publisher
	server   *http.Server
	logger   *zap.Logger
	wg       sync.WaitGroup
}

func NewApp(cfg *config.Config, hub *sse.Hub, svc *notify.Service, feed repository.ChangeFeed, consumer queue.Consumer, pub queue.Publisher, router *gin.Engine, logger *zap.Logger) *App {
	return &App{
		cfg:      cfg,
		hub:      hub,
		svc:      svc,
		feed:     feed,
		consumer: consumer,
		pub:      pub,
		server: &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: router,
		},
		logger: logger,
	}
}

func (a *App) Run(ctx context.Context) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.hub.Run(ctx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.svc.SyncForever(ctx, a.cfg.SyncRetryInitial, a.cfg.SyncRetryMax)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.consumer.Start(ctx); err != nil && ctx.Err() == nil {
			a.logger.Error("consumer stopped", zap.Error(err))
		}
	}()

	a.logger.Info("http server listening",
		zap.String("addr", a.cfg.HTTPAddr),
		zap.String("origin", a.svc.Origin()),
		zap.String("store", a.cfg.StorageBackend()),
		zap.String("feed", a.cfg.ChangeFeedBackend()),
	)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("graceful shutdown started")
	shutdownErr := a.server.Shutdown(ctx)
	a.svc.Close()
	for _, c := range []any{a.feed, a.pub} {
		if closer, ok := c.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				a.logger.Warn("close broker connection", zap.Error(err))
			}
		}
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("graceful shutdown completed")
		return shutdownErr
	case <-ctx.Done():
		if shutdownErr != nil {
			return shutdownErr
		}
		return ctx.Err()
	}
}

func (a *App) Logger() *zap.Logger {
	return a.logger
}
