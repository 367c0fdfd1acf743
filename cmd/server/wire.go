//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"notification_center/internal/app"
	"notification_center/internal/chime"
	"notification_center/internal/config"
	"notification_center/internal/http"
	"notification_center/internal/http/controller"
	"notification_center/internal/logging"
	"notification_center/internal/metrics"
	"notification_center/internal/queue/rabbitmq"
	"notification_center/internal/service/notify"
	"notification_center/internal/sse"
	"notification_center/internal/store"
)

func InitializeApp() (*app.App, func(), error) {
	wire.Build(
		config.New,
		logging.New,
		metrics.NewRegistry,
		metrics.New,
		store.NewRedisClient,
		store.NewStore,
		store.NewFeed,
		sse.NewHub,
		chime.NewPlayer,
		notify.NewService,
		wire.Bind(new(notify.Notifier), new(*notify.Service)),
		controller.NewHandler,
		http.NewRouter,
		rabbitmq.NewConsumer,
		rabbitmq.NewPublisher,
		app.NewApp,
	)
	return nil, nil, nil
}
