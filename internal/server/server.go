// Package server boots the full marketplace: config, logging, database,
// cache, storage, queue workers, scheduler, gRPC health server and the
// HTTP API, then runs until interrupted.
package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/bazaar/app/controllers"
	"github.com/shashiranjanraj/bazaar/app/graph"
	"github.com/shashiranjanraj/bazaar/app/jobs"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/routes"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/config"
	_ "github.com/shashiranjanraj/bazaar/database/migrations"
	"github.com/shashiranjanraj/bazaar/pkg/cache"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/event"
	grpcserver "github.com/shashiranjanraj/bazaar/pkg/grpc"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/migration"
	"github.com/shashiranjanraj/bazaar/pkg/queue"
	"github.com/shashiranjanraj/bazaar/pkg/router"
	"github.com/shashiranjanraj/bazaar/pkg/schedule"
	"github.com/shashiranjanraj/bazaar/pkg/storage"
	"github.com/shashiranjanraj/bazaar/pkg/ws"
)

// Start runs the service and blocks until SIGINT/SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}
	logger.Setup()
	defer logger.Close()

	db, err := database.Open()
	if err != nil {
		return err
	}
	defer database.Close(db) //nolint:errcheck

	if err := migration.New(db).Run(); err != nil {
		return err
	}

	if err := cache.Connect(); err != nil {
		logger.Warn("redis unavailable, cache and queue degrade to memory", "error", err)
	} else {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}
	storage.Connect()
	queue.UseDB(db)

	// Repositories and services.
	users := repositories.NewUserRepository(db)
	sessions := repositories.NewSessionRepository(db)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db, products)
	gate := repositories.NewAuthAdapter(users, products, orders)
	authSvc := services.NewAuthService(sessions, users)

	jobs.Setup(users, orders)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue.StartWorkers(ctx, 4)

	// Stale sessions are purged once a day.
	schedule.Daily().Name("sessions:purge").Run(func() {
		if n, err := sessions.PurgeExpired(); err != nil {
			logger.Error("session purge failed", "error", err)
		} else if n > 0 {
			logger.Info("purged expired sessions", "count", n)
		}
	})
	schedule.Start(ctx)

	hub := ws.NewHub()
	go hub.Run()

	// Bridge order events onto the websocket stream.
	event.Listen("order.created", hub.BroadcastJSON)
	event.Listen("order.status_changed", hub.BroadcastJSON)

	schema, err := graph.NewSchema(products)
	if err != nil {
		return err
	}

	r := router.New()
	routes.RegisterAPI(r, routes.Deps{
		Users:    controllers.NewUserController(users, authSvc),
		Products: controllers.NewProductController(products),
		Orders:   controllers.NewOrderController(orders),
		Uploads:  controllers.NewUploadController(),
		Health:   controllers.NewHealthController(),
		Auth:     gate,
		Owners:   gate,
		Hub:      hub,
		Schema:   schema,
	})

	grpcSrv, grpcLis, err := grpcserver.Start(config.GRPCPort())
	if err != nil {
		return err
	}
	defer grpcLis.Close() //nolint:errcheck
	defer grpcserver.Stop(grpcSrv)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("bazaar listening", "port", config.AppPort(), "env", config.AppEnv())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
		return err
	}
	return nil
}
