// Package server boots the storefront: configuration, datastores,
// background workers and the HTTP listener.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vastrahub/vastra/app/jobs"
	"github.com/vastrahub/vastra/app/models"
	"github.com/vastrahub/vastra/app/repositories"
	"github.com/vastrahub/vastra/app/routes"
	"github.com/vastrahub/vastra/app/services"
	"github.com/vastrahub/vastra/config"
	"github.com/vastrahub/vastra/pkg/audit"
	"github.com/vastrahub/vastra/pkg/cache"
	"github.com/vastrahub/vastra/pkg/database"
	"github.com/vastrahub/vastra/pkg/event"
	"github.com/vastrahub/vastra/pkg/logger"
	"github.com/vastrahub/vastra/pkg/queue"
	"github.com/vastrahub/vastra/pkg/storage"
	"github.com/vastrahub/vastra/pkg/ws"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 30 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 15 * time.Second
	queueWorkers    = 4
)

// Run boots everything and blocks until SIGINT/SIGTERM.
func Run() error {
	if err := config.Load(); err != nil {
		return err
	}

	if err := database.Connect(); err != nil {
		return err
	}
	defer database.Close() //nolint:errcheck

	if err := cache.Connect(); err != nil {
		logger.Warn("server: redis unavailable, caching disabled", "error", err)
	}
	storage.Connect()

	jobs.RegisterAll()
	if config.QueueDriver() == "redis" && cache.RDB != nil {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	queue.StartWorkers(ctx, queueWorkers)
	go ws.OrderFeed.Run()

	trail := audit.NewTrail(database.Collection(database.ColAudit))
	defer trail.Close()

	productRepo := repositories.NewProductRepository()
	orderRepo := repositories.NewOrderRepository()
	userRepo := repositories.NewUserRepository()

	registerListeners()

	r := routes.Register(routes.Deps{
		Users:     userRepo,
		Catalog:   services.NewCatalogService(productRepo),
		Checkout:  services.NewCheckoutService(productRepo, orderRepo, trail),
		Orders:    services.NewOrderService(orderRepo, productRepo, trail),
		Dashboard: services.NewDashboardService(orderRepo, productRepo, userRepo),
		Trail:     trail,
	})

	srv := &http.Server{
		Addr:         ":" + config.AppPort(),
		Handler:      r.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// registerListeners connects order events to their side effects: the
// admin live feed and confirmation mail.
func registerListeners() {
	event.Listen(event.OrderCreated, func(payload interface{}) {
		order, ok := payload.(*models.Order)
		if !ok {
			return
		}
		ws.OrderFeed.BroadcastJSON(map[string]interface{}{
			"event":   event.OrderCreated,
			"orderId": order.ID.Hex(),
			"total":   order.Total,
			"status":  order.Status,
		})
		if err := queue.Dispatch(&jobs.OrderConfirmationMailJob{
			Email:   order.Customer.Email,
			Name:    order.Customer.Name,
			OrderID: order.ID.Hex(),
			Total:   order.Total,
		}); err != nil {
			logger.Error("server: confirmation mail dispatch failed", "order", order.ID.Hex(), "error", err)
		}
	})

	event.Listen(event.OrderStatusChanged, func(payload interface{}) {
		order, ok := payload.(*models.Order)
		if !ok {
			return
		}
		ws.OrderFeed.BroadcastJSON(map[string]interface{}{
			"event":   event.OrderStatusChanged,
			"orderId": order.ID.Hex(),
			"status":  order.Status,
		})
	})

	event.Listen(event.OrderDeleted, func(payload interface{}) {
		order, ok := payload.(*models.Order)
		if !ok {
			return
		}
		ws.OrderFeed.BroadcastJSON(map[string]interface{}{
			"event":   event.OrderDeleted,
			"orderId": order.ID.Hex(),
		})
	})
}
