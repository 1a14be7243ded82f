package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YelzhanWeb/kasir/internal/adapter/logger"
	"github.com/YelzhanWeb/kasir/internal/adapter/postgres"
	"github.com/YelzhanWeb/kasir/internal/adapter/rabbitmq"
	"github.com/YelzhanWeb/kasir/internal/adapter/session"
	"github.com/YelzhanWeb/kasir/internal/app/catalog"
	"github.com/YelzhanWeb/kasir/internal/app/dashboard"
	"github.com/YelzhanWeb/kasir/internal/app/order"
	"github.com/YelzhanWeb/kasir/internal/app/staff"
	"github.com/YelzhanWeb/kasir/internal/config"
	"github.com/YelzhanWeb/kasir/internal/interfaces"

	amqpAdapter "github.com/YelzhanWeb/kasir/internal/adapter/amqp"
	httpAdapter "github.com/YelzhanWeb/kasir/internal/adapter/http"
)

func main() {
	// Parse command-line flags
	mode := flag.String("mode", "api", "Service mode: api, notification-subscriber")
	port := flag.Int("port", 3000, "HTTP port")
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	prefetch := flag.Int("prefetch", 10, "RabbitMQ prefetch count (notification-subscriber)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	lgr, syncLogger, err := logger.New(*mode, logger.Options{
		Level:    cfg.Logger.Level,
		Filename: cfg.Logger.Filename,
	})
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer syncLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "api":
		err = runAPI(ctx, cfg, lgr, *port)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, lgr, *prefetch)
	default:
		err = fmt.Errorf("invalid mode: %s", *mode)
	}
	if err != nil {
		lgr.Error("service_failed", "Service stopped with error", "runtime", nil, err)
		syncLogger()
		os.Exit(1)
	}
}

func runAPI(ctx context.Context, cfg *config.Config, lgr logger.Logger, port int) error {
	// Connect to PostgreSQL
	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer db.Close()

	lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
		"host": cfg.Database.Host,
		"db":   cfg.Database.Database,
	})

	// Events are optional for the API
	publisher := rabbitmq.NewNopPublisher()
	if cfg.RabbitMQ.Enabled {
		mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
		if err != nil {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		defer mqConn.Close()

		publisher = rabbitmq.NewPublisher(mqConn)
		lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
			"host":     cfg.RabbitMQ.Host,
			"exchange": rabbitmq.EventsExchange,
		})
	}

	// Initialize repositories
	orderRepo := postgres.NewOrderRepository(db)
	menuRepo := postgres.NewMenuRepository(db)
	tableRepo := postgres.NewTableRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Initialize services
	var (
		orderService     interfaces.OrderService     = order.NewService(orderRepo, menuRepo, publisher, lgr, cfg.Policy(), cfg.Orders.ListLimit)
		dashboardService interfaces.DashboardService = dashboard.NewService(orderRepo, menuRepo, tableRepo, lgr, cfg.Dashboard.OrderLimit)
		catalogService   interfaces.CatalogService   = catalog.NewService(menuRepo, tableRepo, publisher, lgr)
		staffService     interfaces.StaffService     = staff.NewService(userRepo, lgr, 0)
	)

	handler := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		Orders:    orderService,
		Dashboard: dashboardService,
		Catalog:   catalogService,
		Staff:     staffService,
		Sessions:  session.NewManager(cfg.Session),
		DB:        db,
		Logger:    lgr,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("API started on port %d", port), "startup", map[string]interface{}{
		"port":              port,
		"transition_policy": cfg.Policy(),
		"events_enabled":    cfg.RabbitMQ.Enabled,
	})

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	lgr.Info("shutdown_initiated", "Shutting down API", "shutdown", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, lgr logger.Logger, prefetch int) error {
	// Connect to RabbitMQ
	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer mqConn.Close()

	consumer := rabbitmq.NewConsumer(mqConn, prefetch, "#", lgr)
	notificationHandler := amqpAdapter.NewNotificationHandler(lgr, os.Stdout)

	lgr.Info("service_started", "Notification Subscriber started", "startup", map[string]interface{}{
		"exchange": rabbitmq.EventsExchange,
		"prefetch": prefetch,
	})

	// Блокируется до отмены контекста
	if err := consumer.ConsumeEvents(ctx, notificationHandler.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consumer: %w", err)
	}

	lgr.Info("shutdown_initiated", "Shutting down Notification Subscriber", "shutdown", nil)
	return nil
}
