package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redone-net/marketplace/internal/order/dal/catalog"
	"github.com/redone-net/marketplace/internal/order/dal/postgres"
	"github.com/redone-net/marketplace/internal/order/dal/rabbitmq"
	outboxrepo "github.com/redone-net/marketplace/internal/order/dal/repositories/outbox/postgres"
	"github.com/redone-net/marketplace/internal/order/service/services/ordersvc"
	httptransport "github.com/redone-net/marketplace/internal/order/transport/http"
	outboxworker "github.com/redone-net/marketplace/internal/order/worker/outbox"
	"github.com/redone-net/marketplace/pkg/otel"
	"github.com/spf13/viper"
)

// App represents the order service application.
type App struct {
	orderSvc       *ordersvc.OrderService
	transport      *httptransport.HTTPTransport
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	outboxWorker   *outboxworker.Worker
	otelController *otel.Controller
}

// MustNewApp creates a new order service application.
func MustNewApp() *App {
	otelController := otel.MustInit("order-service")

	postgresClient := postgres.MustNewClient()

	catalogClient := catalog.NewClient(viper.GetString("produit.base_url"))

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithCatalogClient(catalogClient),
	)

	rabbitClient := rabbitmq.MustNewClient()
	if err := rabbitClient.DeclareExchange("orders"); err != nil {
		panic(err)
	}

	worker := outboxworker.NewWorker(
		outboxrepo.NewOutboxRepository(postgresClient.Pool()),
		rabbitClient,
	)

	transport := httptransport.NewHTTPTransport(orderSvc)
	transport.RegisterRoutes()

	return &App{
		orderSvc:       orderSvc,
		transport:      transport,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
		outboxWorker:   worker,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.outboxWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	cancelWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
