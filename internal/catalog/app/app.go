package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redone-net/marketplace/internal/catalog/dal/postgres"
	productrepo "github.com/redone-net/marketplace/internal/catalog/dal/repositories/product/postgres"
	"github.com/redone-net/marketplace/internal/catalog/service/services/productsvc"
	httptransport "github.com/redone-net/marketplace/internal/catalog/transport/http"
	"github.com/redone-net/marketplace/pkg/otel"
	"github.com/spf13/viper"
)

// App represents the catalog service application.
type App struct {
	productSvc     *productsvc.ProductService
	transport      *httptransport.HTTPTransport
	postgresClient *postgres.Client
	otelController *otel.Controller
}

// MustNewApp creates a new catalog service application.
func MustNewApp() *App {
	otelController := otel.MustInit("catalog-service")

	postgresClient := postgres.MustNewClient()

	productSvc := productsvc.MustNewProductService(
		productsvc.WithRepository(productrepo.NewPostgresProductRepository(postgresClient.Pool())),
		productsvc.WithImageDir(viper.GetString("images.dir")),
	)

	transport := httptransport.NewHTTPTransport(productSvc)
	transport.RegisterRoutes()

	return &App{
		productSvc:     productSvc,
		transport:      transport,
		postgresClient: postgresClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
