package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redone-net/marketplace/internal/gateway/proxy"
	httptransport "github.com/redone-net/marketplace/internal/gateway/transport/http"
	"github.com/redone-net/marketplace/pkg/otel"
	"github.com/spf13/viper"
)

// App represents the gateway application.
type App struct {
	transport      *httptransport.HTTPTransport
	otelController *otel.Controller
}

// MustNewApp creates a new gateway application.
func MustNewApp() *App {
	otelController := otel.MustInit("gateway-service")

	produitURL := viper.GetString("services.produit_url")
	commandeURL := viper.GetString("services.commande_url")

	table := proxy.MustNewTable(
		[2]string{"/api/produits", produitURL},
		[2]string{"/catalog", produitURL},
		[2]string{"/api/commandes", commandeURL},
	)

	transport := httptransport.NewHTTPTransport(table)
	transport.RegisterRoutes()

	return &App{
		transport:      transport,
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

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
