package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redone-net/marketplace/internal/gateway/proxy"
	"github.com/redone-net/marketplace/pkg/auth"
	"github.com/redone-net/marketplace/pkg/logger"
	"github.com/redone-net/marketplace/pkg/otel"
	"github.com/spf13/viper"
)

// HTTPTransport is the edge HTTP server. It authorizes requests against
// the full rule table, then hands them to the proxy routing table.
type HTTPTransport struct {
	server *http.Server
	router *chi.Mux
	table  *proxy.Table
}

// NewHTTPTransport creates the gateway HTTP transport.
func NewHTTPTransport(table *proxy.Table) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server: server,
		router: router,
		table:  table,
	}
}

// Run starts the HTTP server.
func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the local health endpoint and the catch-all
// proxy handler.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	h.router.NotFound(h.table.ServeHTTP)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(chimiddleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(otel.NewTraceMiddleware("gateway-service"))
	router.Use(newCORS().Handler)
	router.Use(auth.Middleware(auth.NewPolicy(auth.GatewayRules())))

	return router
}

func newCORS() *cors.Cors {
	origins := viper.GetStringSlice("cors.allowed_origins")
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
