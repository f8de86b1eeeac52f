package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redone-net/marketplace/internal/catalog/service/models/product"
	"github.com/redone-net/marketplace/pkg/auth"
	"github.com/redone-net/marketplace/pkg/logger"
	"github.com/redone-net/marketplace/pkg/otel"
	"github.com/spf13/viper"
)

type service interface {
	Create(ctx context.Context, p product.Product) (*product.Product, error)
	Update(ctx context.Context, p product.Product) (*product.Product, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]product.Product, error)
	GetByID(ctx context.Context, id int64) (*product.Product, error)
	SaveImage(ctx context.Context, id int64, image io.Reader) error
	ImageFile(id int64) (string, error)
}

// HTTPTransport is the HTTP server of the catalog service.
type HTTPTransport struct {
	server  *http.Server
	router  *chi.Mux
	service service
}

// NewHTTPTransport creates the catalog service HTTP transport.
func NewHTTPTransport(service service) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:  server,
		router:  router,
		service: service,
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

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	h.router.Route("/api/produits", func(r chi.Router) {
		r.Post("/", h.createProduct)
		r.Get("/", h.listProducts)
		r.Get("/{id}", h.getProduct)
		r.Put("/{id}", h.updateProduct)
		r.Delete("/{id}", h.deleteProduct)
		r.Post("/{id}/image", h.uploadProductImage)
	})

	h.router.Get("/catalog/{name}", h.serveProductImage)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(chimiddleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(otel.NewTraceMiddleware("catalog-service"))

	rules := append([]auth.Rule{auth.PermitAll("*", "/health")}, auth.CatalogRules()...)
	router.Use(auth.Middleware(auth.NewPolicy(rules)))

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
