package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redone-net/marketplace/internal/order/service/models/order"
	"github.com/redone-net/marketplace/internal/order/service/services/ordersvc"
	createorder "github.com/redone-net/marketplace/internal/order/transport/http/create_order"
	getorder "github.com/redone-net/marketplace/internal/order/transport/http/get_order"
	listclientorders "github.com/redone-net/marketplace/internal/order/transport/http/list_client_orders"
	listorders "github.com/redone-net/marketplace/internal/order/transport/http/list_orders"
	"github.com/redone-net/marketplace/pkg/auth"
	"github.com/redone-net/marketplace/pkg/logger"
	"github.com/redone-net/marketplace/pkg/otel"
	"github.com/spf13/viper"
)

type service interface {
	PlaceOrder(ctx context.Context, clientID string, items []ordersvc.ItemRequest, authorization string) (*order.Order, error)
	ListOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error)
	ListByClient(ctx context.Context, clientID string) ([]order.Order, error)
	GetByID(ctx context.Context, id int64) (*order.Order, error)
}

// HTTPTransport is the HTTP server of the order service.
type HTTPTransport struct {
	server  *http.Server
	router  *chi.Mux
	service service
}

// NewHTTPTransport creates the order service HTTP transport.
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

	h.router.Route("/api/commandes", func(r chi.Router) {
		r.Post("/", h.createOrder)
		r.Get("/", h.listOrders)
		r.Get("/client/{clientId}", h.listClientOrders)
		r.Get("/{id}", h.getOrder)
	})
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.service)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.service)
}

func (h *HTTPTransport) listClientOrders(w http.ResponseWriter, r *http.Request) {
	listclientorders.ListClientOrders(w, r, h.service)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.service)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(chimiddleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(otel.NewTraceMiddleware("order-service"))

	rules := append([]auth.Rule{auth.PermitAll("*", "/health")}, auth.OrderRules()...)
	router.Use(auth.Middleware(auth.NewPolicy(rules)))

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
