package listclientorders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redone-net/marketplace/internal/order/service/models/order"
	"github.com/redone-net/marketplace/internal/order/transport/http/converters"
	"github.com/redone-net/marketplace/pkg/auth"
	"github.com/redone-net/marketplace/pkg/httperr"
)

type service interface {
	ListByClient(ctx context.Context, clientID string) ([]order.Order, error)
}

// ListClientOrders handles the per-client order listing. A caller without
// the ADMIN role may only request their own client id; this ownership rule
// cannot be expressed in the shared policy table.
func ListClientOrders(w http.ResponseWriter, r *http.Request, service service) {
	clientID := chi.URLParam(r, "clientId")

	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		if !principal.Roles.Has(auth.RoleAdmin) && clientID != principal.Identity {
			httperr.Write(w, httperr.New(httperr.KindForbidden, "cannot access other client orders"))

			return
		}
	}

	orders, err := service.ListByClient(r.Context(), clientID)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error listing client orders", "error", err, "client_id", clientID)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(converters.ToOrderResponses(orders)); err != nil {
		slog.Error("Error sending response for list client orders", "error", err)
	}
}
