package getorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/redone-net/marketplace/internal/order/service/models/order"
	"github.com/redone-net/marketplace/internal/order/transport/http/converters"
	"github.com/redone-net/marketplace/pkg/httperr"
)

type service interface {
	GetByID(ctx context.Context, id int64) (*order.Order, error)
}

// GetOrder handles the order lookup by id.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httperr.Write(w, httperr.New(httperr.KindNotFound, "order not found"))

		return
	}

	found, err := service.GetByID(r.Context(), id)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error getting order", "error", err, "order_id", id)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(converters.ToOrderResponse(found)); err != nil {
		slog.Error("Error sending response for get order", "error", err)
	}
}
