package listorders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/redone-net/marketplace/internal/order/service/models/order"
	"github.com/redone-net/marketplace/internal/order/transport/http/converters"
	"github.com/redone-net/marketplace/pkg/httperr"
)

type service interface {
	ListOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error)
}

type queryOrdersRequest struct {
	Ids       []int64  `schema:"ids,omitempty"`
	ClientIds []string `schema:"clientIds,omitempty"`
	Limit     int      `schema:"limit,omitempty"`
	Offset    int      `schema:"offset,omitempty"`
}

func (q *queryOrdersRequest) ToModel() order.QueryOrdersModel {
	return order.QueryOrdersModel{
		Ids:       q.Ids,
		ClientIds: q.ClientIds,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}
}

// ListOrders handles the unrestricted order listing.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &queryOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		httperr.Write(w, httperr.Wrap(httperr.KindValidation, err, "invalid query parameters"))
		slog.Error("Error decoding list orders query", "error", err)

		return
	}

	orders, err := service.ListOrders(r.Context(), query.ToModel())
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error listing orders", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(converters.ToOrderResponses(orders)); err != nil {
		slog.Error("Error sending response for list orders", "error", err)
	}
}
