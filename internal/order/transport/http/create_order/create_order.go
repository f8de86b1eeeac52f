package createorder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/redone-net/marketplace/internal/order/service/models/order"
	"github.com/redone-net/marketplace/internal/order/service/services/ordersvc"
	"github.com/redone-net/marketplace/internal/order/transport/http/converters"
	"github.com/redone-net/marketplace/pkg/auth"
	"github.com/redone-net/marketplace/pkg/httperr"
)

// service is an interface for the service layer.
type service interface {
	PlaceOrder(ctx context.Context, clientID string, items []ordersvc.ItemRequest, authorization string) (*order.Order, error)
}

// itemInCreateOrderRequest represents an item in a create order request.
type itemInCreateOrderRequest struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity"  validate:"gt=0"`
}

// createOrderRequest represents a create order request. A blank clientId
// defaults to the caller's derived identity.
type createOrderRequest struct {
	ClientID string                     `json:"clientId"`
	Items    []itemInCreateOrderRequest `json:"items" validate:"omitempty,dive"`
}

// Validate validates the create order request.
func (r *createOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *createOrderRequest) toItems() []ordersvc.ItemRequest {
	items := make([]ordersvc.ItemRequest, len(r.Items))
	for i, item := range r.Items {
		items[i] = ordersvc.ItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	return items
}

// CreateOrder handles the order placement request.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	req := createOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, httperr.Wrap(httperr.KindValidation, err, "invalid request body"))
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		httperr.Write(w, httperr.Wrap(httperr.KindValidation, err, "invalid request body"))
		slog.Error("Error validating request body for create order", "error", err)

		return
	}

	if req.ClientID == "" {
		if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
			req.ClientID = principal.Identity
		}
	}

	placed, err := service.PlaceOrder(r.Context(), req.ClientID, req.toItems(), r.Header.Get("Authorization"))
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error placing order", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", fmt.Sprintf("/api/commandes/%d", placed.ID))
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(converters.ToOrderResponse(placed)); err != nil {
		slog.Error("Error sending response for create order", "error", err)
	}
}
