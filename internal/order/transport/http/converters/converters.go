package converters

import (
	"time"

	"github.com/redone-net/marketplace/internal/order/service/models/order"
	"github.com/shopspring/decimal"
)

// ItemResponse is the wire form of one order line. LineTotal is derived
// from the stored price and quantity on every render.
type ItemResponse struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// OrderResponse is the wire form of an order.
type OrderResponse struct {
	ID          int64           `json:"id"`
	ClientID    string          `json:"clientId"`
	OrderDate   time.Time       `json:"orderDate"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Items       []ItemResponse  `json:"items"`
}

// ToOrderResponse converts a service layer Order to its wire form.
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]ItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = ItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			LineTotal: item.LineTotal(),
		}
	}

	return OrderResponse{
		ID:          o.ID,
		ClientID:    o.ClientID,
		OrderDate:   o.OrderDate,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		Items:       items,
	}
}

// ToOrderResponses converts a list of orders.
func ToOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}

	return out
}
