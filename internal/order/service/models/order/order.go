package order

import (
	"time"

	"github.com/redone-net/marketplace/internal/order/service/models/orderitem"
	"github.com/shopspring/decimal"
)

// StatusValidated is the only status assigned at creation; orders are
// immutable once placed.
const StatusValidated = "VALIDATED"

// Order represents a placed order with its items.
type Order struct {
	ID          int64                 `json:"id"`
	ClientID    string                `json:"clientId"`
	OrderDate   time.Time             `json:"orderDate"`
	Status      string                `json:"status"`
	TotalAmount decimal.Decimal       `json:"totalAmount"`
	Items       []orderitem.OrderItem `json:"items"`
}

// QueryOrdersModel represents filter parameters for querying orders.
type QueryOrdersModel struct {
	Ids       []int64  `json:"ids,omitempty"`
	ClientIds []string `json:"clientIds,omitempty"`
	Limit     int      `json:"limit,omitempty"`
	Offset    int      `json:"offset,omitempty"`
}
