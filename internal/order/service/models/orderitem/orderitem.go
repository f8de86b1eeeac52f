package orderitem

import "github.com/shopspring/decimal"

// OrderItem represents one line of an order. Price is a snapshot copied
// from the catalog at order time, not a live reference.
type OrderItem struct {
	ID        int64           `json:"-"`
	OrderID   int64           `json:"-"`
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// LineTotal is the item price times quantity. It is derived on every read
// rather than stored.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// QueryOrderItemsModel represents filter parameters for querying order items.
type QueryOrderItemsModel struct {
	OrderIds []int64 `json:"orderIds,omitempty"`
}
