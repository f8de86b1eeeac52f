package product

import "github.com/shopspring/decimal"

// Snapshot is a point-in-time copy of remote product data taken at
// order-placement time. Quantity is nil when the catalog reports no
// availability for the product.
type Snapshot struct {
	ID       int64           `json:"id"`
	Price    decimal.Decimal `json:"price"`
	Quantity *int            `json:"quantity"`
}
