package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog product. Quantity is nil when no
// availability is tracked for the product.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    *int            `json:"quantity"`
	CreatedAt   time.Time       `json:"-"`
	UpdatedAt   time.Time       `json:"-"`
}
