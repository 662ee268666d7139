package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID          int64
	TotalAmount decimal.Decimal
	Items       []OrderItem
	CreatedAt   time.Time
}

type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Barcode   string
	Name      string
	Price     decimal.Decimal
	Quantity  int64
	Total     decimal.Decimal
}

// ItemCount sums the quantities of all lines.
func (o *Order) ItemCount() int64 {
	var n int64
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}
