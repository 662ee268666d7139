package cart

import (
	"sort"

	"github.com/shopspring/decimal"
)

// LineItem is one cart row keyed by barcode. UnitPrice is fixed when the
// barcode first enters the cart.
type LineItem struct {
	Barcode   string
	ProductID int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int64
}

// LineTotal is always derived from Quantity and UnitPrice.
func (i LineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// Snapshot is a detached copy of the cart keyed by barcode.
type Snapshot map[string]LineItem

func (s Snapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Items returns the lines ordered by barcode.
func (s Snapshot) Items() []LineItem {
	items := make([]LineItem, 0, len(s))
	for _, item := range s {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Barcode < items[j].Barcode })
	return items
}

func (s Snapshot) IsEmpty() bool {
	return len(s) == 0
}
