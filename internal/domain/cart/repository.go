package cart

import "github.com/shopspring/decimal"

// Store holds the cart of the running scanner session. Every method is one
// atomic unit with respect to the others.
type Store interface {
	AddOrIncrement(barcode string, productID int64, name string, unitPrice decimal.Decimal) LineItem
	SetQuantity(barcode string, quantity int64) (*LineItem, error)
	Remove(barcode string)
	Clear()
	// Settle removes the quantities of a checked-out snapshot, keeping
	// whatever was added after the snapshot was taken.
	Settle(snap Snapshot)
	Snapshot() Snapshot
}
