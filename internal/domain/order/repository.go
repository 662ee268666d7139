package order

import (
	"context"
	"time"

	domcart "example.com/pos-scanner/internal/domain/cart"
)

type Repository interface {
	// CreateFromCart stores the snapshot as one order and decrements stock
	// for every line, all or nothing.
	CreateFromCart(ctx context.Context, snapshot domcart.Snapshot) (*Order, error)
	List(ctx context.Context) ([]*Order, error)
	// ListBetween returns the orders created in [from, to).
	ListBetween(ctx context.Context, from, to time.Time) ([]*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
}
