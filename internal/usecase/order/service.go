package order

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	domorder "example.com/pos-scanner/internal/domain/order"
)

type Service struct {
	repo domorder.Repository
}

func NewService(repo domorder.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]*domorder.Order, error) {
	return s.repo.List(ctx)
}

// ListBetween returns the orders created in [from, to).
func (s *Service) ListBetween(ctx context.Context, from, to time.Time) ([]*domorder.Order, error) {
	if !from.Before(to) {
		return nil, nil
	}
	return s.repo.ListBetween(ctx, from, to)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domorder.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// Invoice is the printable view of one stored order.
type Invoice struct {
	OrderID   int64
	IssuedAt  time.Time
	Lines     []InvoiceLine
	ItemCount int64
	Total     decimal.Decimal
}

type InvoiceLine struct {
	Barcode   string
	Name      string
	Quantity  int64
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Invoice builds the invoice for the order. Lines keep the order's stored
// prices; the stored total must equal the sum of the line totals.
func (s *Service) Invoice(ctx context.Context, id int64) (*Invoice, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		OrderID:   o.ID,
		IssuedAt:  o.CreatedAt,
		Lines:     make([]InvoiceLine, 0, len(o.Items)),
		ItemCount: o.ItemCount(),
		Total:     o.TotalAmount,
	}
	sum := decimal.Zero
	for _, item := range o.Items {
		inv.Lines = append(inv.Lines, InvoiceLine{
			Barcode:   item.Barcode,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			LineTotal: item.Total,
		})
		sum = sum.Add(item.Total)
	}
	if !sum.Equal(o.TotalAmount) {
		return nil, fmt.Errorf("%w: order %d lines sum to %s, total is %s",
			domorder.ErrInvoiceMismatch, o.ID, sum.StringFixed(2), o.TotalAmount.StringFixed(2))
	}
	return inv, nil
}
