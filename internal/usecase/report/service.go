package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	domorder "example.com/pos-scanner/internal/domain/order"
)

type OrderLister interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]*domorder.Order, error)
}

type DailySummary struct {
	Day        time.Time
	OrderCount int
	ItemCount  int64
	Revenue    decimal.Decimal
}

type Service struct {
	orders OrderLister
}

func NewService(orders OrderLister) *Service {
	return &Service{orders: orders}
}

// DailySummary aggregates the orders created on the calendar day of day, in
// day's location.
func (s *Service) DailySummary(ctx context.Context, day time.Time) (DailySummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	orders, err := s.orders.ListBetween(ctx, start, end)
	if err != nil {
		return DailySummary{}, err
	}

	summary := DailySummary{Day: start, Revenue: decimal.Zero}
	for _, o := range orders {
		summary.OrderCount++
		summary.ItemCount += o.ItemCount()
		summary.Revenue = summary.Revenue.Add(o.TotalAmount)
	}
	return summary, nil
}
