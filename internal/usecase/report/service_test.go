package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	domorder "example.com/pos-scanner/internal/domain/order"
)

type mockOrderLister struct {
	orders   []*domorder.Order
	err      error
	from, to time.Time
}

func (m *mockOrderLister) ListBetween(ctx context.Context, from, to time.Time) ([]*domorder.Order, error) {
	m.from, m.to = from, to
	if m.err != nil {
		return nil, m.err
	}
	var result []*domorder.Order
	for _, o := range m.orders {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			result = append(result, o)
		}
	}
	return result, nil
}

func TestService_DailySummary(t *testing.T) {
	day := time.Date(2024, 3, 14, 15, 30, 0, 0, time.UTC)
	order := func(id int64, at time.Time, total int64, qty int64) *domorder.Order {
		return &domorder.Order{
			ID:          id,
			TotalAmount: decimal.NewFromInt(total),
			CreatedAt:   at,
			Items:       []domorder.OrderItem{{Quantity: qty}},
		}
	}

	lister := &mockOrderLister{orders: []*domorder.Order{
		order(1, time.Date(2024, 3, 13, 23, 59, 59, 0, time.UTC), 100, 1),
		order(2, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), 2500, 3),
		order(3, time.Date(2024, 3, 14, 21, 0, 0, 0, time.UTC), 500, 1),
		order(4, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), 900, 2),
	}}
	svc := NewService(lister)

	summary, err := svc.DailySummary(context.Background(), day)
	require.NoError(t, err)
	require.Equal(t, 2, summary.OrderCount)
	require.Equal(t, int64(4), summary.ItemCount)
	require.True(t, decimal.NewFromInt(3000).Equal(summary.Revenue))
	require.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), summary.Day)
	require.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), lister.from)
	require.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), lister.to)
}

func TestService_DailySummary_WindowFollowsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*60*60)
	lister := &mockOrderLister{}
	svc := NewService(lister)

	_, err := svc.DailySummary(context.Background(), time.Date(2024, 3, 14, 1, 0, 0, 0, loc))
	require.NoError(t, err)
	require.True(t, lister.from.Equal(time.Date(2024, 3, 13, 17, 0, 0, 0, time.UTC)))
	require.Equal(t, 24*time.Hour, lister.to.Sub(lister.from))
}

func TestService_DailySummary_NoOrders(t *testing.T) {
	svc := NewService(&mockOrderLister{})

	summary, err := svc.DailySummary(context.Background(), time.Now())
	require.NoError(t, err)
	require.Zero(t, summary.OrderCount)
	require.True(t, summary.Revenue.IsZero())
}

func TestService_DailySummary_ListError(t *testing.T) {
	svc := NewService(&mockOrderLister{err: errors.New("db down")})

	_, err := svc.DailySummary(context.Background(), time.Now())
	require.EqualError(t, err, "db down")
}
