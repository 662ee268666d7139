package checkout

import (
	"context"

	"go.uber.org/zap"

	domcart "example.com/pos-scanner/internal/domain/cart"
	domorder "example.com/pos-scanner/internal/domain/order"
)

type CartStore interface {
	Snapshot() domcart.Snapshot
	Settle(snap domcart.Snapshot)
}

type OrderRepository interface {
	CreateFromCart(ctx context.Context, snapshot domcart.Snapshot) (*domorder.Order, error)
}

type Service struct {
	cart      CartStore
	orderRepo OrderRepository
	logger    *zap.Logger
}

func NewService(cart CartStore, orderRepo OrderRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cart:      cart,
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// Checkout persists the current cart as one order. Only after the order has
// been stored are the sold quantities taken out of the cart; items scanned
// while the order was being written stay for the next checkout.
func (s *Service) Checkout(ctx context.Context) (*domorder.Order, error) {
	snapshot := s.cart.Snapshot()
	if snapshot.IsEmpty() {
		return nil, domorder.ErrEmptyOrderItems
	}

	order, err := s.orderRepo.CreateFromCart(ctx, snapshot)
	if err != nil {
		return nil, err
	}

	s.cart.Settle(snapshot)
	s.logger.Info("checkout completed",
		zap.Int64("order_id", order.ID),
		zap.String("total", order.TotalAmount.StringFixed(2)),
		zap.Int("lines", len(snapshot)),
	)
	return order, nil
}
