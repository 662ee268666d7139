package cart

import (
	"strings"

	domcart "example.com/pos-scanner/internal/domain/cart"
)

type Service struct {
	store domcart.Store
}

func NewService(store domcart.Store) *Service {
	return &Service{store: store}
}

func (s *Service) GetCart() domcart.Snapshot {
	return s.store.Snapshot()
}

// UpdateQuantity sets the quantity of a line already in the cart. A quantity
// of zero or less removes the line and returns a nil item.
func (s *Service) UpdateQuantity(barcode string, quantity int64) (*domcart.LineItem, error) {
	return s.store.SetQuantity(strings.TrimSpace(barcode), quantity)
}

func (s *Service) RemoveItem(barcode string) {
	s.store.Remove(strings.TrimSpace(barcode))
}

func (s *Service) Clear() {
	s.store.Clear()
}
