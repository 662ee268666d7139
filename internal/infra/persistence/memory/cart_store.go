package memory

import (
	"sync"

	"github.com/shopspring/decimal"

	domcart "example.com/pos-scanner/internal/domain/cart"
)

// CartStore is the in-process cart shared by the scan loop and the HTTP
// handlers. A single mutex guards the map.
type CartStore struct {
	mu    sync.RWMutex
	items map[string]domcart.LineItem
}

func NewCartStore() *CartStore {
	return &CartStore{items: make(map[string]domcart.LineItem)}
}

func (s *CartStore) AddOrIncrement(barcode string, productID int64, name string, unitPrice decimal.Decimal) domcart.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[barcode]
	if ok {
		item.Quantity++
	} else {
		item = domcart.LineItem{
			Barcode:   barcode,
			ProductID: productID,
			Name:      name,
			UnitPrice: unitPrice,
			Quantity:  1,
		}
	}
	s.items[barcode] = item
	return item
}

// SetQuantity removes the line when quantity <= 0 and returns a nil item.
// Setting a positive quantity on a barcode that is not in the cart fails
// with ErrItemNotInCart.
func (s *CartStore) SetQuantity(barcode string, quantity int64) (*domcart.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		delete(s.items, barcode)
		return nil, nil
	}
	item, ok := s.items[barcode]
	if !ok {
		return nil, domcart.ErrItemNotInCart
	}
	item.Quantity = quantity
	s.items[barcode] = item
	return &item, nil
}

func (s *CartStore) Remove(barcode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, barcode)
}

func (s *CartStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.items)
}

// Settle takes the quantities in snap out of the cart. A line that was
// scanned or incremented after snap was taken keeps the difference.
func (s *CartStore) Settle(snap domcart.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for barcode, sold := range snap {
		item, ok := s.items[barcode]
		if !ok {
			continue
		}
		item.Quantity -= sold.Quantity
		if item.Quantity <= 0 {
			delete(s.items, barcode)
			continue
		}
		s.items[barcode] = item
	}
}

func (s *CartStore) Snapshot() domcart.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(domcart.Snapshot, len(s.items))
	for barcode, item := range s.items {
		snap[barcode] = item
	}
	return snap
}
