package product

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	dom "example.com/pos-scanner/internal/domain/product"
)

type Service struct {
	repo dom.Repository
}

func NewService(repo dom.Repository) *Service {
	return &Service{repo: repo}
}

// Patch carries the fields an update may change. Nil fields are left as is.
type Patch struct {
	Name  *string
	Price *decimal.Decimal
	Stock *int64
}

func (s *Service) Create(ctx context.Context, p *dom.Product) (*dom.Product, error) {
	p.Barcode = strings.TrimSpace(p.Barcode)
	p.Name = strings.TrimSpace(p.Name)
	if err := validate(p); err != nil {
		return nil, err
	}

	_, err := s.repo.GetByBarcode(ctx, p.Barcode)
	if err == nil {
		return nil, dom.ErrBarcodeExists
	}
	if !errors.Is(err, dom.ErrProductNotFound) {
		return nil, err
	}

	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id int64, patch Patch) (*dom.Product, error) {
	existed, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		existed.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Price != nil {
		existed.Price = *patch.Price
	}
	if patch.Stock != nil {
		existed.Stock = *patch.Stock
	}
	if err := validate(existed); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, existed)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*dom.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByBarcode(ctx context.Context, barcode string) (*dom.Product, error) {
	return s.repo.GetByBarcode(ctx, strings.TrimSpace(barcode))
}

func (s *Service) List(ctx context.Context, filter dom.ListFilter) ([]*dom.Product, error) {
	return s.repo.List(ctx, filter)
}

func validate(p *dom.Product) error {
	if p.Barcode == "" || p.Name == "" {
		return dom.ErrInvalidProduct
	}
	if p.Price.IsNegative() || p.Stock < 0 {
		return dom.ErrInvalidProduct
	}
	return nil
}
