package product

import "github.com/shopspring/decimal"

type Product struct {
	ID      int64
	Barcode string
	Name    string
	Price   decimal.Decimal
	Stock   int64
}

type ListFilter struct {
	Search string
}
