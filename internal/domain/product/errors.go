package product

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrBarcodeExists   = errors.New("barcode already exists")
	ErrInvalidProduct  = errors.New("invalid product")
)
