package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domproduct "example.com/pos-scanner/internal/domain/product"
)

const uniqueViolation = "23505"

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) Create(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	err := r.pool.QueryRow(ctx, `
        INSERT INTO products (barcode, name, price, stock)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `, p.Barcode, p.Name, p.Price, p.Stock).Scan(&p.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domproduct.ErrBarcodeExists
		}
		return nil, err
	}
	return p, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	tag, err := r.pool.Exec(ctx, `
        UPDATE products SET name = $1, price = $2, stock = $3
        WHERE id = $4
    `, p.Name, p.Price, p.Stock, p.ID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domproduct.ErrProductNotFound
	}
	return p, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domproduct.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT id, barcode, name, price, stock
        FROM products WHERE id = $1
    `, id)
	return scanProduct(row)
}

func (r *ProductRepository) GetByBarcode(ctx context.Context, barcode string) (*domproduct.Product, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT id, barcode, name, price, stock
        FROM products WHERE barcode = $1
    `, barcode)
	return scanProduct(row)
}

func (r *ProductRepository) List(ctx context.Context, filter domproduct.ListFilter) ([]*domproduct.Product, error) {
	query := `
        SELECT id, barcode, name, price, stock
        FROM products
    `
	var args []any
	if filter.Search != "" {
		query += " WHERE name ILIKE $1 OR barcode ILIKE $1"
		args = append(args, "%"+filter.Search+"%")
	}
	query += " ORDER BY id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domproduct.Product
	for rows.Next() {
		var p domproduct.Product
		if err := rows.Scan(&p.ID, &p.Barcode, &p.Name, &p.Price, &p.Stock); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

func scanProduct(row pgx.Row) (*domproduct.Product, error) {
	var p domproduct.Product
	if err := row.Scan(&p.ID, &p.Barcode, &p.Name, &p.Price, &p.Stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domproduct.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}
