package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"

	domproduct "example.com/pos-scanner/internal/domain/product"
)

const mysqlDuplicateEntry = 1062

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	res, err := r.db.ExecContext(ctx, `
        INSERT INTO products (barcode, name, price, stock)
        VALUES (?, ?, ?, ?)
    `, p.Barcode, p.Name, p.Price, p.Stock)
	if err != nil {
		if isDuplicateEntry(err) {
			return nil, domproduct.ErrBarcodeExists
		}
		return nil, err
	}
	p.ID, _ = res.LastInsertId()
	return p, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	res, err := r.db.ExecContext(ctx, `
        UPDATE products SET name = ?, price = ?, stock = ?
        WHERE id = ?
    `, p.Name, p.Price, p.Stock, p.ID)
	if err != nil {
		return nil, err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		// MySQL reports 0 affected rows when nothing changed, so confirm the row exists.
		if _, err := r.GetByID(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return domproduct.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, barcode, name, price, stock
        FROM products WHERE id = ?
    `, id)
	return scanProduct(row)
}

func (r *ProductRepository) GetByBarcode(ctx context.Context, barcode string) (*domproduct.Product, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, barcode, name, price, stock
        FROM products WHERE barcode = ?
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
		query += " WHERE name LIKE ? OR barcode LIKE ?"
		pattern := fmt.Sprintf("%%%s%%", filter.Search)
		args = append(args, pattern, pattern)
	}
	query += " ORDER BY id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
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

func scanProduct(row *sql.Row) (*domproduct.Product, error) {
	var p domproduct.Product
	if err := row.Scan(&p.ID, &p.Barcode, &p.Name, &p.Price, &p.Stock); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domproduct.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

func isDuplicateEntry(err error) bool {
	var me *gomysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
