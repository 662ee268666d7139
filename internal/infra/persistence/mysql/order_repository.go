package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domcart "example.com/pos-scanner/internal/domain/cart"
	domorder "example.com/pos-scanner/internal/domain/order"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) CreateFromCart(ctx context.Context, snapshot domcart.Snapshot) (_ *domorder.Order, retErr error) {
	if snapshot.IsEmpty() {
		return nil, domorder.ErrEmptyOrderItems
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
        INSERT INTO orders (total_amount) VALUES (?)
    `, snapshot.Total())
	if err != nil {
		retErr = err
		return nil, retErr
	}
	orderID, _ := res.LastInsertId()

	for _, item := range snapshot.Items() {
		var productID int64
		row := tx.QueryRowContext(ctx, `
            SELECT id FROM products
            WHERE barcode = ?
            FOR UPDATE
        `, item.Barcode)
		if err = row.Scan(&productID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				retErr = domorder.ErrCheckoutValidation
				return nil, retErr
			}
			retErr = err
			return nil, retErr
		}

		_, err = tx.ExecContext(ctx, `
            INSERT INTO order_items (order_id, product_id, barcode, product_name, unit_price, quantity, line_total)
            VALUES (?, ?, ?, ?, ?, ?, ?)
        `, orderID, productID, item.Barcode, item.Name, item.UnitPrice, item.Quantity, item.LineTotal())
		if err != nil {
			retErr = err
			return nil, retErr
		}
		_, err = tx.ExecContext(ctx, `
            UPDATE products SET stock = stock - ?
            WHERE id = ?
        `, item.Quantity, productID)
		if err != nil {
			retErr = err
			return nil, retErr
		}
	}

	if err = tx.Commit(); err != nil {
		retErr = err
		return nil, retErr
	}

	return r.GetByID(ctx, orderID)
}

func (r *OrderRepository) List(ctx context.Context) ([]*domorder.Order, error) {
	return r.queryOrders(ctx, `
        SELECT id, total_amount, created_at
        FROM orders
        ORDER BY id DESC
    `)
}

// ListBetween returns orders created in [from, to), newest first.
func (r *OrderRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*domorder.Order, error) {
	return r.queryOrders(ctx, `
        SELECT id, total_amount, created_at
        FROM orders
        WHERE created_at >= ? AND created_at < ?
        ORDER BY id DESC
    `, from, to)
}

func (r *OrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*domorder.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domorder.Order
	for rows.Next() {
		var o domorder.Order
		if err := rows.Scan(&o.ID, &o.TotalAmount, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range orders {
		items, err := r.listOrderItems(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		o.Items = items
	}
	return orders, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domorder.Order, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, total_amount, created_at
        FROM orders WHERE id = ?
    `, id)

	var o domorder.Order
	if err := row.Scan(&o.ID, &o.TotalAmount, &o.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domorder.ErrOrderNotFound
		}
		return nil, err
	}
	items, err := r.listOrderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *OrderRepository) listOrderItems(ctx context.Context, orderID int64) ([]domorder.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, order_id, product_id, barcode, product_name, unit_price, quantity, line_total
        FROM order_items WHERE order_id = ?
        ORDER BY id
    `, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domorder.OrderItem
	for rows.Next() {
		var item domorder.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Barcode, &item.Name, &item.Price, &item.Quantity, &item.Total); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
