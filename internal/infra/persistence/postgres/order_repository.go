package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domcart "example.com/pos-scanner/internal/domain/cart"
	domorder "example.com/pos-scanner/internal/domain/order"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) CreateFromCart(ctx context.Context, snapshot domcart.Snapshot) (*domorder.Order, error) {
	if snapshot.IsEmpty() {
		return nil, domorder.ErrEmptyOrderItems
	}

	var orderID int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
            INSERT INTO orders (total_amount) VALUES ($1)
            RETURNING id
        `, snapshot.Total()).Scan(&orderID); err != nil {
			return err
		}

		for _, item := range snapshot.Items() {
			var productID int64
			err := tx.QueryRow(ctx, `
                SELECT id FROM products
                WHERE barcode = $1
                FOR UPDATE
            `, item.Barcode).Scan(&productID)
			if errors.Is(err, pgx.ErrNoRows) {
				return domorder.ErrCheckoutValidation
			}
			if err != nil {
				return err
			}

			if _, err := tx.Exec(ctx, `
                INSERT INTO order_items (order_id, product_id, barcode, product_name, unit_price, quantity, line_total)
                VALUES ($1, $2, $3, $4, $5, $6, $7)
            `, orderID, productID, item.Barcode, item.Name, item.UnitPrice, item.Quantity, item.LineTotal()); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `
                UPDATE products SET stock = stock - $1
                WHERE id = $2
            `, item.Quantity, productID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
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
        WHERE created_at >= $1 AND created_at < $2
        ORDER BY id DESC
    `, from, to)
}

func (r *OrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*domorder.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domorder.Order, error) {
		var o domorder.Order
		err := row.Scan(&o.ID, &o.TotalAmount, &o.CreatedAt)
		return &o, err
	})
	if err != nil {
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
	var o domorder.Order
	err := r.pool.QueryRow(ctx, `
        SELECT id, total_amount, created_at
        FROM orders WHERE id = $1
    `, id).Scan(&o.ID, &o.TotalAmount, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
	rows, err := r.pool.Query(ctx, `
        SELECT id, order_id, product_id, barcode, product_name, unit_price, quantity, line_total
        FROM order_items WHERE order_id = $1
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
