package postgres

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/merchkit/order-service/internal/domain/order"
)

const orderColumns = `id, description, order_date, amount, total_amount, discount,
	address, payment, status, customer_id, coupon_code, tracking_id, version`

const (
	getByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	getByTrackingSQL = `SELECT ` + orderColumns + ` FROM orders WHERE tracking_id = $1`

	// Most recent order wins when a customer has several in the same status.
	getByCustomerAndStatusSQL = `SELECT ` + orderColumns + ` FROM orders
	WHERE customer_id = $1 AND status = $2
	ORDER BY order_date DESC, id DESC
	LIMIT 1`

	listByCustomerAndStatusInSQL = `SELECT ` + orderColumns + ` FROM orders
	WHERE customer_id = $1 AND status = ANY($2)
	ORDER BY order_date DESC, id DESC`

	listByStatusInSQL = `SELECT ` + orderColumns + ` FROM orders
	WHERE status = ANY($1)
	ORDER BY order_date DESC, id DESC`

	countByStatusSQL = `SELECT count(*) FROM orders WHERE status = $1`

	listByDateRangeAndStatusSQL = `SELECT ` + orderColumns + ` FROM orders
	WHERE order_date BETWEEN $1 AND $2 AND status = $3
	ORDER BY order_date, id`

	createOrderSQL = `INSERT INTO orders
	(description, order_date, amount, total_amount, discount,
	 address, payment, status, customer_id, coupon_code, tracking_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING id, version`

	updateOrderSQL = `UPDATE orders SET
	description = $2, order_date = $3, amount = $4, total_amount = $5,
	discount = $6, address = $7, payment = $8, status = $9,
	customer_id = $10, coupon_code = $11, version = version + 1
	WHERE id = $1 AND version = $12
	RETURNING version`

	orderExistsSQL = `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// GetByID fetches an order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %d", id)
	}
	return o, nil
}

// GetByTracking fetches an order by its tracking identifier.
func (r *OrderRepository) GetByTracking(ctx context.Context, trackingID uuid.UUID) (*order.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, getByTrackingSQL, trackingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order by tracking %s", trackingID)
	}
	return o, nil
}

// GetByCustomerAndStatus fetches the customer's most recent order in the
// given status.
func (r *OrderRepository) GetByCustomerAndStatus(ctx context.Context, customerID int64, status order.Status) (*order.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, getByCustomerAndStatusSQL, customerID, string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order for customer %d in %s", customerID, status)
	}
	return o, nil
}

// ListByCustomerAndStatusIn lists the customer's orders whose status is in
// the given set, newest first.
func (r *OrderRepository) ListByCustomerAndStatusIn(ctx context.Context, customerID int64, statuses []order.Status) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listByCustomerAndStatusInSQL, customerID, statusLabels(statuses))
	if err != nil {
		return nil, errors.Wrapf(err, "list orders for customer %d", customerID)
	}
	return collectOrders(rows)
}

// ListByStatusIn lists every order whose status is in the given set, newest
// first.
func (r *OrderRepository) ListByStatusIn(ctx context.Context, statuses []order.Status) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listByStatusInSQL, statusLabels(statuses))
	if err != nil {
		return nil, errors.Wrap(err, "list orders by status")
	}
	return collectOrders(rows)
}

// CountByStatus counts all orders currently in the given status.
func (r *OrderRepository) CountByStatus(ctx context.Context, status order.Status) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, countByStatusSQL, string(status)).Scan(&n); err != nil {
		return 0, errors.Wrapf(err, "count %s orders", status)
	}
	return n, nil
}

// ListByDateRangeAndStatus lists orders of the given status dated within
// [start, end], both bounds inclusive.
func (r *OrderRepository) ListByDateRangeAndStatus(ctx context.Context, start, end time.Time, status order.Status) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listByDateRangeAndStatusSQL, start, end, string(status))
	if err != nil {
		return nil, errors.Wrap(err, "list orders by date range")
	}
	return collectOrders(rows)
}

// Create inserts a new order and fills in the assigned id and version.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	err := r.pool.QueryRow(ctx, createOrderSQL,
		o.Description, o.OrderDate, o.Amount, o.TotalAmount, o.Discount,
		o.Address, o.Payment, string(o.Status), o.CustomerID, o.CouponCode, o.TrackingID,
	).Scan(&o.ID, &o.Version)
	if err != nil {
		return errors.Wrap(err, "insert order")
	}
	return nil
}

// Update replaces every mutable column, guarded by the optimistic version.
// The new version is written back into o on success.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	err := r.pool.QueryRow(ctx, updateOrderSQL,
		o.ID, o.Description, o.OrderDate, o.Amount, o.TotalAmount,
		o.Discount, o.Address, o.Payment, string(o.Status),
		o.CustomerID, o.CouponCode, o.Version,
	).Scan(&o.Version)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return errors.Wrapf(err, "update order %d", o.ID)
	}

	// No row matched: either the order is gone or the version is stale.
	var exists bool
	if err := r.pool.QueryRow(ctx, orderExistsSQL, o.ID).Scan(&exists); err != nil {
		return errors.Wrapf(err, "check order %d", o.ID)
	}
	if !exists {
		return order.ErrNotFound
	}
	return order.ErrVersionConflict
}

// scanOrder reads one order row. The row must carry orderColumns in order.
func scanOrder(row pgx.Row) (*order.Order, error) {
	var o order.Order
	var status string
	err := row.Scan(
		&o.ID, &o.Description, &o.OrderDate, &o.Amount, &o.TotalAmount,
		&o.Discount, &o.Address, &o.Payment, &status, &o.CustomerID,
		&o.CouponCode, &o.TrackingID, &o.Version,
	)
	if err != nil {
		return nil, err
	}
	o.Status = order.Status(status)
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]order.Order, error) {
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate orders")
	}
	return orders, nil
}

func statusLabels(statuses []order.Status) []string {
	labels := make([]string, len(statuses))
	for i, s := range statuses {
		labels[i] = string(s)
	}
	return labels
}
