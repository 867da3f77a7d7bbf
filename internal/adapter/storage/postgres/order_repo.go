package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"producers-avenue/internal/core/domain"
	"producers-avenue/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderRepo implements ports.OrderRepository.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

const orderColumns = `id, buyer_id, status, payment_status, amount, provider_ref, created_at, updated_at`

// Create inserts an order and its line items within a database transaction,
// so a line item failure rolls the order back with it.
func (r *OrderRepo) Create(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	query := `INSERT INTO orders (id, buyer_id, status, payment_status, amount, provider_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		o.ID, o.BuyerID, o.Status, o.PaymentStatus, o.Amount,
		o.ProviderRef, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `INSERT INTO order_items (id, order_id, item_id, item_type, seller_id, price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i := range o.Items {
		it := &o.Items[i]
		_, err := tx.Exec(ctx, itemQuery,
			it.ID, it.OrderID, it.ItemID, it.ItemType, it.SellerID, it.Price, it.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

// GetByID fetches an order with its line items.
func (r *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	o, err := r.scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil || o == nil {
		return o, err
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// ListByProviderRef fetches every order tied to a payment provider reference.
// A multi-line checkout creates one order per cart line, all sharing the ref.
func (r *OrderRepo) ListByProviderRef(ctx context.Context, ref string) ([]domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE provider_ref = $1 ORDER BY created_at`, orderColumns)

	rows, err := r.pool.Query(ctx, query, ref)
	if err != nil {
		return nil, fmt.Errorf("list orders by provider ref: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := scanOrderFields(rows, &o); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// UpdateStatus updates an order's status within a database transaction.
func (r *OrderRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.OrderStatus) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`

	tag, err := tx.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order not found: %s", id)
	}
	return nil
}

// UpdatePaymentStatus updates an order's payment status within a database transaction.
func (r *OrderRepo) UpdatePaymentStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentStatus) error {
	query := `UPDATE orders SET payment_status = $1, updated_at = $2 WHERE id = $3`

	tag, err := tx.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order not found: %s", id)
	}
	return nil
}

// List fetches orders with filtering and pagination. AsSeller switches the
// view from orders the user bought to orders carrying one of their items.
func (r *OrderRepo) List(ctx context.Context, params ports.OrderListParams) ([]domain.Order, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.AsSeller {
		conditions = append(conditions, fmt.Sprintf(
			"id IN (SELECT order_id FROM order_items WHERE seller_id = $%d)", argIdx))
	} else {
		conditions = append(conditions, fmt.Sprintf("buyer_id = $%d", argIdx))
	}
	args = append(args, params.UserID)
	argIdx++

	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM orders %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := scanOrderFields(rows, &o); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, 0, err
		}
	}
	return orders, total, nil
}

// loadItems populates the order's line items.
func (r *OrderRepo) loadItems(ctx context.Context, o *domain.Order) error {
	query := `SELECT id, order_id, item_id, item_type, seller_id, price, quantity
		FROM order_items WHERE order_id = $1`

	rows, err := r.pool.Query(ctx, query, o.ID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		err := rows.Scan(&it.ID, &it.OrderID, &it.ItemID, &it.ItemType, &it.SellerID, &it.Price, &it.Quantity)
		if err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate order item rows: %w", err)
	}
	return nil
}

func (r *OrderRepo) scanOrder(row pgx.Row) (*domain.Order, error) {
	o := &domain.Order{}
	if err := scanOrderFields(row, o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return o, nil
}

func scanOrderFields(row pgx.Row, o *domain.Order) error {
	return row.Scan(
		&o.ID, &o.BuyerID, &o.Status, &o.PaymentStatus, &o.Amount,
		&o.ProviderRef, &o.CreatedAt, &o.UpdatedAt,
	)
}
