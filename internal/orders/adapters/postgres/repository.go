package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/domain"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orderColumns = `
	id, order_number, user_id, items, shipping_address, payment_method,
	items_price, tax_price, shipping_price, discount_amount, total_price,
	is_paid, paid_at, payment_result, gateway_order_id,
	status, shipped_at, delivered_at, cancelled_at,
	refund, shipment, created_at, updated_at
`

func (r *Repository) Create(ctx context.Context, order domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("encode order items: %w", err)
	}
	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("encode shipping address: %w", err)
	}

	query := `
		INSERT INTO orders (
			id, order_number, user_id, items, shipping_address, payment_method,
			items_price, tax_price, shipping_price, discount_amount, total_price,
			is_paid, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = r.pool.Exec(ctx, query,
		order.ID,
		order.OrderNumber,
		order.UserID,
		items,
		address,
		order.PaymentMethod,
		order.ItemsPrice,
		order.TaxPrice,
		order.ShippingPrice,
		order.DiscountAmount,
		order.TotalPrice,
		order.IsPaid,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *Repository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE gateway_order_id = $1`
	return r.getOne(ctx, query, gatewayOrderID)
}

func (r *Repository) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_result->>'payment_id' = $1`
	return r.getOne(ctx, query, paymentID)
}

func (r *Repository) getOne(ctx context.Context, query string, arg any) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}
	return order, nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR user_id = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	var statusFilter *string
	if filter.Status != nil {
		s := string(*filter.Status)
		statusFilter = &s
	}
	var userFilter *string
	if filter.UserID != "" {
		u := filter.UserID
		userFilter = &u
	}

	offset := (page - 1) * pageSize

	rows, err := r.pool.Query(ctx, query, statusFilter, userFilter, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (r *Repository) NextOrderSequence(ctx context.Context, day time.Time) (int64, error) {
	query := `
		INSERT INTO order_counters (day, seq)
		VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET seq = order_counters.seq + 1
		RETURNING seq
	`

	var seq int64
	if err := r.pool.QueryRow(ctx, query, day.UTC().Truncate(24*time.Hour)).Scan(&seq); err != nil {
		return 0, fmt.Errorf("advance order counter: %w", err)
	}
	return seq, nil
}

func (r *Repository) BindPaymentIntent(ctx context.Context, orderID, gatewayOrderID string) error {
	query := `
		UPDATE orders
		SET gateway_order_id = $2, updated_at = now()
		WHERE id = $1 AND is_paid = FALSE AND gateway_order_id IS NULL
	`

	result, err := r.pool.Exec(ctx, query, orderID, gatewayOrderID)
	if err != nil {
		return fmt.Errorf("bind payment intent: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	order, err := r.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.IsPaid {
		return ports.ErrAlreadyPaid
	}
	return ports.ErrIntentExists
}

// MarkPaid is the single at-most-once guard shared by both confirmation
// paths: the update only applies while is_paid is still false.
func (r *Repository) MarkPaid(ctx context.Context, orderID string, result domain.PaymentResult, paidAt time.Time) error {
	payment, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode payment result: %w", err)
	}

	query := `
		UPDATE orders
		SET is_paid = TRUE,
		    paid_at = $2,
		    payment_result = $3,
		    gateway_order_id = COALESCE(gateway_order_id, NULLIF($4, '')),
		    status = CASE WHEN status = 'pending' THEN 'processing' ELSE status END,
		    updated_at = now()
		WHERE id = $1 AND is_paid = FALSE
	`

	tag, err := r.pool.Exec(ctx, query, orderID, paidAt, payment, result.GatewayOrderID)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, orderID); err != nil {
		return err
	}
	return ports.ErrAlreadyPaid
}

func (r *Repository) RecordPaymentFailure(ctx context.Context, orderID string, result domain.PaymentResult) error {
	payment, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode payment result: %w", err)
	}

	query := `
		UPDATE orders
		SET payment_result = $2,
		    status = 'cancelled',
		    cancelled_at = now(),
		    updated_at = now()
		WHERE id = $1
		  AND is_paid = FALSE
		  AND status NOT IN ('delivered', 'cancelled', 'refunded')
	`

	tag, err := r.pool.Exec(ctx, query, orderID, payment)
	if err != nil {
		return fmt.Errorf("record payment failure: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Settled orders swallow late failure events.
	_, err = r.GetByID(ctx, orderID)
	return err
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $2,
		    shipped_at = CASE WHEN $2 = 'shipped' THEN now() ELSE shipped_at END,
		    delivered_at = CASE WHEN $2 = 'delivered' THEN now() ELSE delivered_at END,
		    cancelled_at = CASE WHEN $2 = 'cancelled' THEN now() ELSE cancelled_at END,
		    updated_at = now()
		WHERE id = $1
		  AND (status NOT IN ('delivered', 'cancelled', 'refunded') OR status = $2)
	`

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ports.ErrInvalidState
}

func (r *Repository) SetRefund(ctx context.Context, id string, refund domain.Refund) error {
	encoded, err := json.Marshal(refund)
	if err != nil {
		return fmt.Errorf("encode refund: %w", err)
	}

	query := `
		UPDATE orders
		SET refund = $2, updated_at = now()
		WHERE id = $1
		  AND ($3 <> 'completed' OR refund IS NULL OR refund->>'status' IS DISTINCT FROM 'completed')
	`

	tag, err := r.pool.Exec(ctx, query, id, encoded, string(refund.Status))
	if err != nil {
		return fmt.Errorf("set refund: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ports.ErrInvalidState
}

func (r *Repository) SetShipment(ctx context.Context, id string, shipment domain.Shipment) error {
	encoded, err := json.Marshal(shipment)
	if err != nil {
		return fmt.Errorf("encode shipment: %w", err)
	}

	query := `UPDATE orders SET shipment = $2, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, encoded)
	if err != nil {
		return fmt.Errorf("set shipment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) ListOpenShipments(ctx context.Context) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE shipment IS NOT NULL
		  AND status NOT IN ('delivered', 'cancelled', 'refunded')
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query open shipments: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order          domain.Order
		items          []byte
		address        []byte
		paymentResult  []byte
		refund         []byte
		shipment       []byte
		gatewayOrderID *string
	)

	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.UserID,
		&items,
		&address,
		&order.PaymentMethod,
		&order.ItemsPrice,
		&order.TaxPrice,
		&order.ShippingPrice,
		&order.DiscountAmount,
		&order.TotalPrice,
		&order.IsPaid,
		&order.PaidAt,
		&paymentResult,
		&gatewayOrderID,
		&order.Status,
		&order.ShippedAt,
		&order.DeliveredAt,
		&order.CancelledAt,
		&refund,
		&shipment,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	if err := json.Unmarshal(address, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode shipping address: %w", err)
	}
	if len(paymentResult) > 0 {
		order.PaymentResult = &domain.PaymentResult{}
		if err := json.Unmarshal(paymentResult, order.PaymentResult); err != nil {
			return nil, fmt.Errorf("decode payment result: %w", err)
		}
	}
	if len(refund) > 0 {
		order.Refund = &domain.Refund{}
		if err := json.Unmarshal(refund, order.Refund); err != nil {
			return nil, fmt.Errorf("decode refund: %w", err)
		}
	}
	if len(shipment) > 0 {
		order.Shipment = &domain.Shipment{}
		if err := json.Unmarshal(shipment, order.Shipment); err != nil {
			return nil, fmt.Errorf("decode shipment: %w", err)
		}
	}
	if gatewayOrderID != nil {
		order.GatewayOrderID = *gatewayOrderID
	}

	return &order, nil
}
