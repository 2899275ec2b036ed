package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Harshwardhan-rawani/ShopEZ/internal/domain"
	"github.com/Harshwardhan-rawani/ShopEZ/internal/repository"
	"github.com/Harshwardhan-rawani/ShopEZ/pkg/database"
	apperrors "github.com/Harshwardhan-rawani/ShopEZ/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts a new order and its items atomically within a transaction.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var shippingJSON []byte
	if o.ShippingInfo != nil {
		shippingJSON, err = json.Marshal(o.ShippingInfo)
		if err != nil {
			return fmt.Errorf("marshal shipping info: %w", err)
		}
	}

	orderQuery := `
		INSERT INTO orders (id, user_id, status, payment_status, shipping_info, shipping_method, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = tx.Exec(ctx, orderQuery,
		o.ID,
		o.UserID,
		o.Status,
		o.PaymentStatus,
		shippingJSON,
		o.ShippingMethod,
		o.Total,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, name, image, price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Name,
			item.Image,
			item.Price,
			item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// orderItemsAgg aggregates an order's line items into a JSONB array so order
// and items come back in one query instead of two.
const orderItemsAgg = `
	COALESCE(
		JSONB_AGG(
			JSONB_BUILD_OBJECT(
				'id', oi.id,
				'order_id', oi.order_id,
				'product_id', oi.product_id,
				'name', oi.name,
				'image', oi.image,
				'price', oi.price,
				'quantity', oi.quantity
			) ORDER BY oi.id
		) FILTER (WHERE oi.id IS NOT NULL),
		'[]'::jsonb
	)`

// GetByID retrieves an order by its ID, eagerly loading its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := fmt.Sprintf(`
		SELECT o.id, o.user_id, o.status, o.payment_status, o.shipping_info,
		       o.shipping_method, o.total, o.created_at, o.updated_at,
		       %s AS items
		FROM orders o
		LEFT JOIN order_items oi ON o.id = oi.order_id
		WHERE o.id = $1
		GROUP BY o.id`, orderItemsAgg)

	var (
		o            domain.Order
		shippingJSON []byte
		itemsJSON    []byte
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.PaymentStatus,
		&shippingJSON,
		&o.ShippingMethod,
		&o.Total,
		&o.CreatedAt,
		&o.UpdatedAt,
		&itemsJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if err := unmarshalOrderParts(&o, shippingJSON, itemsJSON); err != nil {
		return nil, err
	}

	return &o, nil
}

// GetWithCustomer retrieves an order joined with the purchaser's partial user
// projection. Customer is nil for guest orders.
func (r *OrderRepository) GetWithCustomer(ctx context.Context, id string) (*repository.OrderWithCustomer, error) {
	query := fmt.Sprintf(`
		SELECT o.id, o.user_id, o.status, o.payment_status, o.shipping_info,
		       o.shipping_method, o.total, o.created_at, o.updated_at,
		       u.first_name, u.last_name, u.email, u.phone, u.created_at,
		       %s AS items
		FROM orders o
		LEFT JOIN users u ON o.user_id = u.id
		LEFT JOIN order_items oi ON o.id = oi.order_id
		WHERE o.id = $1
		GROUP BY o.id, u.first_name, u.last_name, u.email, u.phone, u.created_at`, orderItemsAgg)

	var (
		o            domain.Order
		shippingJSON []byte
		itemsJSON    []byte
		firstName    *string
		lastName     *string
		email        *string
		phone        *string
		userCreated  *time.Time
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.PaymentStatus,
		&shippingJSON,
		&o.ShippingMethod,
		&o.Total,
		&o.CreatedAt,
		&o.UpdatedAt,
		&firstName,
		&lastName,
		&email,
		&phone,
		&userCreated,
		&itemsJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("scan order with customer: %w", err)
	}

	if err := unmarshalOrderParts(&o, shippingJSON, itemsJSON); err != nil {
		return nil, err
	}

	return &repository.OrderWithCustomer{
		Order:    o,
		Customer: buildCustomerSummary(firstName, lastName, email, phone, userCreated),
	}, nil
}

// List returns orders matching the filter with the total count, newest first,
// each joined with the purchaser projection.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]repository.OrderWithCustomer, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("o.user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}

	if filter.SellerProductIDs != nil {
		// An order qualifies for a seller when at least one line item
		// references one of the seller's products.
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM order_items si WHERE si.order_id = o.id AND si.product_id = ANY($%d))", argIndex))
		args = append(args, filter.SellerProductIDs)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT o.id, o.user_id, o.status, o.payment_status, o.shipping_info,
		       o.shipping_method, o.total, o.created_at, o.updated_at,
		       u.first_name, u.last_name, u.email, u.phone, u.created_at,
		       count(*) OVER() AS total_count
		FROM orders o
		LEFT JOIN users u ON o.user_id = u.id
		%s
		ORDER BY o.created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var totalCount int
	orders := []repository.OrderWithCustomer{}

	for rows.Next() {
		var (
			o            domain.Order
			shippingJSON []byte
			firstName    *string
			lastName     *string
			email        *string
			phone        *string
			userCreated  *time.Time
		)

		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.Status,
			&o.PaymentStatus,
			&shippingJSON,
			&o.ShippingMethod,
			&o.Total,
			&o.CreatedAt,
			&o.UpdatedAt,
			&firstName,
			&lastName,
			&email,
			&phone,
			&userCreated,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}

		if err := unmarshalOrderParts(&o, shippingJSON, nil); err != nil {
			return nil, 0, err
		}

		orders = append(orders, repository.OrderWithCustomer{
			Order:    o,
			Customer: buildCustomerSummary(firstName, lastName, email, phone, userCreated),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	// Batch-load items for all orders in a single query to avoid N+1.
	if len(orders) > 0 {
		orderIDs := make([]string, len(orders))
		for i := range orders {
			orderIDs[i] = orders[i].Order.ID
		}

		itemsQuery := `
			SELECT id, order_id, product_id, name, image, price, quantity
			FROM order_items
			WHERE order_id = ANY($1)
			ORDER BY id`

		itemRows, err := r.pool.Query(ctx, itemsQuery, orderIDs)
		if err != nil {
			return nil, 0, fmt.Errorf("batch load order items: %w", err)
		}
		defer itemRows.Close()

		itemsByOrderID := make(map[string][]domain.OrderItem, len(orders))
		for itemRows.Next() {
			var item domain.OrderItem
			if err := itemRows.Scan(
				&item.ID,
				&item.OrderID,
				&item.ProductID,
				&item.Name,
				&item.Image,
				&item.Price,
				&item.Quantity,
			); err != nil {
				return nil, 0, fmt.Errorf("scan order item: %w", err)
			}
			itemsByOrderID[item.OrderID] = append(itemsByOrderID[item.OrderID], item)
		}
		if err := itemRows.Err(); err != nil {
			return nil, 0, fmt.Errorf("iterate batch order item rows: %w", err)
		}

		for i := range orders {
			if items, ok := itemsByOrderID[orders[i].Order.ID]; ok {
				orders[i].Order.Items = items
			} else {
				orders[i].Order.Items = []domain.OrderItem{}
			}
		}
	}

	return orders, totalCount, nil
}

// UpdateStatus sets the status of an order. Any enum member is accepted as a
// target regardless of the current status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3`

	ct, err := r.pool.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

func unmarshalOrderParts(o *domain.Order, shippingJSON, itemsJSON []byte) error {
	if len(shippingJSON) > 0 && string(shippingJSON) != "null" {
		var info domain.ShippingInfo
		if err := json.Unmarshal(shippingJSON, &info); err != nil {
			return fmt.Errorf("unmarshal shipping info: %w", err)
		}
		o.ShippingInfo = &info
	}

	if itemsJSON != nil {
		o.Items = []domain.OrderItem{}
		if string(itemsJSON) != "null" && string(itemsJSON) != "[]" {
			if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
				return fmt.Errorf("unmarshal order items: %w", err)
			}
		}
	}

	return nil
}

func buildCustomerSummary(firstName, lastName, email, phone *string, createdAt *time.Time) *domain.CustomerSummary {
	if email == nil && firstName == nil && lastName == nil {
		return nil
	}

	u := domain.User{
		FirstName: derefString(firstName),
		LastName:  derefString(lastName),
		Email:     derefString(email),
		Phone:     derefString(phone),
	}
	if createdAt != nil {
		u.CreatedAt = *createdAt
	}

	summary := u.Summary()
	return &summary
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
