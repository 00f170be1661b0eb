package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"restopos-order-service/internal/models"
	"restopos-order-service/internal/utils"
)

type OrderStore struct {
	db DB
}

const orderColumns = `id, order_number, status, table_id, employee_id, customer_name, customer_count,
	subtotal, tax, discount, total, payment_method, payment_status, price_include_tax, sales_channel,
	notes, ordered_at, paid_at, served_at`

func scanOrder(row pgx.Row) (models.Order, error) {
	var (
		o             models.Order
		tableID       pgtype.Int8
		employeeID    pgtype.Int8
		customerName  pgtype.Text
		customerCount pgtype.Int4
		subtotal      pgtype.Numeric
		tax           pgtype.Numeric
		discount      pgtype.Numeric
		total         pgtype.Numeric
		paymentMethod pgtype.Text
		notes         pgtype.Text
		paidAt        pgtype.Timestamptz
		servedAt      pgtype.Timestamptz
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.Status, &tableID, &employeeID, &customerName, &customerCount,
		&subtotal, &tax, &discount, &total, &paymentMethod, &o.PaymentStatus, &o.PriceIncludeTax,
		&o.SalesChannel, &notes, &o.OrderedAt, &paidAt, &servedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Order{}, ErrNotFound
		}
		return models.Order{}, err
	}
	if tableID.Valid {
		o.TableID = &tableID.Int64
	}
	if employeeID.Valid {
		o.EmployeeID = &employeeID.Int64
	}
	if customerName.Valid {
		o.CustomerName = customerName.String
	}
	if customerCount.Valid {
		o.CustomerCount = int(customerCount.Int32)
	}
	o.Subtotal = utils.NumericToFloat64(subtotal)
	o.Tax = utils.NumericToFloat64(tax)
	o.Discount = utils.NumericToFloat64(discount)
	o.Total = utils.NumericToFloat64(total)
	if paymentMethod.Valid {
		o.PaymentMethod = &paymentMethod.String
	}
	if notes.Valid {
		o.Notes = &notes.String
	}
	if paidAt.Valid {
		o.PaidAt = &paidAt.Time
	}
	if servedAt.Valid {
		o.ServedAt = &servedAt.Time
	}
	return o, nil
}

// Create persists the order header and all items in one transaction so a
// partial failure can never leave a header without its lines. Amounts are
// written exactly as given; the caller owns the arithmetic.
func (s *OrderStore) Create(ctx context.Context, order models.Order, items []models.OrderItem) (models.Order, []models.OrderItem, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return models.Order{}, nil, fmt.Errorf("begin order create: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created, err := scanOrder(tx.QueryRow(ctx, `
		insert into orders (
			order_number, status, table_id, employee_id, customer_name, customer_count,
			subtotal, tax, discount, total, payment_method, payment_status,
			price_include_tax, sales_channel, notes, ordered_at
		)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15, now())
		returning `+orderColumns,
		order.OrderNumber, order.Status, order.TableID, order.EmployeeID,
		nullIfBlank(order.CustomerName), order.CustomerCount,
		order.Subtotal, order.Tax, order.Discount, order.Total,
		order.PaymentMethod, order.PaymentStatus, order.PriceIncludeTax,
		order.SalesChannel, order.Notes,
	))
	if err != nil {
		return models.Order{}, nil, err
	}

	inserted := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		var id int64
		if err := tx.QueryRow(ctx, `
			insert into order_items (order_id, product_id, quantity, unit_price, total, discount, notes)
			values ($1,$2,$3,$4,$5,$6,$7)
			returning id
		`, created.ID, item.ProductID, item.Quantity, item.UnitPrice, item.Total, item.Discount, item.Notes).Scan(&id); err != nil {
			return models.Order{}, nil, fmt.Errorf("insert order item for product %d: %w", item.ProductID, err)
		}
		item.ID = id
		item.OrderID = created.ID
		inserted = append(inserted, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Order{}, nil, err
	}
	return created, inserted, nil
}

func (s *OrderStore) Get(ctx context.Context, id int64) (models.Order, error) {
	return scanOrder(s.db.QueryRow(ctx, `select `+orderColumns+` from orders where id = $1`, id))
}

func (s *OrderStore) GetByNumber(ctx context.Context, number string) (models.Order, error) {
	return scanOrder(s.db.QueryRow(ctx, `select `+orderColumns+` from orders where order_number = $1`, number))
}

// List returns orders newest-first, optionally filtered. Read paths prefer an
// empty slice over an error.
func (s *OrderStore) List(ctx context.Context, status string, tableID *int64) ([]models.Order, error) {
	query := `select ` + orderColumns + ` from orders`
	args := []any{}
	where := ``
	if status != "" {
		args = append(args, status)
		where = fmt.Sprintf(" where status = $%d", len(args))
	}
	if tableID != nil {
		args = append(args, *tableID)
		if where == "" {
			where = fmt.Sprintf(" where table_id = $%d", len(args))
		} else {
			where += fmt.Sprintf(" and table_id = $%d", len(args))
		}
	}
	rows, err := s.db.Query(ctx, query+where+` order by ordered_at desc`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]models.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// SetStatus writes the new status; "paid" stamps paid_at once and keeps the
// original timestamp on repeated payment, "served" does the same for
// served_at. Returns ErrNotFound when the id does not resolve.
func (s *OrderStore) SetStatus(ctx context.Context, id int64, status string) (models.Order, error) {
	var stmt string
	switch status {
	case models.OrderPaid:
		stmt = `update orders set status = $2, payment_status = 'paid', paid_at = coalesce(paid_at, now()) where id = $1 returning ` + orderColumns
	case models.OrderServed:
		stmt = `update orders set status = $2, served_at = coalesce(served_at, now()) where id = $1 returning ` + orderColumns
	default:
		stmt = `update orders set status = $2 where id = $1 returning ` + orderColumns
	}
	return scanOrder(s.db.QueryRow(ctx, stmt, id, status))
}

// AddItems appends items to an existing order. Header totals are untouched;
// adjusting them is the caller's responsibility.
func (s *OrderStore) AddItems(ctx context.Context, orderID int64, items []models.OrderItem) ([]models.OrderItem, error) {
	if _, err := s.Get(ctx, orderID); err != nil {
		return nil, err
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inserted := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		var id int64
		if err := tx.QueryRow(ctx, `
			insert into order_items (order_id, product_id, quantity, unit_price, total, discount, notes)
			values ($1,$2,$3,$4,$5,$6,$7)
			returning id
		`, orderID, item.ProductID, item.Quantity, item.UnitPrice, item.Total, item.Discount, item.Notes).Scan(&id); err != nil {
			return nil, err
		}
		item.ID = id
		item.OrderID = orderID
		inserted = append(inserted, item)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return inserted, nil
}

// RemoveItem deletes a single line. Stock already deducted against the line
// is deliberately not credited back.
func (s *OrderStore) RemoveItem(ctx context.Context, itemID int64) (bool, error) {
	tag, err := s.db.Exec(ctx, `delete from order_items where id = $1`, itemID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Items returns the lines of one order in insertion order, joined with the
// product name and sku. Insertion order matters: discount allocation assigns
// the rounding remainder to the last line.
func (s *OrderStore) Items(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	rows, err := s.db.Query(ctx, `
		select oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price, oi.total, oi.discount, oi.notes,
		       coalesce(p.name, 'Unknown Product'), coalesce(p.sku, '')
		from order_items oi
		left join products p on p.id = oi.product_id
		where oi.order_id = $1
		order by oi.id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.OrderItem, 0)
	for rows.Next() {
		var (
			item      models.OrderItem
			unitPrice pgtype.Numeric
			total     pgtype.Numeric
			discount  pgtype.Numeric
			notes     pgtype.Text
		)
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &unitPrice, &total, &discount, &notes, &item.ProductName, &item.ProductSKU); err != nil {
			return nil, err
		}
		item.UnitPrice = utils.NumericToFloat64(unitPrice)
		item.Total = utils.NumericToFloat64(total)
		item.Discount = utils.NumericToFloat64(discount)
		if notes.Valid {
			item.Notes = &notes.String
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListOrderedBetween returns the orders placed inside [start, end], oldest
// first, for the reporting read side.
func (s *OrderStore) ListOrderedBetween(ctx context.Context, start, end time.Time) ([]models.Order, error) {
	rows, err := s.db.Query(ctx, `
		select `+orderColumns+` from orders
		where ordered_at >= $1 and ordered_at <= $2
		order by ordered_at
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]models.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ItemsForOrders batches the item lookup for a set of orders, keyed by order
// id, each order's lines in insertion order.
func (s *OrderStore) ItemsForOrders(ctx context.Context, orderIDs []int64) (map[int64][]models.OrderItem, error) {
	grouped := make(map[int64][]models.OrderItem)
	if len(orderIDs) == 0 {
		return grouped, nil
	}
	rows, err := s.db.Query(ctx, `
		select oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price, oi.total, oi.discount, oi.notes,
		       coalesce(p.name, 'Unknown Product'), coalesce(p.sku, '')
		from order_items oi
		left join products p on p.id = oi.product_id
		where oi.order_id = any($1)
		order by oi.order_id, oi.id
	`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item      models.OrderItem
			unitPrice pgtype.Numeric
			total     pgtype.Numeric
			discount  pgtype.Numeric
			notes     pgtype.Text
		)
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &unitPrice, &total, &discount, &notes, &item.ProductName, &item.ProductSKU); err != nil {
			return nil, err
		}
		item.UnitPrice = utils.NumericToFloat64(unitPrice)
		item.Total = utils.NumericToFloat64(total)
		item.Discount = utils.NumericToFloat64(discount)
		if notes.Valid {
			item.Notes = &notes.String
		}
		grouped[item.OrderID] = append(grouped[item.OrderID], item)
	}
	return grouped, rows.Err()
}

func nullIfBlank(value string) any {
	if value == "" {
		return nil
	}
	return value
}
