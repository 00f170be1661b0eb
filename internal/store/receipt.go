package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"restopos-order-service/internal/models"
	"restopos-order-service/internal/utils"
)

// ReceiptStore records completed point-of-sale transactions. A receipt is
// written once with its items and never mutated afterwards.
type ReceiptStore struct {
	db DB
}

// Create inserts the receipt header and its items in one transaction and
// returns the header merged with the recorded items.
func (s *ReceiptStore) Create(ctx context.Context, receipt models.Receipt, items []models.ReceiptItem) (models.Receipt, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return models.Receipt{}, fmt.Errorf("begin receipt create: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.QueryRow(ctx, `
		insert into transactions (transaction_id, cashier_id, subtotal, tax, discount, total, payment_method, amount_received, change, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9, now())
		returning id, created_at
	`, receipt.ReceiptNumber, receipt.CashierID, receipt.Subtotal, receipt.Tax, receipt.Discount, receipt.Total,
		receipt.PaymentMethod, receipt.AmountReceived, receipt.Change,
	).Scan(&receipt.ID, &receipt.CreatedAt); err != nil {
		return models.Receipt{}, err
	}

	recorded := make([]models.ReceiptItem, 0, len(items))
	for _, item := range items {
		if err := tx.QueryRow(ctx, `
			insert into transaction_items (transaction_id, product_id, product_name, quantity, unit_price, total)
			values ($1,$2,$3,$4,$5,$6)
			returning id
		`, receipt.ID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice, item.Total).Scan(&item.ID); err != nil {
			return models.Receipt{}, fmt.Errorf("insert receipt item %s: %w", item.ProductName, err)
		}
		item.ReceiptID = receipt.ID
		recorded = append(recorded, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Receipt{}, err
	}
	receipt.Items = recorded
	return receipt, nil
}

func (s *ReceiptStore) Get(ctx context.Context, id int64) (models.Receipt, error) {
	return s.get(ctx, `where t.id = $1`, id)
}

func (s *ReceiptStore) GetByNumber(ctx context.Context, number string) (models.Receipt, error) {
	return s.get(ctx, `where t.transaction_id = $1`, number)
}

func (s *ReceiptStore) get(ctx context.Context, where string, arg any) (models.Receipt, error) {
	var (
		r              models.Receipt
		cashierID      pgtype.Int8
		subtotal       pgtype.Numeric
		tax            pgtype.Numeric
		discount       pgtype.Numeric
		total          pgtype.Numeric
		amountReceived pgtype.Numeric
		change         pgtype.Numeric
	)
	err := s.db.QueryRow(ctx, `
		select t.id, t.transaction_id, t.cashier_id, t.subtotal, t.tax, t.discount, t.total,
		       t.payment_method, t.amount_received, t.change, t.created_at
		from transactions t `+where, arg,
	).Scan(&r.ID, &r.ReceiptNumber, &cashierID, &subtotal, &tax, &discount, &total, &r.PaymentMethod, &amountReceived, &change, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Receipt{}, ErrNotFound
		}
		return models.Receipt{}, err
	}
	if cashierID.Valid {
		r.CashierID = &cashierID.Int64
	}
	r.Subtotal = utils.NumericToFloat64(subtotal)
	r.Tax = utils.NumericToFloat64(tax)
	r.Discount = utils.NumericToFloat64(discount)
	r.Total = utils.NumericToFloat64(total)
	if amountReceived.Valid {
		v := utils.NumericToFloat64(amountReceived)
		r.AmountReceived = &v
	}
	if change.Valid {
		v := utils.NumericToFloat64(change)
		r.Change = &v
	}

	rows, err := s.db.Query(ctx, `
		select id, transaction_id, product_id, product_name, quantity, unit_price, total
		from transaction_items
		where transaction_id = $1
		order by id
	`, r.ID)
	if err != nil {
		return models.Receipt{}, err
	}
	defer rows.Close()

	r.Items = make([]models.ReceiptItem, 0)
	for rows.Next() {
		var (
			item      models.ReceiptItem
			unitPrice pgtype.Numeric
			lineTotal pgtype.Numeric
		)
		if err := rows.Scan(&item.ID, &item.ReceiptID, &item.ProductID, &item.ProductName, &item.Quantity, &unitPrice, &lineTotal); err != nil {
			return models.Receipt{}, err
		}
		item.UnitPrice = utils.NumericToFloat64(unitPrice)
		item.Total = utils.NumericToFloat64(lineTotal)
		r.Items = append(r.Items, item)
	}
	return r, rows.Err()
}
