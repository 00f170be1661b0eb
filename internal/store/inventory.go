package store

import (
	"context"

	"restopos-order-service/internal/models"
)

// InventoryStore owns the append-only audit trail of stock mutations. Rows
// are never updated or deleted.
type InventoryStore struct {
	db DB
}

func (s *InventoryStore) Append(ctx context.Context, entry models.InventoryTransaction) error {
	_, err := s.db.Exec(ctx, `
		insert into inventory_transactions (product_id, type, quantity, previous_stock, new_stock, notes, created_at)
		values ($1,$2,$3,$4,$5,$6, now())
	`, entry.ProductID, entry.Type, entry.Quantity, entry.PreviousStock, entry.NewStock, entry.Notes)
	return err
}

func (s *InventoryStore) ListByProduct(ctx context.Context, productID int64) ([]models.InventoryTransaction, error) {
	rows, err := s.db.Query(ctx, `
		select id, product_id, type, quantity, previous_stock, new_stock, notes, created_at
		from inventory_transactions
		where product_id = $1
		order by created_at desc
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.InventoryTransaction, 0)
	for rows.Next() {
		var e models.InventoryTransaction
		if err := rows.Scan(&e.ID, &e.ProductID, &e.Type, &e.Quantity, &e.PreviousStock, &e.NewStock, &e.Notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
