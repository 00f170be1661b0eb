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

type PurchaseStore struct {
	db DB
}

// ReceivedItem is one line of a goods-received confirmation.
type ReceivedItem struct {
	ItemID           int64 `json:"id"`
	ReceivedQuantity int   `json:"receivedQuantity"`
}

// ReceiveResult reports the purchase receipt status after reconciliation.
type ReceiveResult struct {
	Status string `json:"status"`
}

func (s *PurchaseStore) Get(ctx context.Context, id int64) (models.PurchaseReceipt, error) {
	var (
		receipt      models.PurchaseReceipt
		supplierID   pgtype.Int8
		deliveryDate pgtype.Timestamptz
	)
	err := s.db.QueryRow(ctx, `
		select id, receipt_number, supplier_id, status, actual_delivery_date
		from purchase_receipts where id = $1
	`, id).Scan(&receipt.ID, &receipt.ReceiptNumber, &supplierID, &receipt.Status, &deliveryDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.PurchaseReceipt{}, ErrNotFound
		}
		return models.PurchaseReceipt{}, err
	}
	if supplierID.Valid {
		receipt.SupplierID = &supplierID.Int64
	}
	if deliveryDate.Valid {
		receipt.ActualDeliveryDate = &deliveryDate.Time
	}

	rows, err := s.db.Query(ctx, `
		select id, purchase_receipt_id, product_id, product_name, quantity, received_quantity, unit_price, total
		from purchase_receipt_items
		where purchase_receipt_id = $1
		order by id
	`, id)
	if err != nil {
		return models.PurchaseReceipt{}, err
	}
	defer rows.Close()

	receipt.Items = make([]models.PurchaseReceiptItem, 0)
	for rows.Next() {
		var (
			item      models.PurchaseReceiptItem
			productID pgtype.Int8
			unitPrice pgtype.Numeric
			total     pgtype.Numeric
		)
		if err := rows.Scan(&item.ID, &item.PurchaseReceiptID, &productID, &item.ProductName, &item.Quantity, &item.ReceivedQuantity, &unitPrice, &total); err != nil {
			return models.PurchaseReceipt{}, err
		}
		if productID.Valid {
			item.ProductID = &productID.Int64
		}
		item.UnitPrice = utils.NumericToFloat64(unitPrice)
		item.Total = utils.NumericToFloat64(total)
		receipt.Items = append(receipt.Items, item)
	}
	return receipt, rows.Err()
}

// ReceiveItems reconciles a goods delivery against a purchase receipt in one
// transaction: validate and store received quantities, add the received delta
// to tracked product stock with an audit row, then recompute the receipt
// status from all its lines.
func (s *PurchaseStore) ReceiveItems(ctx context.Context, purchaseID int64, received []ReceivedItem) (ReceiveResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return ReceiveResult{}, fmt.Errorf("begin receive: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, line := range received {
		var (
			ordered   int
			prevRecvd int
			productID pgtype.Int8
			unitPrice pgtype.Numeric
		)
		err := tx.QueryRow(ctx, `
			select quantity, received_quantity, product_id, unit_price
			from purchase_receipt_items
			where id = $1 and purchase_receipt_id = $2
		`, line.ItemID, purchaseID).Scan(&ordered, &prevRecvd, &productID, &unitPrice)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ReceiveResult{}, Invalid("purchase order item %d not found", line.ItemID)
			}
			return ReceiveResult{}, err
		}

		if line.ReceivedQuantity < 0 {
			return ReceiveResult{}, Invalid("received quantity cannot be negative for item %d", line.ItemID)
		}
		if line.ReceivedQuantity > ordered {
			return ReceiveResult{}, Invalid("received quantity (%d) cannot exceed ordered quantity (%d) for item %d", line.ReceivedQuantity, ordered, line.ItemID)
		}

		if _, err := tx.Exec(ctx, `
			update purchase_receipt_items set received_quantity = $2 where id = $1
		`, line.ItemID, line.ReceivedQuantity); err != nil {
			return ReceiveResult{}, err
		}

		delta := line.ReceivedQuantity - prevRecvd
		if !productID.Valid || delta <= 0 {
			continue
		}

		var prevStock int
		var tracked bool
		if err := tx.QueryRow(ctx, `select stock, track_inventory from products where id = $1`, productID.Int64).Scan(&prevStock, &tracked); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return ReceiveResult{}, err
		}
		if !tracked {
			continue
		}
		if _, err := tx.Exec(ctx, `update products set stock = stock + $2 where id = $1`, productID.Int64, delta); err != nil {
			return ReceiveResult{}, err
		}
		if _, err := tx.Exec(ctx, `
			insert into inventory_transactions (product_id, type, quantity, previous_stock, new_stock, notes, created_at)
			values ($1,'add',$2,$3,$4,$5, now())
		`, productID.Int64, delta, prevStock, prevStock+delta,
			fmt.Sprintf("Received %d units from purchase order %d", delta, purchaseID)); err != nil {
			return ReceiveResult{}, err
		}
	}

	// Recompute the receipt status from every line, not just the ones that
	// changed in this call.
	var fullyReceived, partiallyReceived bool
	if err := tx.QueryRow(ctx, `
		select coalesce(bool_and(received_quantity >= quantity), false), coalesce(bool_or(received_quantity > 0), false)
		from purchase_receipt_items
		where purchase_receipt_id = $1
	`, purchaseID).Scan(&fullyReceived, &partiallyReceived); err != nil {
		return ReceiveResult{}, err
	}

	status := models.PurchasePending
	if fullyReceived {
		status = models.PurchaseReceived
	} else if partiallyReceived {
		status = models.PurchasePartiallyReceived
	}

	tag, err := tx.Exec(ctx, `
		update purchase_receipts
		set status = $2,
		    actual_delivery_date = case when $3 then now() else null end
		where id = $1
	`, purchaseID, status, fullyReceived)
	if err != nil {
		return ReceiveResult{}, err
	}
	if tag.RowsAffected() == 0 {
		return ReceiveResult{}, ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return ReceiveResult{}, err
	}
	return ReceiveResult{Status: status}, nil
}
