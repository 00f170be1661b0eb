package service

import (
	"context"

	"go.uber.org/zap"

	"restopos-order-service/internal/models"
	"restopos-order-service/internal/store"
)

// Purchases reconciles goods deliveries against purchase receipts. Received
// quantities are validated against the ordered lines before anything is
// written; the store re-checks the same bounds inside its transaction.
type Purchases struct {
	purchases PurchaseStore
	events    Events
	log       *zap.Logger
}

func NewPurchases(purchases PurchaseStore, events Events, log *zap.Logger) *Purchases {
	return &Purchases{purchases: purchases, events: events, log: log}
}

// Receive validates and applies a goods-received confirmation. A line that is
// negative, exceeds its ordered quantity, or names an unknown item rejects the
// whole call before any write, so a bad delivery slip can never move stock.
func (s *Purchases) Receive(ctx context.Context, purchaseID int64, received []store.ReceivedItem) (store.ReceiveResult, error) {
	if len(received) == 0 {
		return store.ReceiveResult{}, store.Invalid("no items to receive")
	}

	receipt, err := s.purchases.Get(ctx, purchaseID)
	if err != nil {
		return store.ReceiveResult{}, err
	}
	ordered := make(map[int64]int, len(receipt.Items))
	for _, item := range receipt.Items {
		ordered[item.ID] = item.Quantity
	}
	for _, line := range received {
		qty, ok := ordered[line.ItemID]
		if !ok {
			return store.ReceiveResult{}, store.Invalid("purchase order item %d not found", line.ItemID)
		}
		if line.ReceivedQuantity < 0 {
			return store.ReceiveResult{}, store.Invalid("received quantity cannot be negative for item %d", line.ItemID)
		}
		if line.ReceivedQuantity > qty {
			return store.ReceiveResult{}, store.Invalid("received quantity (%d) cannot exceed ordered quantity (%d) for item %d", line.ReceivedQuantity, qty, line.ItemID)
		}
	}

	result, err := s.purchases.ReceiveItems(ctx, purchaseID, received)
	if err != nil {
		return store.ReceiveResult{}, err
	}

	if s.events != nil {
		s.events.Publish(ctx, "purchase.received", map[string]any{
			"purchaseOrderId": purchaseID,
			"status":          result.Status,
		})
	}
	return result, nil
}

// Get returns the purchase receipt with its lines.
func (s *Purchases) Get(ctx context.Context, purchaseID int64) (models.PurchaseReceipt, error) {
	return s.purchases.Get(ctx, purchaseID)
}
