// Package service implements the order lifecycle and inventory-consistency
// engine on top of the per-entity stores. The stores are consumed through
// narrow interfaces so the business rules can be exercised against in-memory
// fakes.
package service

import (
	"context"
	"time"

	"restopos-order-service/internal/models"
	"restopos-order-service/internal/store"
)

type ProductStore interface {
	Get(ctx context.Context, id int64) (models.Product, error)
	AdjustStock(ctx context.Context, id int64, quantity int, mode string) (store.StockChange, error)
	UpdatePrices(ctx context.Context, id int64, price, beforeTax, afterTax float64, taxRate string, includesTax bool) (models.Product, error)
	Referenced(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
	Deactivate(ctx context.Context, id int64) (models.Product, error)
}

type InventoryStore interface {
	Append(ctx context.Context, entry models.InventoryTransaction) error
}

type OrderStore interface {
	Create(ctx context.Context, order models.Order, items []models.OrderItem) (models.Order, []models.OrderItem, error)
	Get(ctx context.Context, id int64) (models.Order, error)
	List(ctx context.Context, status string, tableID *int64) ([]models.Order, error)
	SetStatus(ctx context.Context, id int64, status string) (models.Order, error)
	AddItems(ctx context.Context, orderID int64, items []models.OrderItem) ([]models.OrderItem, error)
	RemoveItem(ctx context.Context, itemID int64) (bool, error)
	Items(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	ListOrderedBetween(ctx context.Context, start, end time.Time) ([]models.Order, error)
	ItemsForOrders(ctx context.Context, orderIDs []int64) (map[int64][]models.OrderItem, error)
}

type TableStore interface {
	SetStatus(ctx context.Context, id int64, status string) (models.Table, error)
	ReleaseIfIdle(ctx context.Context, tableID, excludeOrderID int64) (bool, error)
}

type SettingsStore interface {
	Get(ctx context.Context) (models.StoreSettings, error)
}

type ReceiptStore interface {
	Create(ctx context.Context, receipt models.Receipt, items []models.ReceiptItem) (models.Receipt, error)
}

type PurchaseStore interface {
	Get(ctx context.Context, id int64) (models.PurchaseReceipt, error)
	ReceiveItems(ctx context.Context, purchaseID int64, received []store.ReceivedItem) (store.ReceiveResult, error)
}

// Events receives fire-and-forget domain events (queue publish, websocket
// broadcast). Implementations must never block the calling operation on
// delivery problems.
type Events interface {
	Publish(ctx context.Context, routingKey string, payload any)
}

// StockOutcome is the result of one per-item stock decrement inside a larger
// write.
type StockOutcome struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	NewStock    int    `json:"newStock,omitempty"`
	Error       string `json:"error,omitempty"`
}

// StockSummary makes best-effort stock side effects visible to the caller
// instead of burying them in logs. A non-empty Failed list does not mean the
// enclosing sale failed.
type StockSummary struct {
	Applied []StockOutcome `json:"applied"`
	Failed  []StockOutcome `json:"failed"`
}
