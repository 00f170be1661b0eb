package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"restopos-order-service/internal/models"
	"restopos-order-service/internal/store"
)

// stockDeductionNote is the audit note attached to every sale-driven
// decrement.
const stockDeductionNote = "Stock deduction from sale"

// tempOrderPrefix marks client-side optimistic order ids that were never
// persisted. Status updates against them must succeed without touching
// storage so dependent invoice flows can proceed.
const tempOrderPrefix = "temp-"

// OrderDraft is the creation input. Amounts are persisted exactly as given;
// the client owns the arithmetic. PriceIncludeTax is tri-state: nil defers to
// the store-level default.
type OrderDraft struct {
	OrderNumber     string  `json:"orderNumber"`
	Status          string  `json:"status"`
	TableID         *int64  `json:"tableId"`
	EmployeeID      *int64  `json:"employeeId"`
	CustomerName    string  `json:"customerName"`
	CustomerCount   int     `json:"customerCount"`
	Subtotal        float64 `json:"subtotal"`
	Tax             float64 `json:"tax"`
	Discount        float64 `json:"discount"`
	Total           float64 `json:"total"`
	PaymentMethod   *string `json:"paymentMethod"`
	PaymentStatus   string  `json:"paymentStatus"`
	PriceIncludeTax *bool   `json:"priceIncludeTax"`
	SalesChannel    string  `json:"salesChannel"`
	Notes           *string `json:"notes"`
}

// ItemDraft is one requested order line.
type ItemDraft struct {
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Total     float64 `json:"total"`
	Discount  float64 `json:"discount"`
	Notes     *string `json:"notes"`
}

// OrderResult is a created order together with the visibility summary of its
// best-effort stock side effects.
type OrderResult struct {
	Order models.Order       `json:"order"`
	Items []models.OrderItem `json:"items"`
	Stock StockSummary       `json:"stock"`
}

// Orders owns the order lifecycle: creation, status transitions, payment side
// effects and the table occupancy they imply.
type Orders struct {
	orders   OrderStore
	products ProductStore
	tables   TableStore
	settings SettingsStore
	stock    *Stock
	events   Events
	log      *zap.Logger
}

func NewOrders(orders OrderStore, products ProductStore, tables TableStore, settings SettingsStore, stock *Stock, events Events, log *zap.Logger) *Orders {
	return &Orders{
		orders:   orders,
		products: products,
		tables:   tables,
		settings: settings,
		stock:    stock,
		events:   events,
		log:      log,
	}
}

// Create validates and persists an order with its items, then runs the
// per-item stock decrements and marks the table occupied for dine-in orders.
// Header and items commit in one transaction; stock decrements are
// best-effort afterwards and reported in the result, never aborting the sale.
func (s *Orders) Create(ctx context.Context, draft OrderDraft, items []ItemDraft) (OrderResult, error) {
	if strings.TrimSpace(draft.OrderNumber) == "" {
		return OrderResult{}, store.Invalid("order number is required")
	}
	if len(items) == 0 {
		return OrderResult{}, store.Invalid("order has no items")
	}

	resolved := make([]models.OrderItem, 0, len(items))
	tracked := make(map[int64]models.Product)
	for _, item := range items {
		if item.Quantity <= 0 {
			return OrderResult{}, store.Invalid("invalid quantity %d for product %d", item.Quantity, item.ProductID)
		}
		product, err := s.products.Get(ctx, item.ProductID)
		if err != nil {
			return OrderResult{}, store.Invalid("product %d does not exist", item.ProductID)
		}
		if product.TrackInventory {
			tracked[product.ID] = product
		}
		resolved = append(resolved, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.Total,
			Discount:  item.Discount,
			Notes:     item.Notes,
		})
	}

	order := models.Order{
		OrderNumber:   draft.OrderNumber,
		Status:        draft.Status,
		TableID:       draft.TableID,
		EmployeeID:    draft.EmployeeID,
		CustomerName:  draft.CustomerName,
		CustomerCount: draft.CustomerCount,
		Subtotal:      draft.Subtotal,
		Tax:           draft.Tax,
		Discount:      draft.Discount,
		Total:         draft.Total,
		PaymentMethod: draft.PaymentMethod,
		PaymentStatus: draft.PaymentStatus,
		SalesChannel:  draft.SalesChannel,
		Notes:         draft.Notes,
	}
	if order.Status == "" {
		order.Status = models.OrderPending
	} else if !models.KnownOrderStatus(order.Status) {
		return OrderResult{}, store.Invalid("unknown order status %q", order.Status)
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = "pending"
	}
	if draft.PriceIncludeTax != nil {
		order.PriceIncludeTax = *draft.PriceIncludeTax
	} else {
		settings, err := s.settings.Get(ctx)
		if err != nil {
			s.log.Warn("could not fetch store settings, defaulting priceIncludeTax to false", zap.Error(err))
		} else {
			order.PriceIncludeTax = settings.PriceIncludesTax
		}
	}
	if order.SalesChannel == "" {
		if order.TableID != nil {
			order.SalesChannel = models.ChannelTable
		} else {
			order.SalesChannel = models.ChannelPOS
		}
	}

	created, createdItems, err := s.orders.Create(ctx, order, resolved)
	if err != nil {
		return OrderResult{}, fmt.Errorf("create order %s: %w", order.OrderNumber, err)
	}

	summary := s.deductStock(ctx, createdItems, tracked)

	if created.TableID != nil && created.SalesChannel == models.ChannelTable {
		if _, err := s.tables.SetStatus(ctx, *created.TableID, models.TableOccupied); err != nil {
			// The order is already committed; occupancy will be reconciled
			// at the next status transition on this table.
			s.log.Error("failed to mark table occupied",
				zap.Int64("tableId", *created.TableID),
				zap.Int64("orderId", created.ID),
				zap.Error(err))
		}
	}

	if s.events != nil {
		s.events.Publish(ctx, "order.created", map[string]any{
			"orderId":     created.ID,
			"orderNumber": created.OrderNumber,
			"status":      created.Status,
			"tableId":     created.TableID,
			"total":       created.Total,
		})
	}

	return OrderResult{Order: created, Items: createdItems, Stock: summary}, nil
}

// deductStock runs the per-item decrements for inventory-tracked products.
// One failed item never aborts the others; the sale is more important than
// the inventory count.
func (s *Orders) deductStock(ctx context.Context, items []models.OrderItem, tracked map[int64]models.Product) StockSummary {
	var summary StockSummary
	for _, item := range items {
		product, ok := tracked[item.ProductID]
		if !ok {
			continue
		}
		change, err := s.stock.Adjust(ctx, item.ProductID, item.Quantity, models.StockSubtract, stockDeductionNote)
		if err != nil {
			s.log.Error("stock deduction failed",
				zap.Int64("productId", item.ProductID),
				zap.String("product", product.Name),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
			summary.Failed = append(summary.Failed, StockOutcome{
				ProductID:   item.ProductID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				Error:       err.Error(),
			})
			continue
		}
		summary.Applied = append(summary.Applied, StockOutcome{
			ProductID:   item.ProductID,
			ProductName: change.Product.Name,
			Quantity:    item.Quantity,
			NewStock:    change.Product.Stock,
		})
	}
	return summary
}

// UpdateStatus moves an order to a new status. Transitions between known
// statuses are unrestricted; unknown statuses are rejected before any write.
// Paying an order stamps paidAt once and reconciles the occupancy of its
// table.
func (s *Orders) UpdateStatus(ctx context.Context, id string, status string) (models.Order, error) {
	if !models.KnownOrderStatus(status) {
		return models.Order{}, store.Invalid("unknown order status %q", status)
	}

	if strings.HasPrefix(id, tempOrderPrefix) {
		return synthesizeTempOrder(id, status), nil
	}

	orderID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return models.Order{}, store.Invalid("invalid order id %q", id)
	}

	order, err := s.orders.SetStatus(ctx, orderID, status)
	if err != nil {
		return models.Order{}, err
	}

	if status == models.OrderPaid && order.TableID != nil {
		released, err := s.tables.ReleaseIfIdle(ctx, *order.TableID, order.ID)
		if err != nil {
			// Occupancy is recomputed on the next transition; payment stands.
			s.log.Error("table reconciliation failed",
				zap.Int64("tableId", *order.TableID),
				zap.Int64("orderId", order.ID),
				zap.Error(err))
		} else if released {
			s.log.Info("table released",
				zap.Int64("tableId", *order.TableID),
				zap.Int64("orderId", order.ID))
			if s.events != nil {
				s.events.Publish(ctx, "table.released", map[string]any{
					"tableId": *order.TableID,
					"orderId": order.ID,
				})
			}
		}
	}

	if s.events != nil {
		s.events.Publish(ctx, "order.status.updated", map[string]any{
			"orderId":     order.ID,
			"orderNumber": order.OrderNumber,
			"status":      order.Status,
			"tableId":     order.TableID,
		})
	}
	return order, nil
}

// synthesizeTempOrder fabricates a response for a status update against a
// client-side optimistic id that has not been persisted yet.
func synthesizeTempOrder(id string, status string) models.Order {
	now := time.Now()
	order := models.Order{
		OrderNumber:   "TEMP-" + now.Format("20060102150405"),
		Status:        status,
		PaymentStatus: "pending",
		SalesChannel:  models.ChannelPOS,
		OrderedAt:     now,
	}
	if status == models.OrderPaid {
		method := "cash"
		order.PaymentMethod = &method
		order.PaymentStatus = "paid"
		order.PaidAt = &now
	}
	notes := "Temporary order " + id + " - not yet persisted"
	order.Notes = &notes
	return order
}

// AddItems appends lines to an existing order. Header totals are not
// recomputed and no stock is deducted here; stock movement is coupled to
// creation and explicit payment flows only.
func (s *Orders) AddItems(ctx context.Context, orderID int64, items []ItemDraft) ([]models.OrderItem, error) {
	if len(items) == 0 {
		return nil, store.Invalid("no items to add")
	}
	drafts := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, store.Invalid("invalid quantity %d for product %d", item.Quantity, item.ProductID)
		}
		if _, err := s.products.Get(ctx, item.ProductID); err != nil {
			return nil, store.Invalid("product %d does not exist", item.ProductID)
		}
		drafts = append(drafts, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.Total,
			Discount:  item.Discount,
			Notes:     item.Notes,
		})
	}
	return s.orders.AddItems(ctx, orderID, drafts)
}

// RemoveItem deletes one line. Stock already deducted for the line stays
// deducted; crediting it back would double-book against later recounts.
func (s *Orders) RemoveItem(ctx context.Context, itemID int64) error {
	removed, err := s.orders.RemoveItem(ctx, itemID)
	if err != nil {
		return err
	}
	if !removed {
		return store.ErrNotFound
	}
	return nil
}

func (s *Orders) Get(ctx context.Context, id int64) (models.Order, []models.OrderItem, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return models.Order{}, nil, err
	}
	items, err := s.orders.Items(ctx, id)
	if err != nil {
		s.log.Error("failed to load order items", zap.Int64("orderId", id), zap.Error(err))
		items = []models.OrderItem{}
	}
	return order, items, nil
}

func (s *Orders) List(ctx context.Context, status string, tableID *int64) ([]models.Order, error) {
	if status != "" && !models.KnownOrderStatus(status) {
		return nil, store.Invalid("unknown order status %q", status)
	}
	return s.orders.List(ctx, status, tableID)
}
