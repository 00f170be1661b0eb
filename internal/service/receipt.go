package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"restopos-order-service/internal/models"
	"restopos-order-service/internal/store"
)

// ReceiptDraft is the recording input for a completed point-of-sale payment.
type ReceiptDraft struct {
	ReceiptNumber  string   `json:"receiptNumber"`
	CashierID      *int64   `json:"cashierId"`
	Subtotal       float64  `json:"subtotal"`
	Tax            float64  `json:"tax"`
	Discount       float64  `json:"discount"`
	Total          float64  `json:"total"`
	PaymentMethod  string   `json:"paymentMethod"`
	AmountReceived *float64 `json:"amountReceived"`
	Change         *float64 `json:"change"`
}

// ReceiptItemDraft is one sold line on a receipt.
type ReceiptItemDraft struct {
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Total     float64 `json:"total"`
}

// ReceiptResult is a recorded receipt plus the visibility summary of its
// stock side effects.
type ReceiptResult struct {
	Receipt models.Receipt `json:"receipt"`
	Stock   StockSummary   `json:"stock"`
}

// Receipts records completed point-of-sale transactions. A receipt is
// write-once: it has no status machine and is never mutated after recording.
type Receipts struct {
	receipts ReceiptStore
	products ProductStore
	stock    *Stock
	events   Events
	log      *zap.Logger
}

func NewReceipts(receipts ReceiptStore, products ProductStore, stock *Stock, events Events, log *zap.Logger) *Receipts {
	return &Receipts{receipts: receipts, products: products, stock: stock, events: events, log: log}
}

// Record persists the receipt with its items in one transaction, then runs
// the per-item stock decrements. The money has already changed hands, so a
// failed decrement is reported but never voids the receipt.
func (s *Receipts) Record(ctx context.Context, draft ReceiptDraft, items []ReceiptItemDraft) (ReceiptResult, error) {
	if strings.TrimSpace(draft.ReceiptNumber) == "" {
		return ReceiptResult{}, store.Invalid("receipt number is required")
	}
	if draft.PaymentMethod == "" {
		return ReceiptResult{}, store.Invalid("payment method is required")
	}
	if len(items) == 0 {
		return ReceiptResult{}, store.Invalid("receipt has no items")
	}

	lines := make([]models.ReceiptItem, 0, len(items))
	tracked := make(map[int64]models.Product)
	for _, item := range items {
		if item.Quantity <= 0 {
			return ReceiptResult{}, store.Invalid("invalid quantity %d for product %d", item.Quantity, item.ProductID)
		}
		product, err := s.products.Get(ctx, item.ProductID)
		if err != nil {
			return ReceiptResult{}, store.Invalid("product %d does not exist", item.ProductID)
		}
		if product.TrackInventory {
			tracked[product.ID] = product
		}
		lines = append(lines, models.ReceiptItem{
			ProductID:   item.ProductID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		})
	}

	receipt := models.Receipt{
		ReceiptNumber:  draft.ReceiptNumber,
		CashierID:      draft.CashierID,
		Subtotal:       draft.Subtotal,
		Tax:            draft.Tax,
		Discount:       draft.Discount,
		Total:          draft.Total,
		PaymentMethod:  draft.PaymentMethod,
		AmountReceived: draft.AmountReceived,
		Change:         draft.Change,
	}

	recorded, err := s.receipts.Create(ctx, receipt, lines)
	if err != nil {
		return ReceiptResult{}, fmt.Errorf("record receipt %s: %w", receipt.ReceiptNumber, err)
	}

	var summary StockSummary
	for _, line := range recorded.Items {
		product, ok := tracked[line.ProductID]
		if !ok {
			continue
		}
		change, err := s.stock.Adjust(ctx, line.ProductID, line.Quantity, models.StockSubtract, stockDeductionNote)
		if err != nil {
			s.log.Error("stock deduction failed",
				zap.Int64("productId", line.ProductID),
				zap.String("product", product.Name),
				zap.Int("quantity", line.Quantity),
				zap.Error(err))
			summary.Failed = append(summary.Failed, StockOutcome{
				ProductID:   line.ProductID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				Error:       err.Error(),
			})
			continue
		}
		summary.Applied = append(summary.Applied, StockOutcome{
			ProductID:   line.ProductID,
			ProductName: change.Product.Name,
			Quantity:    line.Quantity,
			NewStock:    change.Product.Stock,
		})
	}

	if s.events != nil {
		s.events.Publish(ctx, "receipt.created", map[string]any{
			"receiptId":     recorded.ID,
			"receiptNumber": recorded.ReceiptNumber,
			"total":         recorded.Total,
			"paymentMethod": recorded.PaymentMethod,
		})
	}

	return ReceiptResult{Receipt: recorded, Stock: summary}, nil
}
