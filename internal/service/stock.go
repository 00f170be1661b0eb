package service

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"restopos-order-service/internal/models"
	"restopos-order-service/internal/pricing"
	"restopos-order-service/internal/store"
)

// Stock is the single mutation point for inventory counts. Every adjustment
// that carries notes leaves an audit row; the audit write is best-effort and
// never rolls back the stock mutation itself.
type Stock struct {
	products  ProductStore
	inventory InventoryStore
	events    Events
	log       *zap.Logger
}

func NewStock(products ProductStore, inventory InventoryStore, events Events, log *zap.Logger) *Stock {
	return &Stock{products: products, inventory: inventory, events: events, log: log}
}

// Adjust applies one stock mutation. Products that do not track inventory
// short-circuit and come back unchanged, so callers can invoke this uniformly
// without branching on product configuration.
func (s *Stock) Adjust(ctx context.Context, productID int64, quantity int, mode, notes string) (store.StockChange, error) {
	change, err := s.products.AdjustStock(ctx, productID, quantity, mode)
	if err != nil {
		return store.StockChange{}, err
	}
	if !change.Applied {
		s.log.Debug("stock adjustment skipped, product does not track inventory",
			zap.Int64("productId", productID))
		return change, nil
	}

	if notes != "" {
		audit := models.InventoryTransaction{
			ProductID:     productID,
			Type:          mode,
			Quantity:      abs(quantity),
			PreviousStock: change.Previous,
			NewStock:      change.Product.Stock,
			Notes:         notes,
		}
		if err := s.inventory.Append(ctx, audit); err != nil {
			// The stock write already committed; losing the audit row is
			// preferable to losing the sale.
			s.log.Error("failed to record inventory transaction",
				zap.Int64("productId", productID),
				zap.String("type", mode),
				zap.Error(err))
		}
	}

	if s.events != nil {
		s.events.Publish(ctx, "stock.adjusted", map[string]any{
			"productId":     productID,
			"type":          mode,
			"quantity":      abs(quantity),
			"previousStock": change.Previous,
			"newStock":      change.Product.Stock,
		})
	}
	return change, nil
}

// SetPrice recomputes the tax-derived price fields from a display price and
// percent rate and persists all three together, keeping the
// afterTax = beforeTax * (1 + rate/100) invariant intact.
func (s *Stock) SetPrice(ctx context.Context, productID int64, price float64, taxRate string, includesTax bool) (models.Product, error) {
	rate, err := strconv.ParseFloat(strings.TrimSpace(taxRate), 64)
	if err != nil || rate < 0 {
		return models.Product{}, store.Invalid("invalid tax rate %q", taxRate)
	}
	if price < 0 {
		return models.Product{}, store.Invalid("price cannot be negative")
	}
	beforeTax, afterTax := pricing.TaxFields(price, rate, includesTax)
	return s.products.UpdatePrices(ctx, productID, price, pricing.Round2(beforeTax), pricing.Round2(afterTax), taxRate, includesTax)
}

// RemoveResult reports what happened to a product that was asked to go away.
// Deleted is false when order or receipt lines still reference the product; it
// is deactivated instead so historical lines keep their join target.
type RemoveResult struct {
	Deleted bool            `json:"deleted"`
	Product *models.Product `json:"product,omitempty"`
}

// Remove deletes a product from the catalog, or deactivates it when sales
// history still references it.
func (s *Stock) Remove(ctx context.Context, productID int64) (RemoveResult, error) {
	referenced, err := s.products.Referenced(ctx, productID)
	if err != nil {
		return RemoveResult{}, err
	}
	if referenced {
		product, err := s.products.Deactivate(ctx, productID)
		if err != nil {
			return RemoveResult{}, err
		}
		s.log.Info("product deactivated, still referenced by sales history",
			zap.Int64("productId", productID))
		return RemoveResult{Deleted: false, Product: &product}, nil
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		return RemoveResult{}, err
	}
	return RemoveResult{Deleted: true}, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
