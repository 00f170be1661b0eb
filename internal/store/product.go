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

type ProductStore struct {
	db DB
}

const productColumns = `id, sku, name, price, before_tax_price, after_tax_price, tax_rate, price_includes_tax, track_inventory, stock, is_active`

// productColumnsPrefixed qualifies the column list for statements that join
// products against another relation.
const productColumnsPrefixed = `p.id, p.sku, p.name, p.price, p.before_tax_price, p.after_tax_price, p.tax_rate, p.price_includes_tax, p.track_inventory, p.stock, p.is_active`

// scanProductRow scans the product columns plus any extra trailing
// destinations the statement returned after them.
func scanProductRow(row pgx.Row, extra ...any) (models.Product, error) {
	var (
		p         models.Product
		price     pgtype.Numeric
		beforeTax pgtype.Numeric
		afterTax  pgtype.Numeric
		taxRate   pgtype.Text
	)
	dests := []any{&p.ID, &p.SKU, &p.Name, &price, &beforeTax, &afterTax, &taxRate, &p.PriceIncludesTax, &p.TrackInventory, &p.Stock, &p.IsActive}
	dests = append(dests, extra...)
	err := row.Scan(dests...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Product{}, ErrNotFound
		}
		return models.Product{}, err
	}
	p.Price = utils.NumericToFloat64(price)
	p.BeforeTaxPrice = utils.NumericToFloat64(beforeTax)
	p.AfterTaxPrice = utils.NumericToFloat64(afterTax)
	if taxRate.Valid {
		p.TaxRate = taxRate.String
	}
	return p, nil
}

func scanProduct(row pgx.Row) (models.Product, error) {
	return scanProductRow(row)
}

func (s *ProductStore) Get(ctx context.Context, id int64) (models.Product, error) {
	return scanProduct(s.db.QueryRow(ctx, `select `+productColumns+` from products where id = $1`, id))
}

func (s *ProductStore) GetBySKU(ctx context.Context, sku string) (models.Product, error) {
	return scanProduct(s.db.QueryRow(ctx, `select `+productColumns+` from products where sku = $1`, sku))
}

// UpdatePrices persists the derived tax price fields after a catalog edit.
// Prices go through an explicit numeric conversion so the stored values carry
// the decimal text representation rather than a binary float.
func (s *ProductStore) UpdatePrices(ctx context.Context, id int64, price, beforeTax, afterTax float64, taxRate string, includesTax bool) (models.Product, error) {
	return scanProduct(s.db.QueryRow(ctx, `
		update products
		set price = $2, before_tax_price = $3, after_tax_price = $4, tax_rate = $5, price_includes_tax = $6
		where id = $1
		returning `+productColumns,
		id, utils.FloatToNumeric(price), utils.FloatToNumeric(beforeTax), utils.FloatToNumeric(afterTax), taxRate, includesTax))
}

// Referenced reports whether any order or receipt line still points at the
// product; deletion is blocked while it does.
func (s *ProductStore) Referenced(ctx context.Context, id int64) (bool, error) {
	var referenced bool
	err := s.db.QueryRow(ctx, `
		select exists(select 1 from order_items where product_id = $1)
		    or exists(select 1 from transaction_items where product_id = $1)
	`, id).Scan(&referenced)
	return referenced, err
}

// Delete removes a product row outright. Callers must check Referenced first;
// the foreign keys would reject the delete anyway, this keeps the error typed.
func (s *ProductStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `delete from products where id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate hides a product from the catalog while keeping the row for the
// order and receipt lines that reference it.
func (s *ProductStore) Deactivate(ctx context.Context, id int64) (models.Product, error) {
	return scanProduct(s.db.QueryRow(ctx, `update products set is_active = false where id = $1 returning `+productColumns, id))
}

// StockChange describes one applied stock mutation. Applied is false when the
// product does not track inventory and the call was a no-op.
type StockChange struct {
	Product  models.Product
	Previous int
	Applied  bool
}

// AdjustStock mutates stock in a single conditional statement so a concurrent
// subtract can never drive a tracked product negative. The affected-row count
// of the guarded update is what surfaces InsufficientStockError, and the
// statement itself returns the pre-update stock so the previous/new pair can
// never disagree with the transition that actually happened.
func (s *ProductStore) AdjustStock(ctx context.Context, id int64, quantity int, mode string) (StockChange, error) {
	if !models.KnownStockMode(mode) {
		return StockChange{}, Invalid("unknown stock adjustment type %q", mode)
	}
	if mode == models.StockSet {
		if quantity < 0 {
			return StockChange{}, Invalid("cannot set stock to a negative value")
		}
	} else if quantity < 0 {
		quantity = -quantity
	}

	product, err := s.Get(ctx, id)
	if err != nil {
		return StockChange{}, fmt.Errorf("product %d: %w", id, err)
	}
	if !product.TrackInventory {
		return StockChange{Product: product, Previous: product.Stock, Applied: false}, nil
	}

	var assign, guard string
	switch mode {
	case models.StockAdd:
		assign = `p.stock + $2`
	case models.StockSubtract:
		assign = `p.stock - $2`
		guard = ` and p.stock >= $2`
	case models.StockSet:
		assign = `$2`
	}
	stmt := `
		with old as (select id, stock from products where id = $1 for update)
		update products p set stock = ` + assign + `
		from old where p.id = old.id` + guard + `
		returning ` + productColumnsPrefixed + `, old.stock`

	var previous int
	updated, err := scanProductRow(s.db.QueryRow(ctx, stmt, id, quantity), &previous)
	if err != nil {
		if errors.Is(err, ErrNotFound) && mode == models.StockSubtract {
			// Row exists but failed the floor guard; report what was there.
			current, readErr := s.Get(ctx, id)
			if readErr != nil {
				return StockChange{}, readErr
			}
			return StockChange{}, &InsufficientStockError{
				ProductID: id,
				Product:   current.Name,
				Available: current.Stock,
				Required:  quantity,
			}
		}
		return StockChange{}, err
	}

	return StockChange{Product: updated, Previous: previous, Applied: true}, nil
}
