// Package pricing holds the money math shared by the order service and the
// reporting read side. Dashboards must reuse these exact formulas to stay
// comparable with historical figures.
package pricing

import (
	"math"
	"sort"

	"restopos-order-service/internal/models"
)

// Round2 rounds a currency amount to two decimal places.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// TaxFields derives the before/after-tax price pair from a display price and
// a percent tax rate. The direction depends on whether the display price
// already contains tax; a zero rate short-circuits the division.
func TaxFields(price float64, taxRate float64, priceIncludesTax bool) (beforeTax, afterTax float64) {
	if taxRate == 0 {
		return price, price
	}
	if priceIncludesTax {
		return price / (1 + taxRate/100), price
	}
	return price, price * (1 + taxRate/100)
}

// NetRevenue computes the tax-exclusive revenue of an order. When the order's
// prices include tax the tax portion is stripped from the total; otherwise
// the total is already net.
func NetRevenue(total, tax float64, priceIncludeTax bool) float64 {
	if priceIncludeTax {
		return total - tax
	}
	return total
}

// OrderNetRevenue is NetRevenue applied to a stored order. It is used
// uniformly across completed, serving and cancelled buckets.
func OrderNetRevenue(order models.Order) float64 {
	return NetRevenue(order.Total, order.Tax, order.PriceIncludeTax)
}

// AllocateDiscount distributes an order-level discount across its lines in
// proportion to unitPrice*quantity. Every line but the last gets its rounded
// proportional share; the last line absorbs the remainder so the allocations
// always sum to the discount exactly. Line order must therefore be stable
// (insertion/id order).
func AllocateDiscount(discount float64, items []models.OrderItem) []float64 {
	allocated := make([]float64, len(items))
	if discount <= 0 || len(items) == 0 {
		return allocated
	}

	var totalBeforeDiscount float64
	for _, item := range items {
		totalBeforeDiscount += item.UnitPrice * float64(item.Quantity)
	}

	var assigned float64
	for i, item := range items {
		if i == len(items)-1 {
			allocated[i] = discount - assigned
			break
		}
		if totalBeforeDiscount > 0 {
			lineTotal := item.UnitPrice * float64(item.Quantity)
			allocated[i] = math.Round(discount * lineTotal / totalBeforeDiscount)
		}
		assigned += allocated[i]
	}
	return allocated
}

// ItemRevenues returns each line's revenue after its allocated share of the
// order discount.
func ItemRevenues(discount float64, items []models.OrderItem) []float64 {
	allocated := AllocateDiscount(discount, items)
	revenues := make([]float64, len(items))
	for i, item := range items {
		revenues[i] = item.UnitPrice*float64(item.Quantity) - allocated[i]
	}
	return revenues
}

// ProductStat is one row of the top-products ranking.
type ProductStat struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// OrderLines groups an order's discount with its lines for ranking.
type OrderLines struct {
	Discount float64
	Items    []models.OrderItem
}

// DefaultTopProducts is the ranking size the dashboard shows.
const DefaultTopProducts = 5

// TopProducts aggregates line revenue (discount-allocated) per product name
// across orders and returns the highest-revenue products, truncated to limit.
func TopProducts(orders []OrderLines, limit int) []ProductStat {
	if limit <= 0 {
		limit = DefaultTopProducts
	}

	index := make(map[string]int)
	stats := make([]ProductStat, 0)
	for _, order := range orders {
		revenues := ItemRevenues(order.Discount, order.Items)
		for i, item := range order.Items {
			pos, ok := index[item.ProductName]
			if !ok {
				pos = len(stats)
				index[item.ProductName] = pos
				stats = append(stats, ProductStat{Name: item.ProductName})
			}
			stats[pos].Quantity += item.Quantity
			stats[pos].Revenue += revenues[i]
		}
	}

	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Revenue > stats[j].Revenue })
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}
