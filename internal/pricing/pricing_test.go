package pricing

import (
	"math"
	"testing"

	"restopos-order-service/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}

func TestTaxFields(t *testing.T) {
	cases := []struct {
		name        string
		price       float64
		taxRate     float64
		includesTax bool
		wantBefore  float64
		wantAfter   float64
	}{
		{
			name:        "inclusive price strips tax",
			price:       110000,
			taxRate:     10,
			includesTax: true,
			wantBefore:  100000,
			wantAfter:   110000,
		},
		{
			name:        "exclusive price adds tax",
			price:       100000,
			taxRate:     10,
			includesTax: false,
			wantBefore:  100000,
			wantAfter:   110000,
		},
		{
			name:        "zero rate skips division",
			price:       50000,
			taxRate:     0,
			includesTax: true,
			wantBefore:  50000,
			wantAfter:   50000,
		},
		{
			name:        "fractional rate",
			price:       100,
			taxRate:     7.5,
			includesTax: false,
			wantBefore:  100,
			wantAfter:   107.5,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before, after := TaxFields(tc.price, tc.taxRate, tc.includesTax)
			if !almostEqual(before, tc.wantBefore) || !almostEqual(after, tc.wantAfter) {
				t.Fatalf("expected (%v, %v), got (%v, %v)", tc.wantBefore, tc.wantAfter, before, after)
			}
			if !almostEqual(after, before*(1+tc.taxRate/100)) {
				t.Fatalf("after-tax price %v inconsistent with before-tax %v at rate %v", after, before, tc.taxRate)
			}
		})
	}
}

func TestNetRevenue(t *testing.T) {
	if got := NetRevenue(110000, 10000, true); got != 100000 {
		t.Fatalf("expected 100000, got %v", got)
	}
	if got := NetRevenue(110000, 10000, false); got != 110000 {
		t.Fatalf("expected 110000, got %v", got)
	}
}

func item(name string, unitPrice float64, qty int) models.OrderItem {
	return models.OrderItem{ProductName: name, UnitPrice: unitPrice, Quantity: qty}
}

func TestAllocateDiscountExactness(t *testing.T) {
	cases := []struct {
		name     string
		discount float64
		items    []models.OrderItem
	}{
		{
			name:     "non-terminating thirds",
			discount: 100,
			items:    []models.OrderItem{item("a", 33, 1), item("b", 33, 1), item("c", 34, 1)},
		},
		{
			name:     "equal lines",
			discount: 100,
			items:    []models.OrderItem{item("a", 50, 1), item("b", 50, 1), item("c", 50, 1)},
		},
		{
			name:     "single line takes everything",
			discount: 73,
			items:    []models.OrderItem{item("a", 120, 2)},
		},
		{
			name:     "quantities weigh lines",
			discount: 999,
			items:    []models.OrderItem{item("a", 7, 3), item("b", 13, 11), item("c", 1, 1)},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			allocated := AllocateDiscount(tc.discount, tc.items)
			var sum float64
			for _, v := range allocated {
				sum += v
			}
			if sum != tc.discount {
				t.Fatalf("allocations sum to %v, want exactly %v (allocated %v)", sum, tc.discount, allocated)
			}
		})
	}
}

func TestAllocateDiscountProportions(t *testing.T) {
	items := []models.OrderItem{item("a", 100, 1), item("b", 300, 1)}
	allocated := AllocateDiscount(40, items)
	if allocated[0] != 10 {
		t.Fatalf("expected first line to get 10, got %v", allocated[0])
	}
	if allocated[1] != 30 {
		t.Fatalf("expected last line remainder 30, got %v", allocated[1])
	}
}

func TestAllocateDiscountZeroAndNegative(t *testing.T) {
	items := []models.OrderItem{item("a", 10, 1), item("b", 20, 1)}
	for _, discount := range []float64{0, -5} {
		for _, v := range AllocateDiscount(discount, items) {
			if v != 0 {
				t.Fatalf("discount %v should allocate nothing, got %v", discount, v)
			}
		}
	}
}

func TestItemRevenues(t *testing.T) {
	items := []models.OrderItem{item("a", 100, 2), item("b", 50, 1)}
	revenues := ItemRevenues(50, items)
	// lineTotals 200/50; first gets round(50*200/250)=40, last gets 10.
	if revenues[0] != 160 || revenues[1] != 40 {
		t.Fatalf("expected revenues [160 40], got %v", revenues)
	}
}

func TestTopProductsRanking(t *testing.T) {
	orders := []OrderLines{
		{Items: []models.OrderItem{item("A", 500, 1), item("B", 900, 1)}},
		{Items: []models.OrderItem{item("C", 100, 1)}},
	}

	top := TopProducts(orders, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top))
	}
	if top[0].Name != "B" || top[1].Name != "A" {
		t.Fatalf("expected [B A], got [%s %s]", top[0].Name, top[1].Name)
	}
}

func TestTopProductsAggregatesAcrossOrders(t *testing.T) {
	orders := []OrderLines{
		{Items: []models.OrderItem{item("A", 10, 2)}},
		{Discount: 5, Items: []models.OrderItem{item("A", 10, 1)}},
	}

	top := TopProducts(orders, 0)
	if len(top) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(top))
	}
	if top[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", top[0].Quantity)
	}
	if top[0].Revenue != 25 {
		t.Fatalf("expected revenue 25, got %v", top[0].Revenue)
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(10.006); got != 10.01 {
		t.Fatalf("expected 10.01, got %v", got)
	}
	if got := Round2(10.004); got != 10 {
		t.Fatalf("expected 10, got %v", got)
	}
}
