package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"restopos-order-service/internal/models"
	"restopos-order-service/internal/pricing"
)

// RevenueBucket aggregates one slice of the dashboard period.
type RevenueBucket struct {
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// Dashboard is the period summary for the reporting screen. Revenue figures
// are net of tax when the order's prices included it, so the buckets stay
// comparable regardless of how individual orders were priced.
type Dashboard struct {
	Completed   RevenueBucket         `json:"completed"`
	Serving     RevenueBucket         `json:"serving"`
	Cancelled   RevenueBucket         `json:"cancelled"`
	TopProducts []pricing.ProductStat `json:"topProducts"`
}

// Reports is the read side over the order history.
type Reports struct {
	orders OrderStore
	log    *zap.Logger
}

func NewReports(orders OrderStore, log *zap.Logger) *Reports {
	return &Reports{orders: orders, log: log}
}

// Range builds the dashboard for orders placed in [start, end). Orders bucket
// as completed (paid), serving (still in the active set) or cancelled; the
// top-products ranking counts completed orders only, with the order-level
// discount allocated across lines.
func (s *Reports) Range(ctx context.Context, start, end time.Time) (Dashboard, error) {
	orders, err := s.orders.ListOrderedBetween(ctx, start, end)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list orders for report: %w", err)
	}

	var dash Dashboard
	var completed []models.Order
	for _, order := range orders {
		revenue := pricing.OrderNetRevenue(order)
		switch {
		case order.Status == models.OrderPaid:
			dash.Completed.Count++
			dash.Completed.Revenue += revenue
			completed = append(completed, order)
		case order.Status == models.OrderCancelled:
			dash.Cancelled.Count++
			dash.Cancelled.Revenue += revenue
		case models.ActiveOrderStatus(order.Status):
			dash.Serving.Count++
			dash.Serving.Revenue += revenue
		}
	}
	dash.Completed.Revenue = pricing.Round2(dash.Completed.Revenue)
	dash.Serving.Revenue = pricing.Round2(dash.Serving.Revenue)
	dash.Cancelled.Revenue = pricing.Round2(dash.Cancelled.Revenue)

	dash.TopProducts = []pricing.ProductStat{}
	if len(completed) > 0 {
		ids := make([]int64, 0, len(completed))
		for _, order := range completed {
			ids = append(ids, order.ID)
		}
		itemsByOrder, err := s.orders.ItemsForOrders(ctx, ids)
		if err != nil {
			// Revenue buckets are still valid; ship them with an empty ranking.
			s.log.Error("failed to load items for top products", zap.Error(err))
			return dash, nil
		}
		lines := make([]pricing.OrderLines, 0, len(completed))
		for _, order := range completed {
			lines = append(lines, pricing.OrderLines{
				Discount: order.Discount,
				Items:    itemsByOrder[order.ID],
			})
		}
		dash.TopProducts = pricing.TopProducts(lines, pricing.DefaultTopProducts)
	}
	return dash, nil
}
