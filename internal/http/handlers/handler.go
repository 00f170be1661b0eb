package handlers

import (
	"net/http"
	"sync"

	"go.uber.org/zap"

	"restopos-order-service/internal/config"
	"restopos-order-service/internal/service"
	"restopos-order-service/internal/store"
	"restopos-order-service/internal/tenant"
)

// Handler carries the shared dependencies of every endpoint. Stores and
// services are built lazily per tenant and cached; the tenant middleware has
// already verified the tenant exists by the time a handler runs.
type Handler struct {
	Registry *tenant.Registry
	Logger   *zap.Logger
	Config   config.Config
	Events   service.Events

	mu   sync.Mutex
	apps map[string]*app
}

// app is one tenant's wired store and service stack.
type app struct {
	stores    *store.Stores
	orders    *service.Orders
	stock     *service.Stock
	receipts  *service.Receipts
	purchases *service.Purchases
	reports   *service.Reports
}

func (h *Handler) app(r *http.Request) *app {
	name := tenant.FromContext(r.Context())

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.apps == nil {
		h.apps = make(map[string]*app)
	}
	if a, ok := h.apps[name]; ok {
		return a
	}

	pool, ok := h.Registry.Pool(name)
	if !ok {
		// The tenant middleware rejects unknown tenants before handlers run.
		pool = h.Registry.Default()
	}
	stores := store.New(pool)
	log := h.Logger.With(zap.String("tenant", name))
	stock := service.NewStock(stores.Products, stores.Inventory, h.Events, log)
	a := &app{
		stores:    stores,
		stock:     stock,
		orders:    service.NewOrders(stores.Orders, stores.Products, stores.Tables, stores.Settings, stock, h.Events, log),
		receipts:  service.NewReceipts(stores.Receipts, stores.Products, stock, h.Events, log),
		purchases: service.NewPurchases(stores.Purchases, h.Events, log),
		reports:   service.NewReports(stores.Orders, log),
	}
	h.apps[name] = a
	return a
}
