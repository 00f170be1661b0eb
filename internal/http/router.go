package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"restopos-order-service/internal/config"
	"restopos-order-service/internal/http/handlers"
	"restopos-order-service/internal/middleware"
	"restopos-order-service/internal/service"
	"restopos-order-service/internal/tenant"
	"restopos-order-service/internal/ws"
	"restopos-order-service/pkg/response"
)

func NewRouter(registry *tenant.Registry, logger *zap.Logger, cfg config.Config, events service.Events, hub *ws.Hub) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Telemetry(logger, cfg.TelemetryWindow))

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"X-Tenant-ID",
				"Cache-Control",
				"Pragma",
			},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	h := &handlers.Handler{Registry: registry, Logger: logger, Config: cfg, Events: events}

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		tenants := registry.Health(req.Context())
		body := map[string]any{
			"status":    "ok",
			"tenants":   tenants,
			"wsClients": hub.ClientCount(),
		}
		if err := registry.Verify(req.Context(), tenant.DefaultName); err != nil {
			body["status"] = "degraded"
			response.JSON(w, http.StatusServiceUnavailable, body)
			return
		}
		response.Success(w, body)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Tenant(registry))

		api.Route("/orders", func(orders chi.Router) {
			orders.Post("/", h.CreateOrder)
			orders.Get("/", h.ListOrders)
			orders.Get("/{id}", h.GetOrder)
			orders.Put("/{id}/status", h.UpdateOrderStatus)
			orders.Post("/{id}/items", h.AddOrderItems)
		})
		api.Delete("/order-items/{itemId}", h.RemoveOrderItem)

		api.Route("/products", func(products chi.Router) {
			products.Get("/{id}", h.GetProduct)
			products.Delete("/{id}", h.DeleteProduct)
			products.Post("/{id}/stock", h.AdjustStock)
			products.Put("/{id}/price", h.SetProductPrice)
		})
		api.Get("/inventory-transactions", h.ListInventoryTransactions)

		api.Route("/tables", func(tables chi.Router) {
			tables.Get("/", h.ListTables)
			tables.Put("/{id}/status", h.UpdateTableStatus)
		})

		api.Route("/transactions", func(receipts chi.Router) {
			receipts.Post("/", h.RecordReceipt)
			receipts.Get("/{id}", h.GetReceipt)
		})

		api.Route("/purchase-orders", func(purchases chi.Router) {
			purchases.Get("/{id}", h.GetPurchaseOrder)
			purchases.Post("/{id}/receive", h.ReceivePurchaseItems)
		})

		api.Get("/reports/dashboard", h.DashboardReport)
	})

	r.Get("/ws/orders", hub.ServeHTTP)

	return r
}
