package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"restopos-order-service/internal/service"
	"restopos-order-service/internal/store"
	"restopos-order-service/pkg/response"
)

type createOrderRequest struct {
	service.OrderDraft
	Items []service.ItemDraft `json:"items"`
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	result, err := h.app(r).orders.Create(r.Context(), req.OrderDraft, req.Items)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.Created(w, result)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	var tableID *int64
	if raw := strings.TrimSpace(r.URL.Query().Get("tableId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeErr(w, r, store.Invalid("invalid tableId %q", raw))
			return
		}
		tableID = &id
	}

	orders, err := h.app(r).orders.List(r.Context(), status, tableID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.Success(w, orders)
}

// GetOrder accepts either a numeric id or an order number.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	a := h.app(r)
	raw := chi.URLParam(r, "id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		order, err := a.stores.Orders.GetByNumber(r.Context(), raw)
		if err != nil {
			h.writeErr(w, r, err)
			return
		}
		id = order.ID
	}

	order, items, err := a.orders.Get(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.Success(w, map[string]any{"order": order, "items": items})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	// The raw id is passed through: "temp-" prefixed ids are handled without
	// touching storage.
	order, err := h.app(r).orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.Success(w, order)
}

type addItemsRequest struct {
	Items []service.ItemDraft `json:"items"`
}

func (h *Handler) AddOrderItems(w http.ResponseWriter, r *http.Request) {
	orderID, err := readPathInt64(r, "id")
	if err != nil {
		h.writeErr(w, r, store.Invalid("invalid order id"))
		return
	}
	var req addItemsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	items, err := h.app(r).orders.AddItems(r.Context(), orderID, req.Items)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.Created(w, items)
}

func (h *Handler) RemoveOrderItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := readPathInt64(r, "itemId")
	if err != nil {
		h.writeErr(w, r, store.Invalid("invalid item id"))
		return
	}

	if err := h.app(r).orders.RemoveItem(r.Context(), itemID); err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.Success(w, map[string]any{"removed": true})
}
