package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"restopos-order-service/internal/store"
	"restopos-order-service/pkg/response"
)

func (h *Handler) ListInventoryTransactions(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("productId"))
	if raw == "" {
		h.writeErr(w, r, store.Invalid("productId is required"))
		return
	}
	productID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.writeErr(w, r, store.Invalid("invalid productId %q", raw))
		return
	}

	entries, err := h.app(r).stores.Inventory.ListByProduct(r.Context(), productID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.Success(w, entries)
}
