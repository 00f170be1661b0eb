package handlers

import (
	"net/http"

	"restopos-order-service/internal/store"
	"restopos-order-service/pkg/response"
)

func (h *Handler) GetPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "id")
	if err != nil {
		h.writeErr(w, r, store.Invalid("invalid purchase order id"))
		return
	}

	receipt, err := h.app(r).purchases.Get(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.Success(w, receipt)
}

type receiveItemsRequest struct {
	Items []store.ReceivedItem `json:"items"`
}

func (h *Handler) ReceivePurchaseItems(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "id")
	if err != nil {
		h.writeErr(w, r, store.Invalid("invalid purchase order id"))
		return
	}
	var req receiveItemsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	result, err := h.app(r).purchases.Receive(r.Context(), id, req.Items)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.Success(w, result)
}
