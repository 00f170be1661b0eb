package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"restopos-order-service/internal/service"
	"restopos-order-service/pkg/response"
)

type recordReceiptRequest struct {
	service.ReceiptDraft
	Items []service.ReceiptItemDraft `json:"items"`
}

func (h *Handler) RecordReceipt(w http.ResponseWriter, r *http.Request) {
	var req recordReceiptRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	result, err := h.app(r).receipts.Record(r.Context(), req.ReceiptDraft, req.Items)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.Created(w, result)
}

// GetReceipt accepts either a numeric id or a receipt number.
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	a := h.app(r)
	raw := chi.URLParam(r, "id")

	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		receipt, err := a.stores.Receipts.Get(r.Context(), id)
		if err != nil {
			h.writeErr(w, r, err)
			return
		}
		response.Success(w, receipt)
		return
	}

	receipt, err := a.stores.Receipts.GetByNumber(r.Context(), raw)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.Success(w, receipt)
}
