package handlers

import (
	"net/http"

	"restopos-order-service/internal/store"
	"restopos-order-service/pkg/response"
)

func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.app(r).stores.Tables.List(r.Context())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.Success(w, tables)
}

type tableStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateTableStatus(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "id")
	if err != nil {
		h.writeErr(w, r, store.Invalid("invalid table id"))
		return
	}
	var req tableStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	table, err := h.app(r).stores.Tables.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.Success(w, table)
}
