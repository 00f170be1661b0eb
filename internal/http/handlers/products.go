package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"restopos-order-service/internal/models"
	"restopos-order-service/internal/store"
	"restopos-order-service/pkg/response"
)

// GetProduct resolves a numeric id, falling back to a SKU lookup so barcode
// scanners can hit the same endpoint.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")

	var product models.Product
	var err error
	if id, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
		product, err = h.app(r).stores.Products.Get(r.Context(), id)
	} else {
		product, err = h.app(r).stores.Products.GetBySKU(r.Context(), raw)
	}
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.Success(w, product)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "id")
	if err != nil {
		h.writeErr(w, r, store.Invalid("invalid product id"))
		return
	}

	result, err := h.app(r).stock.Remove(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.Success(w, result)
}

type adjustStockRequest struct {
	Quantity int    `json:"quantity"`
	Type     string `json:"type"`
	Notes    string `json:"notes"`
}

func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "id")
	if err != nil {
		h.writeErr(w, r, store.Invalid("invalid product id"))
		return
	}
	var req adjustStockRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	change, err := h.app(r).stock.Adjust(r.Context(), id, req.Quantity, strings.TrimSpace(req.Type), strings.TrimSpace(req.Notes))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.Success(w, map[string]any{
		"product":       change.Product,
		"previousStock": change.Previous,
		"applied":       change.Applied,
	})
}

type setPriceRequest struct {
	Price           float64 `json:"price"`
	TaxRate         string  `json:"taxRate"`
	PriceIncludeTax bool    `json:"priceIncludeTax"`
}

func (h *Handler) SetProductPrice(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "id")
	if err != nil {
		h.writeErr(w, r, store.Invalid("invalid product id"))
		return
	}
	var req setPriceRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	product, err := h.app(r).stock.SetPrice(r.Context(), id, req.Price, req.TaxRate, req.PriceIncludeTax)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.Success(w, product)
}
