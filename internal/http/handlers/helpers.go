package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"restopos-order-service/internal/store"
	"restopos-order-service/pkg/response"
)

func readPathInt64(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, key), 10, 64)
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return store.Invalid("invalid request body: %v", err)
	}
	return nil
}

// writeErr maps domain errors onto the HTTP error envelope. Anything
// unrecognized is a 500 and gets logged with its request path.
func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var verr *store.ValidationError
	var ins *store.InsufficientStockError
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.As(err, &verr):
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.Message)
	case errors.As(err, &ins):
		response.Error(w, http.StatusConflict, "INSUFFICIENT_STOCK", ins.Error())
	case errors.Is(err, store.ErrConflict):
		response.Error(w, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, store.ErrDatabaseUnavailable):
		h.Logger.Error("tenant database unavailable",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		response.Error(w, http.StatusServiceUnavailable, "INTERNAL_ERROR", "Database unavailable")
	default:
		h.Logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}
