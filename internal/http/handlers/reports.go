package handlers

import (
	"net/http"
	"strings"
	"time"

	"restopos-order-service/internal/store"
	"restopos-order-service/pkg/response"
)

// DashboardReport summarizes orders placed in [start, end). Bounds default to
// the current day when absent and accept either date-only or RFC 3339 values.
func (h *Handler) DashboardReport(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	start, err := parseTimeParam(r.URL.Query().Get("start"), dayStart)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	end, err := parseTimeParam(r.URL.Query().Get("end"), dayStart.AddDate(0, 0, 1))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if !end.After(start) {
		h.writeErr(w, r, store.Invalid("end must be after start"))
		return
	}

	dash, err := h.app(r).reports.Range(r.Context(), start, end)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	response.Success(w, dash)
}

func parseTimeParam(raw string, fallback time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, store.Invalid("invalid time %q, want RFC 3339 or YYYY-MM-DD", raw)
}
