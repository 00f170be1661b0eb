package middleware

import (
	"net/http"
	"strings"

	"restopos-order-service/internal/tenant"
	"restopos-order-service/pkg/response"
)

// Tenant resolves which branch database a request targets, from the
// X-Tenant-ID header first and the host subdomain as a fallback. Requests
// naming a tenant the registry does not know are rejected before any handler
// runs.
func Tenant(registry *tenant.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := strings.TrimSpace(r.Header.Get("X-Tenant-ID"))
			if name == "" {
				name = subdomain(r.Host)
			}
			if name == "" {
				name = tenant.DefaultName
			}

			if _, ok := registry.Pool(name); !ok {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Unknown tenant: "+name)
				return
			}

			next.ServeHTTP(w, r.WithContext(tenant.WithTenant(r.Context(), name)))
		})
	}
}

// subdomain extracts the first host label when the host has at least three,
// e.g. "branch-a.pos.example.com" -> "branch-a". Bare domains and IPs
// resolve to the default tenant.
func subdomain(host string) string {
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		return ""
	}
	label := strings.TrimSpace(parts[0])
	if label == "" || label == "www" || label == "api" {
		return ""
	}
	return label
}
