// Package tenant maps tenant names to database pools. Each restaurant branch
// runs against its own database; the registry owns the pools and is injected
// wherever a request needs to be routed, so nothing in the request path
// reaches for process-global state.
package tenant

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"restopos-order-service/internal/db"
	"restopos-order-service/internal/store"
)

// DefaultName is the tenant used when a request carries no tenant header.
const DefaultName = "default"

type Registry struct {
	mu    sync.RWMutex
	pools map[string]*pgxpool.Pool
	log   *zap.Logger
}

// NewRegistry connects the default pool plus one pool per named tenant URL.
// A tenant that fails to connect is skipped with a log line rather than
// failing startup; the default tenant is mandatory.
func NewRegistry(ctx context.Context, defaultURL string, tenantURLs map[string]string, log *zap.Logger) (*Registry, error) {
	pool, err := db.NewPool(ctx, defaultURL)
	if err != nil {
		return nil, fmt.Errorf("connect default tenant: %w", err)
	}

	r := &Registry{pools: map[string]*pgxpool.Pool{DefaultName: pool}, log: log}
	for name, url := range tenantURLs {
		if name == DefaultName {
			continue
		}
		p, err := db.NewPool(ctx, url)
		if err != nil {
			log.Warn("tenant database unavailable, skipping",
				zap.String("tenant", name), zap.Error(err))
			continue
		}
		r.pools[name] = p
		log.Info("tenant database connected", zap.String("tenant", name))
	}
	return r, nil
}

// Pool returns the pool for a tenant name. An empty name resolves to the
// default tenant.
func (r *Registry) Pool(name string) (*pgxpool.Pool, bool) {
	if name == "" {
		name = DefaultName
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	pool, ok := r.pools[name]
	return pool, ok
}

// Default returns the default tenant's pool.
func (r *Registry) Default() *pgxpool.Pool {
	pool, _ := r.Pool(DefaultName)
	return pool
}

// Names lists the connected tenants in stable order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.pools))
	for name := range r.pools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Verify pings one tenant's pool. An unknown tenant is ErrNotFound; a known
// tenant that fails the ping surfaces as ErrDatabaseUnavailable so the HTTP
// boundary can classify it.
func (r *Registry) Verify(ctx context.Context, name string) error {
	pool, ok := r.Pool(name)
	if !ok {
		return fmt.Errorf("tenant %q: %w", name, store.ErrNotFound)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("tenant %q: %w: %v", name, store.ErrDatabaseUnavailable, err)
	}
	return nil
}

// Health pings every tenant pool and reports per-tenant status.
func (r *Registry) Health(ctx context.Context) map[string]string {
	out := make(map[string]string)
	for _, name := range r.Names() {
		if err := r.Verify(ctx, name); err != nil {
			out[name] = "unavailable"
		} else {
			out[name] = "ok"
		}
	}
	return out
}

// Close closes every pool. Call on shutdown only.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pool := range r.pools {
		pool.Close()
	}
	r.pools = map[string]*pgxpool.Pool{}
}

type contextKey struct{}

// WithTenant stores the resolved tenant name on the request context.
func WithTenant(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, contextKey{}, name)
}

// FromContext returns the tenant name set by the routing middleware, or the
// default name when none was set.
func FromContext(ctx context.Context) string {
	if name, ok := ctx.Value(contextKey{}).(string); ok && name != "" {
		return name
	}
	return DefaultName
}
