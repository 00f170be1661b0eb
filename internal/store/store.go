package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the slice of pgxpool.Pool the stores use. Transactions started with
// Begin run every statement of a multi-step write atomically; everything else
// relies on per-statement atomicity only.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ DB = (*pgxpool.Pool)(nil)

// Stores bundles the per-entity stores for one tenant handle.
type Stores struct {
	Products  *ProductStore
	Orders    *OrderStore
	Tables    *TableStore
	Inventory *InventoryStore
	Receipts  *ReceiptStore
	Settings  *SettingsStore
	Purchases *PurchaseStore
}

func New(db DB) *Stores {
	return &Stores{
		Products:  &ProductStore{db: db},
		Orders:    &OrderStore{db: db},
		Tables:    &TableStore{db: db},
		Inventory: &InventoryStore{db: db},
		Receipts:  &ReceiptStore{db: db},
		Settings:  &SettingsStore{db: db},
		Purchases: &PurchaseStore{db: db},
	}
}
