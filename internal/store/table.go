package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"restopos-order-service/internal/models"
)

type TableStore struct {
	db DB
}

func scanTable(row pgx.Row) (models.Table, error) {
	var t models.Table
	if err := row.Scan(&t.ID, &t.TableNumber, &t.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Table{}, ErrNotFound
		}
		return models.Table{}, err
	}
	return t, nil
}

func (s *TableStore) Get(ctx context.Context, id int64) (models.Table, error) {
	return scanTable(s.db.QueryRow(ctx, `select id, table_number, status from tables where id = $1`, id))
}

func (s *TableStore) List(ctx context.Context) ([]models.Table, error) {
	rows, err := s.db.Query(ctx, `select id, table_number, status from tables order by table_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make([]models.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// SetStatus is the administrative override used by order creation (occupied)
// and reconciliation (available).
func (s *TableStore) SetStatus(ctx context.Context, id int64, status string) (models.Table, error) {
	if status != models.TableAvailable && status != models.TableOccupied {
		return models.Table{}, Invalid("unknown table status %q", status)
	}
	return scanTable(s.db.QueryRow(ctx,
		`update tables set status = $2 where id = $1 returning id, table_number, status`, id, status))
}

// ReleaseIfIdle recomputes occupancy after an order on the table was paid:
// with the table row locked, count the remaining orders in the active set
// (excluding the order that just paid) and free the table only when none are
// left. The row lock serializes concurrent releases and concurrent seatings
// against the same table.
func (s *TableStore) ReleaseIfIdle(ctx context.Context, tableID int64, excludeOrderID int64) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin table release: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status string
	if err := tx.QueryRow(ctx, `select status from tables where id = $1 for update`, tableID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}

	var remaining int
	if err := tx.QueryRow(ctx, `
		select count(*) from orders
		where table_id = $1 and id <> $2 and status = any($3)
	`, tableID, excludeOrderID, models.ActiveOrderStatuses).Scan(&remaining); err != nil {
		return false, err
	}

	released := false
	if remaining == 0 {
		if _, err := tx.Exec(ctx, `update tables set status = $2 where id = $1`, tableID, models.TableAvailable); err != nil {
			return false, err
		}
		released = true
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return released, nil
}
