package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"restopos-order-service/internal/models"
)

type SettingsStore struct {
	db DB
}

// Get returns the single store-settings row. ErrNotFound when the tenant has
// not been configured yet; callers treat that as "defaults apply".
func (s *SettingsStore) Get(ctx context.Context) (models.StoreSettings, error) {
	var (
		settings models.StoreSettings
		taxRate  pgtype.Text
	)
	err := s.db.QueryRow(ctx, `
		select store_name, tax_rate, price_includes_tax from store_settings limit 1
	`).Scan(&settings.StoreName, &taxRate, &settings.PriceIncludesTax)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.StoreSettings{}, ErrNotFound
		}
		return models.StoreSettings{}, err
	}
	if taxRate.Valid {
		settings.TaxRate = taxRate.String
	}
	return settings, nil
}
