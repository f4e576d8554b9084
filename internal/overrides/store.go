// internal/overrides/store.go
package overrides

import (
	"context"
	"database/sql"
	"fmt"

	apperrors "site-composer/internal/common/errors"
	"site-composer/internal/models"
)

// Store persists the append-only selection log in Postgres.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts a record. Records are never updated or deleted.
func (s *Store) Append(ctx context.Context, record models.OverrideRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO variant_overrides (id, site_id, section_type, variant_number, is_override, selected_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		record.ID,
		record.SiteID,
		record.SectionType,
		record.VariantNumber,
		record.IsOverride,
		record.SelectedAt,
	)
	if err != nil {
		return apperrors.NewPersistenceFailedError("append override", err)
	}
	return nil
}

// ListBySite returns a site's records oldest first.
func (s *Store) ListBySite(ctx context.Context, siteID string) ([]models.OverrideRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, site_id, section_type, variant_number, is_override, selected_at
		FROM variant_overrides
		WHERE site_id = $1
		ORDER BY selected_at ASC, id ASC`, siteID)
	if err != nil {
		return nil, apperrors.NewPersistenceFailedError("list overrides", err)
	}
	defer rows.Close()

	var records []models.OverrideRecord
	for rows.Next() {
		var r models.OverrideRecord
		if err := rows.Scan(&r.ID, &r.SiteID, &r.SectionType, &r.VariantNumber, &r.IsOverride, &r.SelectedAt); err != nil {
			return nil, apperrors.NewPersistenceFailedError("scan override", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceFailedError("list overrides", fmt.Errorf("rows: %w", err))
	}
	return records, nil
}
