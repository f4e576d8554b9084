// internal/overrides/tracker.go
package overrides

import (
	"fmt"
	"time"

	apperrors "site-composer/internal/common/errors"
	"site-composer/internal/models"

	"github.com/google/uuid"
)

// Tracker stamps new entries for the selection log. It never modifies an existing record.
type Tracker struct {
	now   func() time.Time
	newID func() string
}

type Option func(*Tracker)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithIDGenerator replaces the uuid generator, mainly for tests.
func WithIDGenerator(newID func() string) Option {
	return func(t *Tracker) { t.newID = newID }
}

func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RecordSelection builds the log entry for a variant choice. isOverride is
// true when the user picked the variant and false when the engine did.
func (t *Tracker) RecordSelection(siteID, sectionType string, variantNumber int, isOverride bool) (models.OverrideRecord, error) {
	if siteID == "" {
		return models.OverrideRecord{}, apperrors.NewValidationError("siteId is required")
	}
	if sectionType == "" {
		return models.OverrideRecord{}, apperrors.NewValidationError("sectionType is required")
	}
	if variantNumber < 1 || variantNumber > 5 {
		return models.OverrideRecord{}, apperrors.NewInvalidVariantError(variantNumber)
	}

	return models.OverrideRecord{
		ID:            t.newID(),
		SiteID:        siteID,
		SectionType:   sectionType,
		VariantNumber: variantNumber,
		IsOverride:    isOverride,
		SelectedAt:    t.now(),
	}, nil
}

// AggregateStats counts user overrides. Engine selections are ignored; the
// most overridden section breaks ties by first appearance in records.
func AggregateStats(records []models.OverrideRecord) models.OverrideStats {
	stats := models.OverrideStats{
		OverridesBySection: make(map[string]int),
		OverridesByVariant: make(map[int]int),
	}

	var order []string
	for _, r := range records {
		if !r.IsOverride {
			continue
		}
		stats.TotalOverrides++
		if _, seen := stats.OverridesBySection[r.SectionType]; !seen {
			order = append(order, r.SectionType)
		}
		stats.OverridesBySection[r.SectionType]++
		stats.OverridesByVariant[r.VariantNumber]++
	}

	best := 0
	for _, st := range order {
		if n := stats.OverridesBySection[st]; n > best {
			best = n
			stats.MostOverriddenSection = st
		}
	}
	return stats
}

// Describe renders a one-line summary used in logs and the CLI.
func Describe(stats models.OverrideStats) string {
	if stats.TotalOverrides == 0 {
		return "no overrides recorded"
	}
	return fmt.Sprintf("%d overrides, most on %s (%d)", stats.TotalOverrides,
		stats.MostOverriddenSection, stats.OverridesBySection[stats.MostOverriddenSection])
}
