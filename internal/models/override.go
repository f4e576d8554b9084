// internal/models/override.go
package models

import "time"

// OverrideRecord is one entry of the append-only variant selection log.
type OverrideRecord struct {
	ID            string    `json:"id" db:"id"`
	SiteID        string    `json:"siteId" db:"site_id"`
	SectionType   string    `json:"sectionType" db:"section_type"`
	VariantNumber int       `json:"variantNumber" db:"variant_number"`
	IsOverride    bool      `json:"isOverride" db:"is_override"`
	SelectedAt    time.Time `json:"selectedAt" db:"selected_at"`
}

// OverrideStats aggregates user overrides for analytics.
type OverrideStats struct {
	TotalOverrides        int            `json:"totalOverrides"`
	OverridesBySection    map[string]int `json:"overridesBySection"`
	OverridesByVariant    map[int]int    `json:"overridesByVariant"`
	MostOverriddenSection string         `json:"mostOverriddenSection,omitempty"`
}
