// internal/sites/sections.go
package sites

import (
	"encoding/json"
	"sort"

	apperrors "site-composer/internal/common/errors"
	"site-composer/internal/content"
	"site-composer/internal/models"
	"site-composer/internal/variants"

	"github.com/google/uuid"
)

// Renumber returns sections sorted by their current order with Order reset to 0..n-1.
func Renumber(sections []models.SiteSection) []models.SiteSection {
	out := make([]models.SiteSection, len(sections))
	copy(out, sections)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	for i := range out {
		out[i].Order = i
	}
	return out
}

// AddSection validates content and appends a new visible section at the end.
// A zero variant means the default variant.
func AddSection(sections []models.SiteSection, sectionType string, raw json.RawMessage, variant int) ([]models.SiteSection, models.SiteSection, error) {
	st, err := variants.ParseSectionType(sectionType)
	if err != nil {
		return nil, models.SiteSection{}, apperrors.NewUnknownSectionTypeError(sectionType)
	}
	if variant == 0 {
		variant = variants.DefaultVariant
	}
	if !variants.IsValidVariant(variant) {
		return nil, models.SiteSection{}, apperrors.NewInvalidVariantError(variant)
	}
	if _, err := content.Validate(string(st), raw); err != nil {
		return nil, models.SiteSection{}, err
	}

	out := Renumber(sections)
	section := models.SiteSection{
		ID:        uuid.New().String(),
		Type:      string(st),
		Order:     len(out),
		Variant:   variant,
		Content:   raw,
		IsVisible: true,
	}
	return append(out, section), section, nil
}

// RemoveSection deletes a section and closes the gap in the ordering.
func RemoveSection(sections []models.SiteSection, siteID, sectionID string) ([]models.SiteSection, error) {
	out := make([]models.SiteSection, 0, len(sections))
	found := false
	for _, s := range sections {
		if s.ID == sectionID {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		return nil, apperrors.NewSectionNotFoundError(siteID, sectionID)
	}
	return Renumber(out), nil
}

// ReorderSections applies a new order given as the full list of section ids.
func ReorderSections(sections []models.SiteSection, siteID string, orderedIDs []string) ([]models.SiteSection, error) {
	if len(orderedIDs) != len(sections) {
		return nil, apperrors.NewValidationError("sectionIds must list every section exactly once")
	}
	byID := make(map[string]models.SiteSection, len(sections))
	for _, s := range sections {
		byID[s.ID] = s
	}

	out := make([]models.SiteSection, 0, len(sections))
	seen := make(map[string]bool, len(orderedIDs))
	for i, id := range orderedIDs {
		s, ok := byID[id]
		if !ok {
			return nil, apperrors.NewSectionNotFoundError(siteID, id)
		}
		if seen[id] {
			return nil, apperrors.NewValidationError("sectionIds must list every section exactly once")
		}
		seen[id] = true
		s.Order = i
		out = append(out, s)
	}
	return out, nil
}
