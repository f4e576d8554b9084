// internal/models/site.go
package models

import (
	"encoding/json"
	"time"
)

// BusinessProfile is the extracted description of the business a site is built for.
type BusinessProfile struct {
	BusinessName     string   `json:"businessName,omitempty"`
	Industry         string   `json:"industry,omitempty"`
	BrandPersonality []string `json:"brandPersonality"`
	TargetAudience   string   `json:"targetAudience,omitempty"`
	Services         []string `json:"services,omitempty"`
}

// SiteSection is one ordered block of a site draft.
type SiteSection struct {
	ID        string          `json:"id" db:"id"`
	Type      string          `json:"type" db:"type"`
	Order     int             `json:"order" db:"order"`
	Variant   int             `json:"variant" db:"variant"`
	Content   json.RawMessage `json:"content,omitempty" db:"content"`
	IsVisible bool            `json:"isVisible" db:"is_visible"`
}

// Site is a draft website: a business profile plus its ordered sections.
type Site struct {
	ID              string          `json:"id" db:"id"`
	BusinessProfile BusinessProfile `json:"businessProfile" db:"business_profile"`
	Sections        []SiteSection   `json:"sections" db:"sections"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// FindSection returns the index of the section with sectionID, falling back to the first section of sectionType. -1 when neither matches.
func (s *Site) FindSection(sectionID, sectionType string) int {
	if sectionID != "" {
		for i, sec := range s.Sections {
			if sec.ID == sectionID {
				return i
			}
		}
	}
	if sectionType != "" {
		for i, sec := range s.Sections {
			if sec.Type == sectionType {
				return i
			}
		}
	}
	return -1
}

// CurrentVariant returns the variant of the first section of the given type, or 0.
func (s *Site) CurrentVariant(sectionType string) int {
	if i := s.FindSection("", sectionType); i >= 0 {
		return s.Sections[i].Variant
	}
	return 0
}
