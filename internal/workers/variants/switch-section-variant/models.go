// internal/workers/variants/switch-section-variant/models.go
package switchsectionvariant

import (
	"time"

	"site-composer/internal/service"
)

type Input struct {
	SiteID      string `json:"siteId"`
	SectionID   string `json:"sectionId,omitempty"`
	SectionType string `json:"sectionType,omitempty"`
	NewVariant  int    `json:"newVariant"`
	IsOverride  *bool  `json:"isOverride,omitempty"`
}

type Output struct {
	SectionID       string               `json:"sectionId"`
	SectionType     string               `json:"sectionType"`
	PreviousVariant int                  `json:"previousVariant"`
	NewVariant      int                  `json:"newVariant"`
	IsOverride      bool                 `json:"isOverride"`
	VariantInfo     *service.VariantInfo `json:"variantInfo"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}
