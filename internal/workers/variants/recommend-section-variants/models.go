// internal/workers/variants/recommend-section-variants/models.go
package recommendsectionvariants

import "site-composer/internal/models"

type Input struct {
	SiteID          string                  `json:"siteId"`
	SectionType     string                  `json:"sectionType,omitempty"`
	Sections        []string                `json:"sections,omitempty"`
	Apply           bool                    `json:"apply,omitempty"`
	BusinessProfile *models.BusinessProfile `json:"businessProfile,omitempty"`
}

type Output struct {
	Selections       []SelectionOutput `json:"variantSelections"`
	OverallReasoning string            `json:"overallReasoning,omitempty"`
	Applied          bool              `json:"variantsApplied"`
}

type SelectionOutput struct {
	SectionType     string `json:"sectionType"`
	SelectedVariant int    `json:"selectedVariant"`
	Score           int    `json:"score"`
	Reasoning       string `json:"reasoning"`
	ComponentKey    string `json:"componentKey,omitempty"`
	Alternatives    []int  `json:"alternatives"`
}
