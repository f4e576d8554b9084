// internal/api/variants.go
package api

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	apperrors "site-composer/internal/common/errors"
	"site-composer/internal/common/logger"
	"site-composer/internal/common/validation"
	"site-composer/internal/models"
	"site-composer/internal/service"
	"site-composer/internal/variants"

	"github.com/gin-gonic/gin"
)

// Composer is the part of service.Composer the HTTP layer needs.
type Composer interface {
	RecommendSection(ctx context.Context, siteID, sectionType string, profile *models.BusinessProfile) (*service.SectionRecommendation, error)
	RecommendSite(ctx context.Context, req service.SiteRecommendRequest) (*service.SiteRecommendation, error)
	ListVariants(ctx context.Context, siteID, sectionType string) (*service.VariantListing, error)
	SwitchVariant(ctx context.Context, req service.SwitchRequest) (*service.SwitchResult, error)
	OverrideStats(ctx context.Context, siteID string) (models.OverrideStats, error)
	AddSection(ctx context.Context, siteID string, req service.AddSectionRequest) (models.SiteSection, error)
	DeleteSection(ctx context.Context, siteID, sectionID string) error
	ReorderSections(ctx context.Context, siteID string, sectionIDs []string) ([]models.SiteSection, error)
}

type VariantHandler struct {
	composer          Composer
	batchAlternatives int
	logger            logger.Logger
}

func NewVariantHandler(composer Composer, batchAlternatives int, log logger.Logger) *VariantHandler {
	if batchAlternatives <= 0 {
		batchAlternatives = 2
	}
	return &VariantHandler{
		composer:          composer,
		batchAlternatives: batchAlternatives,
		logger:            log.WithFields(map[string]interface{}{"handler": "VariantHandler"}),
	}
}

type recommendBody struct {
	SectionType string   `json:"sectionType"`
	Sections    []string `json:"sections"`
	Apply       bool     `json:"apply"`
}

type recommendationView struct {
	SelectedVariant int    `json:"selectedVariant"`
	Score           int    `json:"score"`
	Reasoning       string `json:"reasoning"`
	ComponentKey    string `json:"componentKey"`
}

type alternativeView struct {
	Variant     int      `json:"variant"`
	Score       int      `json:"score"`
	Description string   `json:"description,omitempty"`
	Traits      []string `json:"traits,omitempty"`
}

type scoredView struct {
	Variant       int    `json:"variant"`
	Score         int    `json:"score"`
	Description   string `json:"description"`
	IsRecommended bool   `json:"isRecommended"`
}

type sectionRecommendResponse struct {
	Success        bool               `json:"success"`
	SectionType    string             `json:"sectionType"`
	Recommendation recommendationView `json:"recommendation"`
	Alternatives   []alternativeView  `json:"alternatives"`
	AllVariants    []scoredView       `json:"allVariants"`
}

type selectionView struct {
	SectionType     string            `json:"sectionType"`
	SelectedVariant int               `json:"selectedVariant"`
	Score           int               `json:"score"`
	Reasoning       string            `json:"reasoning"`
	Alternatives    []alternativeView `json:"alternatives"`
}

type siteRecommendResponse struct {
	Success          bool            `json:"success"`
	Selections       []selectionView `json:"selections"`
	OverallReasoning string          `json:"overallReasoning"`
	Applied          bool            `json:"applied,omitempty"`
	UpdatedAt        *time.Time      `json:"updatedAt,omitempty"`
}

// Recommend handles POST /api/sites/:siteId/variants/recommend. A lone
// sectionType gets the detailed single-section answer; anything else is a
// batch over the listed sections or the default set.
func (h *VariantHandler) Recommend(c *gin.Context) {
	siteID := c.Param("siteId")

	var body recommendBody
	if err := bindBody(c, service.RecommendRequestSchema, &body); err != nil {
		RespondError(c, err)
		return
	}

	sections := body.Sections
	if len(sections) == 0 && body.SectionType != "" {
		if !body.Apply {
			h.recommendSection(c, siteID, body.SectionType)
			return
		}
		sections = []string{body.SectionType}
	}

	rec, err := h.composer.RecommendSite(c.Request.Context(), service.SiteRecommendRequest{
		SiteID:   siteID,
		Sections: sections,
		Apply:    body.Apply,
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	resp := siteRecommendResponse{
		Success:          true,
		Selections:       make([]selectionView, 0, len(rec.Selections)),
		OverallReasoning: rec.OverallReasoning,
		Applied:          rec.Applied,
	}
	if rec.Applied {
		resp.UpdatedAt = &rec.UpdatedAt
	}
	for _, sel := range rec.Selections {
		view := selectionView{
			SectionType:     string(sel.SectionType),
			SelectedVariant: sel.SelectedVariant,
			Score:           variants.Percent(sel.Score),
			Reasoning:       sel.Reasoning,
			Alternatives:    []alternativeView{},
		}
		for _, alt := range sel.TopAlternatives(h.batchAlternatives) {
			view.Alternatives = append(view.Alternatives, alternativeView{
				Variant: alt.Variant,
				Score:   variants.Percent(alt.Score),
			})
		}
		resp.Selections = append(resp.Selections, view)
	}
	RespondOK(c, resp)
}

func (h *VariantHandler) recommendSection(c *gin.Context, siteID, sectionType string) {
	rec, err := h.composer.RecommendSection(c.Request.Context(), siteID, sectionType, nil)
	if err != nil {
		RespondError(c, err)
		return
	}

	sel := rec.Selection
	resp := sectionRecommendResponse{
		Success:     true,
		SectionType: string(rec.SectionType),
		Recommendation: recommendationView{
			SelectedVariant: sel.SelectedVariant,
			Score:           variants.Percent(sel.Score),
			Reasoning:       sel.Reasoning,
			ComponentKey:    rec.ComponentKey,
		},
		Alternatives: make([]alternativeView, 0, len(sel.Alternatives)),
		AllVariants:  make([]scoredView, 0, len(rec.Variants)),
	}
	for _, alt := range sel.Alternatives {
		view := alternativeView{Variant: alt.Variant, Score: variants.Percent(alt.Score)}
		if d, ok := rec.Descriptor(alt.Variant); ok {
			view.Description = d.Description
			view.Traits = d.Traits
		}
		resp.Alternatives = append(resp.Alternatives, view)
	}
	for _, v := range rec.Variants {
		resp.AllVariants = append(resp.AllVariants, scoredView{
			Variant:       v.Variant,
			Score:         variants.Percent(v.Score),
			Description:   v.Description,
			IsRecommended: v.IsRecommended,
		})
	}
	RespondOK(c, resp)
}

type variantOption struct {
	Variant       int      `json:"variant"`
	MatchScore    int      `json:"matchScore"`
	Description   string   `json:"description"`
	Traits        []string `json:"traits"`
	BestFor       []string `json:"bestFor"`
	IsRecommended bool     `json:"isRecommended"`
	IsCurrent     bool     `json:"isCurrent"`
}

type listResponse struct {
	Success        bool            `json:"success"`
	SectionType    string          `json:"sectionType"`
	CurrentVariant int             `json:"currentVariant"`
	Variants       []variantOption `json:"variants"`
}

// List handles GET /api/sites/:siteId/variants?sectionType=hero.
func (h *VariantHandler) List(c *gin.Context) {
	listing, err := h.composer.ListVariants(c.Request.Context(), c.Param("siteId"), c.Query("sectionType"))
	if err != nil {
		RespondError(c, err)
		return
	}

	resp := listResponse{
		Success:        true,
		SectionType:    string(listing.SectionType),
		CurrentVariant: listing.CurrentVariant,
		Variants:       make([]variantOption, 0, len(listing.Variants)),
	}
	for _, v := range listing.Variants {
		resp.Variants = append(resp.Variants, variantOption{
			Variant:       v.Variant,
			MatchScore:    variants.Percent(v.Score),
			Description:   v.Description,
			Traits:        v.Traits,
			BestFor:       v.BestFor,
			IsRecommended: v.IsRecommended,
			IsCurrent:     v.Variant == listing.CurrentVariant,
		})
	}
	RespondOK(c, resp)
}

type switchBody struct {
	SectionID   string `json:"sectionId"`
	SectionType string `json:"sectionType"`
	NewVariant  int    `json:"newVariant"`
	IsOverride  *bool  `json:"isOverride"`
}

type switchResponse struct {
	Success         bool                 `json:"success"`
	SectionID       string               `json:"sectionId"`
	SectionType     string               `json:"sectionType"`
	PreviousVariant int                  `json:"previousVariant"`
	NewVariant      int                  `json:"newVariant"`
	IsOverride      bool                 `json:"isOverride"`
	VariantInfo     *service.VariantInfo `json:"variantInfo"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// Switch handles PATCH /api/sites/:siteId/variants. isOverride defaults to true.
func (h *VariantHandler) Switch(c *gin.Context) {
	var body switchBody
	if err := bindBody(c, service.SwitchRequestSchema, &body); err != nil {
		RespondError(c, err)
		return
	}

	isOverride := true
	if body.IsOverride != nil {
		isOverride = *body.IsOverride
	}

	res, err := h.composer.SwitchVariant(c.Request.Context(), service.SwitchRequest{
		SiteID:      c.Param("siteId"),
		SectionID:   body.SectionID,
		SectionType: body.SectionType,
		NewVariant:  body.NewVariant,
		IsOverride:  isOverride,
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	RespondOK(c, switchResponse{
		Success:         true,
		SectionID:       res.SectionID,
		SectionType:     res.SectionType,
		PreviousVariant: res.PreviousVariant,
		NewVariant:      res.NewVariant,
		IsOverride:      res.IsOverride,
		VariantInfo:     res.VariantInfo,
		UpdatedAt:       res.UpdatedAt,
	})
}

// OverrideStats handles GET /api/sites/:siteId/variants/overrides/stats.
func (h *VariantHandler) OverrideStats(c *gin.Context) {
	stats, err := h.composer.OverrideStats(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "stats": stats})
}

// bindBody validates the raw body against schema and decodes it into dst.
// An empty body is treated as {}.
func bindBody(c *gin.Context, schema validation.JSONSchema, dst any) error {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return apperrors.NewValidationError("unable to read request body")
	}
	if strings.TrimSpace(string(raw)) == "" {
		raw = []byte("{}")
	}
	if err := validation.Validate(raw, schema); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	return nil
}
