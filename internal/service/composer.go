// internal/service/composer.go
package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"site-composer/internal/common/config"
	apperrors "site-composer/internal/common/errors"
	"site-composer/internal/common/logger"
	"site-composer/internal/common/metrics"
	"site-composer/internal/common/observability"
	"site-composer/internal/models"
	"site-composer/internal/overrides"
	"site-composer/internal/sites"
	"site-composer/internal/variants"

	"go.opentelemetry.io/otel/attribute"
)

type SiteRepository interface {
	GetSite(ctx context.Context, siteID string) (*models.Site, error)
	GetSiteForUpdate(ctx context.Context, siteID string) (*models.Site, error)
	SaveSections(ctx context.Context, siteID string, sections []models.SiteSection) (time.Time, error)
}

type OverrideRepository interface {
	Append(ctx context.Context, record models.OverrideRecord) error
	ListBySite(ctx context.Context, siteID string) ([]models.OverrideRecord, error)
}

type SiteLocker interface {
	Acquire(ctx context.Context, siteID string) (func(context.Context) error, error)
}

type OverrideIndexer interface {
	Index(ctx context.Context, record models.OverrideRecord) error
}

type OverridePublisher interface {
	PublishOverride(ctx context.Context, record models.OverrideRecord) error
}

// Dependencies wires a Composer. Locker, Indexer, Publisher and
// Observability are optional.
type Dependencies struct {
	Sites             SiteRepository
	Overrides         OverrideRepository
	Locker            SiteLocker
	Indexer           OverrideIndexer
	Publisher         OverridePublisher
	Selector          *variants.Selector
	Tracker           *overrides.Tracker
	Registry          variants.RenderRegistry
	Observability     *observability.Observability
	DefaultSections   []string
	BatchAlternatives int
}

// Composer runs variant recommendations and section edits against stored sites.
type Composer struct {
	deps   Dependencies
	obs    *observability.Observability
	logger logger.Logger
}

func New(deps Dependencies, log logger.Logger) *Composer {
	if deps.Selector == nil {
		deps.Selector = variants.NewSelector(nil)
	}
	if deps.Tracker == nil {
		deps.Tracker = overrides.NewTracker()
	}
	if deps.Registry == nil {
		deps.Registry = variants.NewComponentRegistry()
	}
	if len(deps.DefaultSections) == 0 {
		deps.DefaultSections = append([]string(nil), config.DefaultSections...)
	}
	if deps.BatchAlternatives <= 0 {
		deps.BatchAlternatives = 2
	}
	obs := deps.Observability
	if obs == nil {
		obs = &observability.Observability{}
	}
	return &Composer{deps: deps, obs: obs, logger: log}
}

type SectionRecommendation struct {
	SectionType  variants.SectionType
	Selection    variants.Selection
	ComponentKey string
	Variants     []variants.ScoredVariant
}

// Descriptor returns the ranked row for variant n, if present.
func (r *SectionRecommendation) Descriptor(n int) (variants.ScoredVariant, bool) {
	for _, v := range r.Variants {
		if v.Variant == n {
			return v, true
		}
	}
	return variants.ScoredVariant{}, false
}

// RecommendSection scores all variants of one section type. When profile is
// nil the site's stored business profile is used.
func (c *Composer) RecommendSection(ctx context.Context, siteID, sectionType string, profile *models.BusinessProfile) (*SectionRecommendation, error) {
	ctx, span := c.obs.StartSpan(ctx, "composer.RecommendSection", attribute.String("sectionType", sectionType))
	defer span.End()
	started := time.Now()

	if sectionType == "" {
		return nil, apperrors.NewValidationError("sectionType is required")
	}
	st, err := variants.ParseSectionType(sectionType)
	if err != nil {
		return nil, apperrors.NewUnknownSectionTypeError(sectionType)
	}
	p, err := c.resolveProfile(ctx, siteID, profile)
	if err != nil {
		return nil, err
	}

	sel, err := c.deps.Selector.SelectVariant(string(st), p.Industry, *p)
	if err != nil {
		return nil, apperrors.NewUnknownSectionTypeError(sectionType)
	}
	all, err := c.deps.Selector.AllVariantsWithScores(string(st), p.Industry, *p)
	if err != nil {
		return nil, apperrors.NewUnknownSectionTypeError(sectionType)
	}

	component, _ := c.deps.Registry.Resolve(sel.RenderKey())
	c.recordSelection(ctx, sel)
	c.obs.RecordSelectionDuration(ctx, time.Since(started), "section")

	c.logger.Info("section variant recommended", map[string]interface{}{
		"siteId":      siteID,
		"sectionType": st,
		"variant":     sel.SelectedVariant,
		"score":       sel.Score,
	})

	return &SectionRecommendation{
		SectionType:  st,
		Selection:    sel,
		ComponentKey: component,
		Variants:     all,
	}, nil
}

type SiteRecommendRequest struct {
	SiteID   string
	Sections []string
	Profile  *models.BusinessProfile
	Apply    bool
}

type SiteRecommendation struct {
	variants.SiteSelection
	Applied   bool
	UpdatedAt time.Time
}

// RecommendSite selects variants for a list of section types, the default
// seven when none are given. With Apply the picks are written to the site.
func (c *Composer) RecommendSite(ctx context.Context, req SiteRecommendRequest) (*SiteRecommendation, error) {
	ctx, span := c.obs.StartSpan(ctx, "composer.RecommendSite", attribute.Bool("apply", req.Apply))
	defer span.End()
	started := time.Now()

	sectionTypes := req.Sections
	if len(sectionTypes) == 0 {
		sectionTypes = c.deps.DefaultSections
	}
	for _, raw := range sectionTypes {
		if !variants.IsKnownSectionType(raw) {
			return nil, apperrors.NewUnknownSectionTypeError(raw)
		}
	}
	if req.Apply && req.SiteID == "" {
		return nil, apperrors.NewValidationError("siteId is required to apply selections")
	}

	profile, err := c.resolveProfile(ctx, req.SiteID, req.Profile)
	if err != nil {
		return nil, err
	}

	selection, err := c.deps.Selector.SelectVariantsForSite(sectionTypes, profile.Industry, *profile)
	if err != nil {
		return nil, apperrors.NewUnknownSectionTypeError(err.Error())
	}
	for i := range selection.Selections {
		c.recordSelection(ctx, selection.Selections[i])
	}
	c.obs.RecordSelectionDuration(ctx, time.Since(started), "site")

	result := &SiteRecommendation{SiteSelection: selection}
	if req.Apply {
		var (
			applied []models.SiteSection
			touched []int
		)
		updatedAt, err := c.mutateSite(ctx, req.SiteID, func(site *models.Site) ([]models.SiteSection, error) {
			applied, touched = variants.ApplySelections(site.Sections, selection)
			return applied, nil
		})
		if err != nil {
			return nil, err
		}
		result.Applied = true
		result.UpdatedAt = updatedAt

		for _, i := range touched {
			if err := c.trackSelection(ctx, req.SiteID, applied[i].Type, applied[i].Variant, false); err != nil {
				return nil, err
			}
		}
	}

	c.logger.Info("site variants recommended", map[string]interface{}{
		"siteId":   req.SiteID,
		"sections": len(selection.Selections),
		"applied":  req.Apply,
	})
	return result, nil
}

type VariantListing struct {
	SectionType    variants.SectionType
	CurrentVariant int
	Variants       []variants.ScoredVariant
}

// ListVariants returns all five variants of a section type ranked against the
// site's profile, alongside the variant the site currently uses.
func (c *Composer) ListVariants(ctx context.Context, siteID, sectionType string) (*VariantListing, error) {
	ctx, span := c.obs.StartSpan(ctx, "composer.ListVariants", attribute.String("sectionType", sectionType))
	defer span.End()

	if sectionType == "" {
		return nil, apperrors.NewValidationError("sectionType query parameter is required")
	}
	st, err := variants.ParseSectionType(sectionType)
	if err != nil {
		return nil, apperrors.NewUnknownSectionTypeError(sectionType)
	}
	site, err := c.loadSite(ctx, siteID)
	if err != nil {
		return nil, err
	}

	all, err := c.deps.Selector.AllVariantsWithScores(string(st), site.BusinessProfile.Industry, site.BusinessProfile)
	if err != nil {
		return nil, apperrors.NewUnknownSectionTypeError(sectionType)
	}
	return &VariantListing{
		SectionType:    st,
		CurrentVariant: site.CurrentVariant(string(st)),
		Variants:       all,
	}, nil
}

type SwitchRequest struct {
	SiteID      string
	SectionID   string
	SectionType string
	NewVariant  int
	IsOverride  bool
}

type VariantInfo struct {
	Description string   `json:"description"`
	Traits      []string `json:"traits"`
	MatchScore  int      `json:"matchScore"`
}

type SwitchResult struct {
	SectionID       string
	SectionType     string
	PreviousVariant int
	NewVariant      int
	IsOverride      bool
	VariantInfo     *VariantInfo
	UpdatedAt       time.Time
}

// SwitchVariant sets the variant of one section, matched by id or else by
// the first section of the given type. Bad input is rejected before any
// store or lock is touched.
func (c *Composer) SwitchVariant(ctx context.Context, req SwitchRequest) (*SwitchResult, error) {
	ctx, span := c.obs.StartSpan(ctx, "composer.SwitchVariant",
		attribute.String("siteId", req.SiteID),
		attribute.Int("newVariant", req.NewVariant),
	)
	defer span.End()

	if err := validateSwitch(req); err != nil {
		return nil, err
	}

	result := &SwitchResult{NewVariant: req.NewVariant, IsOverride: req.IsOverride}
	var profile models.BusinessProfile
	updatedAt, err := c.mutateSite(ctx, req.SiteID, func(site *models.Site) ([]models.SiteSection, error) {
		idx := site.FindSection(req.SectionID, req.SectionType)
		if idx < 0 {
			ref := req.SectionID
			if ref == "" {
				ref = req.SectionType
			}
			return nil, apperrors.NewSectionNotFoundError(req.SiteID, ref)
		}
		sections := append([]models.SiteSection(nil), site.Sections...)
		result.SectionID = sections[idx].ID
		result.SectionType = sections[idx].Type
		result.PreviousVariant = sections[idx].Variant
		sections[idx].Variant = req.NewVariant
		profile = site.BusinessProfile
		return sections, nil
	})
	if err != nil {
		return nil, err
	}
	result.UpdatedAt = updatedAt

	if req.IsOverride {
		if err := c.trackSelection(ctx, req.SiteID, result.SectionType, req.NewVariant, true); err != nil {
			return nil, err
		}
		c.obs.RecordOverride(ctx, result.SectionType, req.NewVariant)
	}
	metrics.VariantSwitches.WithLabelValues(result.SectionType, strconv.FormatBool(req.IsOverride)).Inc()

	if st, err := variants.ParseSectionType(result.SectionType); err == nil {
		if d, ok := c.deps.Selector.Catalog().Variant(st, req.NewVariant); ok {
			match := variants.Score(profile.BrandPersonality, &d)
			result.VariantInfo = &VariantInfo{
				Description: d.Description,
				Traits:      d.Traits,
				MatchScore:  variants.Percent(match.Score),
			}
		}
	}

	c.logger.Info("section variant switched", map[string]interface{}{
		"siteId":          req.SiteID,
		"sectionId":       result.SectionID,
		"sectionType":     result.SectionType,
		"previousVariant": result.PreviousVariant,
		"newVariant":      result.NewVariant,
		"isOverride":      result.IsOverride,
	})
	return result, nil
}

func validateSwitch(req SwitchRequest) error {
	if req.SiteID == "" {
		return apperrors.NewValidationError("siteId is required")
	}
	if req.SectionID == "" && req.SectionType == "" {
		return apperrors.NewValidationError("sectionId or sectionType is required")
	}
	if req.SectionType != "" && !variants.IsKnownSectionType(req.SectionType) {
		return apperrors.NewUnknownSectionTypeError(req.SectionType)
	}
	if !variants.IsValidVariant(req.NewVariant) {
		return apperrors.NewInvalidVariantError(req.NewVariant)
	}
	return nil
}

// OverrideStats aggregates the override log of a site.
func (c *Composer) OverrideStats(ctx context.Context, siteID string) (models.OverrideStats, error) {
	ctx, span := c.obs.StartSpan(ctx, "composer.OverrideStats")
	defer span.End()

	if _, err := c.loadSite(ctx, siteID); err != nil {
		return models.OverrideStats{}, err
	}
	records, err := c.deps.Overrides.ListBySite(ctx, siteID)
	if err != nil {
		return models.OverrideStats{}, err
	}
	return overrides.AggregateStats(records), nil
}

type AddSectionRequest struct {
	Type    string
	Content json.RawMessage
	Variant int
}

// AddSection validates the content and appends a new section to the site.
func (c *Composer) AddSection(ctx context.Context, siteID string, req AddSectionRequest) (models.SiteSection, error) {
	ctx, span := c.obs.StartSpan(ctx, "composer.AddSection", attribute.String("sectionType", req.Type))
	defer span.End()

	var added models.SiteSection
	_, err := c.mutateSite(ctx, siteID, func(site *models.Site) ([]models.SiteSection, error) {
		sections, section, err := sites.AddSection(site.Sections, req.Type, req.Content, req.Variant)
		if err != nil {
			return nil, err
		}
		added = section
		return sections, nil
	})
	if err != nil {
		return models.SiteSection{}, err
	}

	c.logger.Info("section added", map[string]interface{}{
		"siteId":      siteID,
		"sectionId":   added.ID,
		"sectionType": added.Type,
	})
	return added, nil
}

func (c *Composer) DeleteSection(ctx context.Context, siteID, sectionID string) error {
	ctx, span := c.obs.StartSpan(ctx, "composer.DeleteSection")
	defer span.End()

	_, err := c.mutateSite(ctx, siteID, func(site *models.Site) ([]models.SiteSection, error) {
		return sites.RemoveSection(site.Sections, siteID, sectionID)
	})
	if err != nil {
		return err
	}
	c.logger.Info("section deleted", map[string]interface{}{"siteId": siteID, "sectionId": sectionID})
	return nil
}

func (c *Composer) ReorderSections(ctx context.Context, siteID string, sectionIDs []string) ([]models.SiteSection, error) {
	ctx, span := c.obs.StartSpan(ctx, "composer.ReorderSections")
	defer span.End()

	var reordered []models.SiteSection
	_, err := c.mutateSite(ctx, siteID, func(site *models.Site) ([]models.SiteSection, error) {
		out, err := sites.ReorderSections(site.Sections, siteID, sectionIDs)
		reordered = out
		return out, err
	})
	if err != nil {
		return nil, err
	}
	return reordered, nil
}

// mutateSite loads the site from the database under its switch lock, applies
// fn and saves the returned sections.
func (c *Composer) mutateSite(ctx context.Context, siteID string, fn func(*models.Site) ([]models.SiteSection, error)) (time.Time, error) {
	if siteID == "" {
		return time.Time{}, apperrors.NewValidationError("siteId is required")
	}

	if c.deps.Locker != nil {
		release, err := c.deps.Locker.Acquire(ctx, siteID)
		if err != nil {
			return time.Time{}, err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				c.logger.Warn("failed to release site lock", map[string]interface{}{
					"siteId": siteID,
					"error":  err.Error(),
				})
			}
		}()
	}

	site, err := c.deps.Sites.GetSiteForUpdate(ctx, siteID)
	if err != nil {
		return time.Time{}, err
	}
	sections, err := fn(site)
	if err != nil {
		return time.Time{}, err
	}
	return c.deps.Sites.SaveSections(ctx, siteID, sections)
}

func (c *Composer) loadSite(ctx context.Context, siteID string) (*models.Site, error) {
	if siteID == "" {
		return nil, apperrors.NewValidationError("siteId is required")
	}
	return c.deps.Sites.GetSite(ctx, siteID)
}

func (c *Composer) resolveProfile(ctx context.Context, siteID string, profile *models.BusinessProfile) (*models.BusinessProfile, error) {
	if profile != nil {
		return profile, nil
	}
	site, err := c.loadSite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	return &site.BusinessProfile, nil
}

// trackSelection appends a selection record and fans it out to analytics.
// Only the append can fail the caller.
func (c *Composer) trackSelection(ctx context.Context, siteID, sectionType string, variant int, isOverride bool) error {
	record, err := c.deps.Tracker.RecordSelection(siteID, sectionType, variant, isOverride)
	if err != nil {
		return err
	}
	if err := c.deps.Overrides.Append(ctx, record); err != nil {
		return err
	}

	if c.deps.Indexer != nil {
		if err := c.deps.Indexer.Index(ctx, record); err != nil {
			metrics.OverrideFanoutFailures.WithLabelValues("elasticsearch").Inc()
			c.logger.Warn("failed to index override record", map[string]interface{}{
				"recordId": record.ID,
				"error":    err.Error(),
			})
		}
	}
	if c.deps.Publisher != nil {
		if err := c.deps.Publisher.PublishOverride(ctx, record); err != nil {
			metrics.OverrideFanoutFailures.WithLabelValues("sns").Inc()
			c.logger.Warn("failed to publish override record", map[string]interface{}{
				"recordId": record.ID,
				"error":    err.Error(),
			})
		}
	}
	return nil
}

func (c *Composer) recordSelection(ctx context.Context, sel variants.Selection) {
	metrics.VariantSelections.WithLabelValues(string(sel.SectionType), strconv.Itoa(sel.SelectedVariant), strconv.FormatBool(sel.IsDefault)).Inc()
	c.obs.RecordSelection(ctx, string(sel.SectionType), sel.SelectedVariant, sel.IsDefault)
}
