// internal/service/composer_test.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "site-composer/internal/common/errors"
	"site-composer/internal/common/logger"
	"site-composer/internal/models"
	"site-composer/internal/overrides"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Fakes
// ==========================

type fakeSites struct {
	mu      sync.Mutex
	sites   map[string]*models.Site
	cached  map[string]*models.Site // served by GetSite only, like a draft cache
	saves   int
	saveErr error
}

func newFakeSites(sites ...*models.Site) *fakeSites {
	f := &fakeSites{sites: make(map[string]*models.Site)}
	for _, s := range sites {
		f.sites[s.ID] = s
	}
	return f
}

func (f *fakeSites) GetSite(_ context.Context, siteID string) (*models.Site, error) {
	f.mu.Lock()
	if c, ok := f.cached[siteID]; ok {
		f.mu.Unlock()
		cp := *c
		cp.Sections = append([]models.SiteSection(nil), c.Sections...)
		return &cp, nil
	}
	f.mu.Unlock()
	return f.load(siteID)
}

func (f *fakeSites) load(siteID string) (*models.Site, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sites[siteID]
	if !ok {
		return nil, apperrors.NewSiteNotFoundError(siteID)
	}
	cp := *s
	cp.Sections = append([]models.SiteSection(nil), s.Sections...)
	return &cp, nil
}

func (f *fakeSites) GetSiteForUpdate(_ context.Context, siteID string) (*models.Site, error) {
	return f.load(siteID)
}

func (f *fakeSites) SaveSections(_ context.Context, siteID string, sections []models.SiteSection) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return time.Time{}, f.saveErr
	}
	s, ok := f.sites[siteID]
	if !ok {
		return time.Time{}, apperrors.NewSiteNotFoundError(siteID)
	}
	s.Sections = sections
	s.UpdatedAt = fixedNow
	return fixedNow, nil
}

type fakeOverrides struct {
	records   []models.OverrideRecord
	appendErr error
}

func (f *fakeOverrides) Append(_ context.Context, r models.OverrideRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.records = append(f.records, r)
	return nil
}

func (f *fakeOverrides) ListBySite(_ context.Context, siteID string) ([]models.OverrideRecord, error) {
	var out []models.OverrideRecord
	for _, r := range f.records {
		if r.SiteID == siteID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeLocker struct {
	busy     bool
	acquired int
	released int
}

func (f *fakeLocker) Acquire(_ context.Context, siteID string) (func(context.Context) error, error) {
	if f.busy {
		return nil, apperrors.NewSwitchInProgressError(siteID)
	}
	f.acquired++
	return func(context.Context) error {
		f.released++
		return nil
	}, nil
}

type fakeSink struct {
	records []models.OverrideRecord
	err     error
}

func (f *fakeSink) Index(_ context.Context, r models.OverrideRecord) error {
	f.records = append(f.records, r)
	return f.err
}

func (f *fakeSink) PublishOverride(_ context.Context, r models.OverrideRecord) error {
	f.records = append(f.records, r)
	return f.err
}

var fixedNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

type harness struct {
	composer  *Composer
	sites     *fakeSites
	overrides *fakeOverrides
	locker    *fakeLocker
	indexer   *fakeSink
	publisher *fakeSink
}

func newHarness(t *testing.T, site *models.Site) *harness {
	h := &harness{
		sites:     newFakeSites(site),
		overrides: &fakeOverrides{},
		locker:    &fakeLocker{},
		indexer:   &fakeSink{},
		publisher: &fakeSink{},
	}
	h.composer = New(Dependencies{
		Sites:     h.sites,
		Overrides: h.overrides,
		Locker:    h.locker,
		Indexer:   h.indexer,
		Publisher: h.publisher,
		Tracker:   overrides.NewTracker(overrides.WithClock(func() time.Time { return fixedNow })),
	}, logger.NewTestLogger(t))
	return h
}

func createTestSite() *models.Site {
	return &models.Site{
		ID: "site-1",
		BusinessProfile: models.BusinessProfile{
			BusinessName:     "Brightside Studio",
			Industry:         "design agency",
			BrandPersonality: []string{"Bold", "creative"},
		},
		Sections: []models.SiteSection{
			{ID: "sec-hero", Type: "hero", Order: 0, Variant: 1, IsVisible: true},
			{ID: "sec-services", Type: "services", Order: 1, Variant: 1, IsVisible: true},
			{ID: "sec-contact", Type: "contact", Order: 2, Variant: 1, IsVisible: true},
		},
	}
}

// ==========================
// Recommendations
// ==========================

func TestComposer_RecommendSection(t *testing.T) {
	h := newHarness(t, createTestSite())

	rec, err := h.composer.RecommendSection(context.Background(), "site-1", "hero", nil)
	require.NoError(t, err)

	assert.Equal(t, 3, rec.Selection.SelectedVariant)
	assert.Equal(t, "HeroVariant3", rec.ComponentKey)
	assert.Len(t, rec.Variants, 5)
	assert.Contains(t, rec.Selection.Reasoning, "Selected variant 3 (50% match)")

	recommended := 0
	for _, v := range rec.Variants {
		if v.IsRecommended {
			recommended++
			assert.Equal(t, 3, v.Variant)
		}
	}
	assert.Equal(t, 1, recommended)
}

func TestComposer_RecommendSection_ProvidedProfileSkipsLookup(t *testing.T) {
	h := newHarness(t, createTestSite())

	rec, err := h.composer.RecommendSection(context.Background(), "unknown-site", "about", &models.BusinessProfile{
		BrandPersonality: []string{"elegant"},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, rec.Selection.SelectedVariant)
}

func TestComposer_RecommendSection_Errors(t *testing.T) {
	h := newHarness(t, createTestSite())
	ctx := context.Background()

	_, err := h.composer.RecommendSection(ctx, "site-1", "", nil)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))

	_, err = h.composer.RecommendSection(ctx, "site-1", "footer", nil)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnknownSectionType))

	_, err = h.composer.RecommendSection(ctx, "missing", "hero", nil)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSiteNotFound))
}

func TestComposer_RecommendSite_DefaultsToSevenSections(t *testing.T) {
	h := newHarness(t, createTestSite())

	rec, err := h.composer.RecommendSite(context.Background(), SiteRecommendRequest{SiteID: "site-1"})
	require.NoError(t, err)

	require.Len(t, rec.Selections, 7)
	for _, sel := range rec.Selections {
		assert.Equal(t, 3, sel.SelectedVariant)
	}
	assert.False(t, rec.Applied)
	assert.Equal(t, 0, h.sites.saves)
	assert.Empty(t, h.overrides.records)
}

func TestComposer_RecommendSite_UnknownSection(t *testing.T) {
	h := newHarness(t, createTestSite())

	_, err := h.composer.RecommendSite(context.Background(), SiteRecommendRequest{
		SiteID:   "site-1",
		Sections: []string{"hero", "footer"},
	})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnknownSectionType))
}

func TestComposer_RecommendSite_Apply(t *testing.T) {
	h := newHarness(t, createTestSite())

	rec, err := h.composer.RecommendSite(context.Background(), SiteRecommendRequest{
		SiteID:   "site-1",
		Sections: []string{"hero", "contact"},
		Apply:    true,
	})
	require.NoError(t, err)
	assert.True(t, rec.Applied)
	assert.Equal(t, fixedNow, rec.UpdatedAt)

	stored := h.sites.sites["site-1"]
	assert.Equal(t, 3, stored.Sections[0].Variant)
	assert.Equal(t, 1, stored.Sections[1].Variant, "services was not requested")
	assert.Equal(t, 3, stored.Sections[2].Variant)

	require.Len(t, h.overrides.records, 2)
	for _, r := range h.overrides.records {
		assert.False(t, r.IsOverride)
	}
	assert.Equal(t, 1, h.locker.released)
}

func TestComposer_RecommendSite_ApplyRecordsOnlyAssignedSections(t *testing.T) {
	site := createTestSite()
	site.Sections = append(site.Sections, models.SiteSection{ID: "sec-hero-2", Type: "hero", Order: 3, Variant: 2, IsVisible: true})
	h := newHarness(t, site)

	_, err := h.composer.RecommendSite(context.Background(), SiteRecommendRequest{
		SiteID:   "site-1",
		Sections: []string{"hero"},
		Apply:    true,
	})
	require.NoError(t, err)

	stored := h.sites.sites["site-1"]
	assert.Equal(t, 3, stored.Sections[0].Variant)
	assert.Equal(t, 2, stored.Sections[3].Variant, "second hero had no queued selection")

	require.Len(t, h.overrides.records, 1)
	assert.Equal(t, "hero", h.overrides.records[0].SectionType)
	assert.Equal(t, 3, h.overrides.records[0].VariantNumber)
}

// ==========================
// Listing
// ==========================

func TestComposer_ListVariants(t *testing.T) {
	site := createTestSite()
	site.Sections[0].Variant = 2
	h := newHarness(t, site)

	listing, err := h.composer.ListVariants(context.Background(), "site-1", "hero")
	require.NoError(t, err)
	assert.Equal(t, 2, listing.CurrentVariant)
	require.Len(t, listing.Variants, 5)
	assert.Equal(t, 3, listing.Variants[0].Variant)
	assert.True(t, listing.Variants[0].IsRecommended)

	_, err = h.composer.ListVariants(context.Background(), "site-1", "")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))
}

// ==========================
// Switching
// ==========================

func TestComposer_SwitchVariant_ByID(t *testing.T) {
	h := newHarness(t, createTestSite())

	res, err := h.composer.SwitchVariant(context.Background(), SwitchRequest{
		SiteID:     "site-1",
		SectionID:  "sec-services",
		NewVariant: 3,
		IsOverride: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "sec-services", res.SectionID)
	assert.Equal(t, "services", res.SectionType)
	assert.Equal(t, 1, res.PreviousVariant)
	assert.Equal(t, 3, res.NewVariant)
	assert.Equal(t, fixedNow, res.UpdatedAt)
	require.NotNil(t, res.VariantInfo)
	assert.Equal(t, 50, res.VariantInfo.MatchScore)

	assert.Equal(t, 3, h.sites.sites["site-1"].Sections[1].Variant)
	require.Len(t, h.overrides.records, 1)
	assert.True(t, h.overrides.records[0].IsOverride)
	assert.Equal(t, fixedNow, h.overrides.records[0].SelectedAt)
	assert.Len(t, h.indexer.records, 1)
	assert.Len(t, h.publisher.records, 1)
}

func TestComposer_SwitchVariant_ReadsPastStaleCache(t *testing.T) {
	site := createTestSite()
	site.Sections[0].Variant = 4
	h := newHarness(t, site)
	h.sites.cached = map[string]*models.Site{"site-1": createTestSite()}

	_, err := h.composer.SwitchVariant(context.Background(), SwitchRequest{
		SiteID:     "site-1",
		SectionID:  "sec-contact",
		NewVariant: 2,
		IsOverride: true,
	})
	require.NoError(t, err)

	stored := h.sites.sites["site-1"]
	assert.Equal(t, 4, stored.Sections[0].Variant, "earlier switch must survive")
	assert.Equal(t, 2, stored.Sections[2].Variant)
}

func TestComposer_SwitchVariant_ByTypeWithoutOverride(t *testing.T) {
	h := newHarness(t, createTestSite())

	res, err := h.composer.SwitchVariant(context.Background(), SwitchRequest{
		SiteID:      "site-1",
		SectionType: "contact",
		NewVariant:  5,
	})
	require.NoError(t, err)
	assert.Equal(t, "sec-contact", res.SectionID)
	assert.Empty(t, h.overrides.records)
	assert.Empty(t, h.indexer.records)
}

func TestComposer_SwitchVariant_RejectsBeforePersistence(t *testing.T) {
	for _, variant := range []int{0, 6, -1} {
		h := newHarness(t, createTestSite())
		_, err := h.composer.SwitchVariant(context.Background(), SwitchRequest{
			SiteID:     "site-1",
			SectionID:  "sec-hero",
			NewVariant: variant,
			IsOverride: true,
		})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidVariant), "variant %d", variant)
		assert.Equal(t, 0, h.sites.saves)
		assert.Equal(t, 0, h.locker.acquired)
		assert.Empty(t, h.overrides.records)
	}
}

func TestComposer_SwitchVariant_Errors(t *testing.T) {
	tests := []struct {
		name  string
		req   SwitchRequest
		setup func(h *harness)
		code  apperrors.ErrorCode
	}{
		{
			name: "missing section reference",
			req:  SwitchRequest{SiteID: "site-1", NewVariant: 2},
			code: apperrors.ErrCodeValidationFailed,
		},
		{
			name: "unknown site",
			req:  SwitchRequest{SiteID: "nope", SectionID: "sec-hero", NewVariant: 2},
			code: apperrors.ErrCodeSiteNotFound,
		},
		{
			name: "unknown section",
			req:  SwitchRequest{SiteID: "site-1", SectionID: "sec-missing", NewVariant: 2},
			code: apperrors.ErrCodeSectionNotFound,
		},
		{
			name:  "lock held",
			req:   SwitchRequest{SiteID: "site-1", SectionID: "sec-hero", NewVariant: 2},
			setup: func(h *harness) { h.locker.busy = true },
			code:  apperrors.ErrCodeSwitchInProgress,
		},
		{
			name: "save fails",
			req:  SwitchRequest{SiteID: "site-1", SectionID: "sec-hero", NewVariant: 2},
			setup: func(h *harness) {
				h.sites.saveErr = apperrors.NewPersistenceFailedError("save sections", errors.New("disk full"))
			},
			code: apperrors.ErrCodePersistenceFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, createTestSite())
			if tt.setup != nil {
				tt.setup(h)
			}
			_, err := h.composer.SwitchVariant(context.Background(), tt.req)
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
			assert.Empty(t, h.overrides.records)
		})
	}
}

func TestComposer_SwitchVariant_FanoutFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, createTestSite())
	h.indexer.err = errors.New("es down")
	h.publisher.err = errors.New("sns down")

	_, err := h.composer.SwitchVariant(context.Background(), SwitchRequest{
		SiteID: "site-1", SectionID: "sec-hero", NewVariant: 4, IsOverride: true,
	})
	require.NoError(t, err)
	assert.Len(t, h.overrides.records, 1)
}

func TestComposer_OverrideStats(t *testing.T) {
	h := newHarness(t, createTestSite())
	ctx := context.Background()

	for _, req := range []SwitchRequest{
		{SiteID: "site-1", SectionID: "sec-hero", NewVariant: 2, IsOverride: true},
		{SiteID: "site-1", SectionID: "sec-hero", NewVariant: 4, IsOverride: true},
		{SiteID: "site-1", SectionID: "sec-contact", NewVariant: 4, IsOverride: true},
		{SiteID: "site-1", SectionID: "sec-services", NewVariant: 5, IsOverride: false},
	} {
		_, err := h.composer.SwitchVariant(ctx, req)
		require.NoError(t, err)
	}

	stats, err := h.composer.OverrideStats(ctx, "site-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalOverrides)
	assert.Equal(t, "hero", stats.MostOverriddenSection)
	assert.Equal(t, 2, stats.OverridesByVariant[4])
}

// ==========================
// Section editing
// ==========================

func TestComposer_AddDeleteReorder(t *testing.T) {
	h := newHarness(t, createTestSite())
	ctx := context.Background()

	added, err := h.composer.AddSection(ctx, "site-1", AddSectionRequest{
		Type:    "faq",
		Content: json.RawMessage(`{"title":"Questions"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, added.Order)
	assert.Equal(t, 1, added.Variant)

	require.NoError(t, h.composer.DeleteSection(ctx, "site-1", "sec-services"))
	stored := h.sites.sites["site-1"].Sections
	require.Len(t, stored, 3)
	for i, s := range stored {
		assert.Equal(t, i, s.Order)
	}

	reordered, err := h.composer.ReorderSections(ctx, "site-1", []string{added.ID, "sec-contact", "sec-hero"})
	require.NoError(t, err)
	assert.Equal(t, "faq", reordered[0].Type)
	assert.Equal(t, "hero", reordered[2].Type)

	err = h.composer.DeleteSection(ctx, "site-1", "sec-services")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSectionNotFound))
}

func TestComposer_AddSection_InvalidContent(t *testing.T) {
	h := newHarness(t, createTestSite())

	_, err := h.composer.AddSection(context.Background(), "site-1", AddSectionRequest{
		Type:    "hero",
		Content: json.RawMessage(`{"subheadline":"no headline"}`),
	})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidContent))
	assert.Equal(t, 0, h.sites.saves)
}
