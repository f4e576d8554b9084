// internal/variants/selector.go
package variants

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"site-composer/internal/models"
)

// DefaultVariant is chosen when no brand personality is available or nothing matches.
const DefaultVariant = 1

// Alternative is a runner-up variant in a selection.
type Alternative struct {
	Variant     int         `json:"variant"`
	Score       float64     `json:"score"`
	Personality Personality `json:"personality"`
}

// Selection is the recommended variant for one section.
type Selection struct {
	SectionType     SectionType   `json:"sectionType"`
	SelectedVariant int           `json:"selectedVariant"`
	Score           float64       `json:"score"`
	Reasoning       string        `json:"reasoning"`
	Alternatives    []Alternative `json:"alternatives"`
	IsDefault       bool          `json:"isDefault"`
}

// TopAlternatives returns at most n alternatives, best first.
func (s Selection) TopAlternatives(n int) []Alternative {
	if n < 0 || n >= len(s.Alternatives) {
		return s.Alternatives
	}
	return s.Alternatives[:n]
}

// RenderKey identifies the component that renders this selection.
func (s Selection) RenderKey() RenderKey {
	return RenderKey{SectionType: s.SectionType, Variant: s.SelectedVariant}
}

// ScoredVariant is one row of the full ranked variant list for a section.
type ScoredVariant struct {
	Variant       int         `json:"variant"`
	Score         float64     `json:"score"`
	Personality   Personality `json:"personality"`
	Description   string      `json:"description"`
	Traits        []string    `json:"traits"`
	BestFor       []string    `json:"bestFor"`
	IndustryFit   bool        `json:"industryFit"`
	IsRecommended bool        `json:"isRecommended"`
}

// Selector picks variants from a catalog. It holds no mutable state.
type Selector struct {
	catalog           *Catalog
	consistencyMargin float64
}

type Option func(*Selector)

// WithConsistencyMargin sets how far below a section's best score the site's
// most common variant may be and still be preferred.
func WithConsistencyMargin(margin float64) Option {
	return func(s *Selector) {
		s.consistencyMargin = clamp01(margin)
	}
}

// NewSelector creates a Selector over catalog; nil means the embedded catalog.
func NewSelector(catalog *Catalog, opts ...Option) *Selector {
	if catalog == nil {
		catalog = defaultCatalog
	}
	s := &Selector{catalog: catalog, consistencyMargin: 0.15}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog exposes the catalog the selector scores against.
func (s *Selector) Catalog() *Catalog {
	return s.catalog
}

type rankedVariant struct {
	descriptor VariantDescriptor
	match      MatchResult
}

// rank scores all five variants, best first, ties to the lower number.
func (s *Selector) rank(st SectionType, traits []string) []rankedVariant {
	descriptors := s.catalog.For(st)
	ranked := make([]rankedVariant, len(descriptors))
	for i := range descriptors {
		ranked[i] = rankedVariant{descriptor: descriptors[i], match: Score(traits, &descriptors[i])}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].match.Score != ranked[j].match.Score {
			return ranked[i].match.Score > ranked[j].match.Score
		}
		return ranked[i].descriptor.Number < ranked[j].descriptor.Number
	})
	return ranked
}

// SelectVariant recommends a variant for one section type.
func (s *Selector) SelectVariant(sectionType, industry string, profile models.BusinessProfile) (Selection, error) {
	st, err := ParseSectionType(sectionType)
	if err != nil {
		return Selection{}, err
	}
	traits := normalizeTraits(profile.BrandPersonality)
	ranked := s.rank(st, traits)
	return s.buildSelection(st, traits, ranked, pickIndex(ranked, traits)), nil
}

// AllVariantsWithScores returns all five variants ranked, with exactly one
// marked as the recommendation SelectVariant would make.
func (s *Selector) AllVariantsWithScores(sectionType, industry string, profile models.BusinessProfile) ([]ScoredVariant, error) {
	st, err := ParseSectionType(sectionType)
	if err != nil {
		return nil, err
	}
	if industry == "" {
		industry = profile.Industry
	}
	traits := normalizeTraits(profile.BrandPersonality)
	ranked := s.rank(st, traits)
	recommended := ranked[pickIndex(ranked, traits)].descriptor.Number

	out := make([]ScoredVariant, 0, len(ranked))
	for _, r := range ranked {
		d := r.descriptor
		out = append(out, ScoredVariant{
			Variant:       d.Number,
			Score:         r.match.Score,
			Personality:   d.Personality,
			Description:   d.Description,
			Traits:        d.Traits,
			BestFor:       d.BestForIndustries,
			IndustryFit:   industryFits(industry, d.BestForIndustries),
			IsRecommended: d.Number == recommended,
		})
	}
	return out, nil
}

// pickIndex returns the ranked position of the recommendation: the top
// scorer, or the default variant when there is nothing to score.
func pickIndex(ranked []rankedVariant, traits []string) int {
	if len(traits) > 0 && ranked[0].match.Score > 0 {
		return 0
	}
	for i, r := range ranked {
		if r.descriptor.Number == DefaultVariant {
			return i
		}
	}
	return 0
}

func (s *Selector) buildSelection(st SectionType, traits []string, ranked []rankedVariant, picked int) Selection {
	chosen := ranked[picked]
	sel := Selection{
		SectionType:     st,
		SelectedVariant: chosen.descriptor.Number,
		Score:           chosen.match.Score,
		Alternatives:    make([]Alternative, 0, len(ranked)-1),
	}
	for i, r := range ranked {
		if i == picked {
			continue
		}
		sel.Alternatives = append(sel.Alternatives, Alternative{
			Variant:     r.descriptor.Number,
			Score:       r.match.Score,
			Personality: r.descriptor.Personality,
		})
	}

	switch {
	case len(traits) == 0:
		sel.IsDefault = true
		sel.Reasoning = fmt.Sprintf("Selected variant %d (%s) as the default style because no brand personality was provided.",
			sel.SelectedVariant, chosen.descriptor.Personality)
	case chosen.match.Score == 0:
		sel.IsDefault = true
		sel.Reasoning = fmt.Sprintf("Selected variant %d (%s) as the default style because your \"%s\" brand personality did not match a specific design.",
			sel.SelectedVariant, chosen.descriptor.Personality, strings.Join(traits, ", "))
	default:
		sel.Reasoning = fmt.Sprintf("Selected variant %d (%d%% match) because your \"%s\" brand personality aligns with its %s and %s design style.",
			sel.SelectedVariant, Percent(chosen.match.Score), strings.Join(chosen.match.MatchedTraits, ", "), chosen.descriptor.Personality, chosen.descriptor.Style)
	}
	return sel
}

// Percent converts a [0,1] score to a rounded integer percentage.
func Percent(score float64) int {
	return int(math.Round(clamp01(score) * 100))
}

func industryFits(industry string, bestFor []string) bool {
	industry = strings.ToLower(strings.TrimSpace(industry))
	if industry == "" {
		return false
	}
	for _, b := range bestFor {
		if traitMatches(industry, strings.ToLower(b)) {
			return true
		}
	}
	return false
}
