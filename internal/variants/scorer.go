// internal/variants/scorer.go
package variants

import (
	"strings"
	"unicode/utf8"
)

// minContainmentLen keeps one- and two-letter tags from matching every trait by substring.
const minContainmentLen = 3

// MatchResult is the outcome of scoring brand traits against one variant.
type MatchResult struct {
	Score         float64            `json:"score"`
	MatchedTraits []string           `json:"matchedTraits"`
	Variant       *VariantDescriptor `json:"variant,omitempty"`
}

// Score rates how well brandTraits fit variant. Each input trait earns one
// point when it equals a catalog trait or either contains the other; the
// total is divided by the catalog trait count and clamped to [0,1].
func Score(brandTraits []string, variant *VariantDescriptor) MatchResult {
	result := MatchResult{MatchedTraits: []string{}, Variant: variant}
	if variant == nil {
		return result
	}

	traits := normalizeTraits(brandTraits)
	if len(traits) == 0 {
		return result
	}

	catalogTraits := normalizeTraits(variant.Traits)
	points := 0
	for _, t := range traits {
		for _, ct := range catalogTraits {
			if traitMatches(t, ct) {
				points++
				result.MatchedTraits = append(result.MatchedTraits, t)
				break
			}
		}
	}

	denominator := len(catalogTraits)
	if denominator < 1 {
		denominator = 1
	}
	result.Score = clamp01(float64(points) / float64(denominator))
	return result
}

// ScoreVariant scores against the catalog entry for (sectionType, number).
// Unknown section types and numbers outside 1..5 yield an empty result.
func (c *Catalog) ScoreVariant(brandTraits []string, sectionType string, number int) MatchResult {
	st, err := ParseSectionType(sectionType)
	if err != nil {
		return MatchResult{MatchedTraits: []string{}}
	}
	d, ok := c.Variant(st, number)
	if !ok {
		return MatchResult{MatchedTraits: []string{}}
	}
	return Score(brandTraits, &d)
}

func traitMatches(input, catalogTrait string) bool {
	if input == catalogTrait {
		return true
	}
	if utf8.RuneCountInString(input) < minContainmentLen || utf8.RuneCountInString(catalogTrait) < minContainmentLen {
		return false
	}
	return strings.Contains(input, catalogTrait) || strings.Contains(catalogTrait, input)
}

// normalizeTraits lowercases and trims traits, dropping blanks and duplicates.
func normalizeTraits(traits []string) []string {
	out := make([]string, 0, len(traits))
	seen := make(map[string]bool, len(traits))
	for _, t := range traits {
		n := strings.ToLower(strings.TrimSpace(t))
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
