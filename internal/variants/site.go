// internal/variants/site.go
package variants

import (
	"fmt"

	"site-composer/internal/models"
)

// SiteSelection is the result of selecting variants for every section of a site.
type SiteSelection struct {
	Selections       []Selection `json:"selections"`
	OverallReasoning string      `json:"overallReasoning"`
}

// SelectVariantsForSite selects a variant per section, biased towards the
// variant the site already uses most so the page stays visually consistent.
// A section keeps its own best pick unless the running favourite scores
// within the consistency margin of it.
func (s *Selector) SelectVariantsForSite(sectionTypes []string, industry string, profile models.BusinessProfile) (SiteSelection, error) {
	parsed := make([]SectionType, 0, len(sectionTypes))
	for _, raw := range sectionTypes {
		st, err := ParseSectionType(raw)
		if err != nil {
			return SiteSelection{}, err
		}
		parsed = append(parsed, st)
	}

	traits := normalizeTraits(profile.BrandPersonality)
	counts := make(map[int]int, VariantCount)
	result := SiteSelection{Selections: make([]Selection, 0, len(parsed))}

	for _, st := range parsed {
		ranked := s.rank(st, traits)
		picked := pickIndex(ranked, traits)

		biased := false
		if favourite := mostFrequent(counts); favourite != 0 && favourite != ranked[picked].descriptor.Number {
			for i, r := range ranked {
				if r.descriptor.Number != favourite {
					continue
				}
				if ranked[picked].match.Score-r.match.Score <= s.consistencyMargin {
					picked = i
					biased = true
				}
				break
			}
		}

		sel := s.buildSelection(st, traits, ranked, picked)
		if biased {
			sel.IsDefault = false
			sel.Reasoning = fmt.Sprintf("Selected variant %d (%d%% match) to keep this section consistent with the %s style used across your site.",
				sel.SelectedVariant, Percent(sel.Score), ranked[picked].descriptor.Personality)
		}
		counts[sel.SelectedVariant]++
		result.Selections = append(result.Selections, sel)
	}

	result.OverallReasoning = overallReasoning(result.Selections, len(traits) == 0)
	return result, nil
}

// mostFrequent returns the variant chosen most often so far, ties to the lower number, 0 if none.
func mostFrequent(counts map[int]int) int {
	best, bestCount := 0, 0
	for n := 1; n <= VariantCount; n++ {
		if counts[n] > bestCount {
			best, bestCount = n, counts[n]
		}
	}
	return best
}

func overallReasoning(selections []Selection, noTraits bool) string {
	if len(selections) == 0 {
		return "No sections were requested, so no variants were selected."
	}

	counts := make(map[int]int, VariantCount)
	for _, sel := range selections {
		counts[sel.SelectedVariant]++
	}
	dominant := mostFrequent(counts)
	personality, _ := PersonalityFor(dominant)

	if noTraits {
		return fmt.Sprintf("No brand personality was provided, so all %d sections use the default %s style.", len(selections), personality)
	}
	if len(counts) == 1 {
		return fmt.Sprintf("Your site uses a consistent %s style (variant %d) across all %d sections.", personality, dominant, len(selections))
	}
	return fmt.Sprintf("Your site leans %s (variant %d) in %d of %d sections, with %d other styles where they fit better.",
		personality, dominant, counts[dominant], len(selections), len(counts)-1)
}

// ApplySelections returns a copy of sections with each selection written to
// the next not-yet-updated section of the same type, plus the indices of the
// sections that received a selection. Sections without a matching selection
// keep their variant.
func ApplySelections(sections []models.SiteSection, sel SiteSelection) ([]models.SiteSection, []int) {
	out := make([]models.SiteSection, len(sections))
	copy(out, sections)

	pending := make(map[string][]int)
	for _, s := range sel.Selections {
		pending[string(s.SectionType)] = append(pending[string(s.SectionType)], s.SelectedVariant)
	}
	var touched []int
	for i := range out {
		queue := pending[out[i].Type]
		if len(queue) == 0 {
			continue
		}
		out[i].Variant = queue[0]
		pending[out[i].Type] = queue[1:]
		touched = append(touched, i)
	}
	return out, touched
}
