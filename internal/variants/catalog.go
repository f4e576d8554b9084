// internal/variants/catalog.go
package variants

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// VariantCount is the number of variants every section type offers.
const VariantCount = 5

var ErrUnknownSectionType = errors.New("UNKNOWN_SECTION_TYPE")

// SectionType names a kind of site section.
type SectionType string

const (
	SectionHero         SectionType = "hero"
	SectionServices     SectionType = "services"
	SectionAbout        SectionType = "about"
	SectionProcess      SectionType = "process"
	SectionTestimonials SectionType = "testimonials"
	SectionPortfolio    SectionType = "portfolio"
	SectionContact      SectionType = "contact"
	SectionMenu         SectionType = "menu"
	SectionLocation     SectionType = "location"
	SectionGallery      SectionType = "gallery"
	SectionTeam         SectionType = "team"
	SectionPricing      SectionType = "pricing"
	SectionFAQ          SectionType = "faq"
	SectionCTA          SectionType = "cta"
)

var knownSectionTypes = []SectionType{
	SectionHero, SectionServices, SectionAbout, SectionProcess, SectionTestimonials,
	SectionPortfolio, SectionContact, SectionMenu, SectionLocation, SectionGallery,
	SectionTeam, SectionPricing, SectionFAQ, SectionCTA,
}

// Personality is the design archetype behind a variant number.
type Personality string

const (
	Professional Personality = "professional"
	Modern       Personality = "modern"
	Bold         Personality = "bold"
	Elegant      Personality = "elegant"
	Friendly     Personality = "friendly"
)

var personalityByNumber = map[int]Personality{
	1: Professional,
	2: Modern,
	3: Bold,
	4: Elegant,
	5: Friendly,
}

// VariantDescriptor describes one selectable variant of a section type.
type VariantDescriptor struct {
	SectionType       SectionType `json:"sectionType"`
	Number            int         `json:"variant"`
	Personality       Personality `json:"personality"`
	Traits            []string    `json:"traits"`
	Style             string      `json:"style"`
	Description       string      `json:"description"`
	BestForIndustries []string    `json:"bestFor"`
}

// Catalog holds five descriptors per section type plus a shared fallback.
type Catalog struct {
	dedicated map[SectionType][]VariantDescriptor
	fallback  []VariantDescriptor
}

type catalogDocument struct {
	Archetypes []struct {
		Number      int      `yaml:"number"`
		Personality string   `yaml:"personality"`
		Style       string   `yaml:"style"`
		Traits      []string `yaml:"traits"`
	} `yaml:"archetypes"`
	Sections map[string][]struct {
		Number      int      `yaml:"number"`
		Description string   `yaml:"description"`
		BestFor     []string `yaml:"bestFor"`
		ExtraTraits []string `yaml:"extraTraits"`
	} `yaml:"sections"`
}

//go:embed catalog.yaml
var catalogYAML []byte

var defaultCatalog = mustLoadCatalog(catalogYAML)

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	return defaultCatalog
}

func mustLoadCatalog(data []byte) *Catalog {
	c, err := LoadCatalog(data)
	if err != nil {
		panic(fmt.Sprintf("variants: embedded catalog is invalid: %v", err))
	}
	return c
}

// LoadCatalog parses a catalog document and checks the number/personality mapping.
func LoadCatalog(data []byte) (*Catalog, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	type archetype struct {
		personality Personality
		style       string
		traits      []string
	}
	archetypes := make(map[int]archetype, VariantCount)
	for _, a := range doc.Archetypes {
		want, ok := personalityByNumber[a.Number]
		if !ok {
			return nil, fmt.Errorf("archetype number %d out of range", a.Number)
		}
		if Personality(a.Personality) != want {
			return nil, fmt.Errorf("archetype %d must be %s, got %q", a.Number, want, a.Personality)
		}
		if len(a.Traits) == 0 {
			return nil, fmt.Errorf("archetype %d has no traits", a.Number)
		}
		archetypes[a.Number] = archetype{personality: want, style: a.Style, traits: normalizeTraits(a.Traits)}
	}
	if len(archetypes) != VariantCount {
		return nil, fmt.Errorf("catalog defines %d archetypes, want %d", len(archetypes), VariantCount)
	}

	build := func(st SectionType, key string) ([]VariantDescriptor, error) {
		entries := doc.Sections[key]
		if len(entries) != VariantCount {
			return nil, fmt.Errorf("section %q defines %d variants, want %d", key, len(entries), VariantCount)
		}
		out := make([]VariantDescriptor, 0, VariantCount)
		seen := make(map[int]bool, VariantCount)
		for _, e := range entries {
			a, ok := archetypes[e.Number]
			if !ok || seen[e.Number] {
				return nil, fmt.Errorf("section %q has invalid or duplicate variant %d", key, e.Number)
			}
			seen[e.Number] = true
			out = append(out, VariantDescriptor{
				SectionType:       st,
				Number:            e.Number,
				Personality:       a.personality,
				Traits:            normalizeTraits(append(append([]string(nil), a.traits...), e.ExtraTraits...)),
				Style:             a.style,
				Description:       e.Description,
				BestForIndustries: e.BestFor,
			})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
		return out, nil
	}

	fallback, err := build("", "default")
	if err != nil {
		return nil, err
	}

	c := &Catalog{dedicated: make(map[SectionType][]VariantDescriptor), fallback: fallback}
	for key := range doc.Sections {
		if key == "default" {
			continue
		}
		st, err := ParseSectionType(key)
		if err != nil {
			return nil, fmt.Errorf("catalog section %q: %w", key, err)
		}
		descriptors, err := build(st, key)
		if err != nil {
			return nil, err
		}
		c.dedicated[st] = descriptors
	}
	return c, nil
}

// ParseSectionType normalizes s and checks it against the known section types.
func ParseSectionType(s string) (SectionType, error) {
	st := SectionType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range knownSectionTypes {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSectionType, s)
}

// IsKnownSectionType reports whether s names a known section type.
func IsKnownSectionType(s string) bool {
	_, err := ParseSectionType(s)
	return err == nil
}

// KnownSectionTypes lists every section type the engine accepts.
func KnownSectionTypes() []SectionType {
	return append([]SectionType(nil), knownSectionTypes...)
}

// PersonalityFor returns the archetype of a variant number.
func PersonalityFor(number int) (Personality, bool) {
	p, ok := personalityByNumber[number]
	return p, ok
}

// IsValidVariant reports whether n is a selectable variant number.
func IsValidVariant(n int) bool {
	return n >= 1 && n <= VariantCount
}

// HasDedicated reports whether st has its own wording rather than the shared fallback.
func (c *Catalog) HasDedicated(st SectionType) bool {
	_, ok := c.dedicated[st]
	return ok
}

// For returns the five descriptors of st ordered by number. Section types
// without a dedicated entry get the fallback wording stamped with st.
func (c *Catalog) For(st SectionType) []VariantDescriptor {
	src, ok := c.dedicated[st]
	if !ok {
		src = c.fallback
	}
	out := make([]VariantDescriptor, len(src))
	for i, d := range src {
		d.SectionType = st
		d.Traits = append([]string(nil), d.Traits...)
		d.BestForIndustries = append([]string(nil), d.BestForIndustries...)
		out[i] = d
	}
	return out
}

// Variant looks up a single descriptor.
func (c *Catalog) Variant(st SectionType, number int) (VariantDescriptor, bool) {
	if !IsValidVariant(number) {
		return VariantDescriptor{}, false
	}
	return c.For(st)[number-1], true
}

// CatalogFor returns the embedded catalog entries for sectionType.
func CatalogFor(sectionType SectionType) []VariantDescriptor {
	return defaultCatalog.For(sectionType)
}
