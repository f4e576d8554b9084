// internal/variants/catalog_test.go
package variants

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogFor_EveryKnownSectionTypeHasFiveOrderedVariants(t *testing.T) {
	for _, st := range KnownSectionTypes() {
		t.Run(string(st), func(t *testing.T) {
			descriptors := CatalogFor(st)
			require.Len(t, descriptors, VariantCount)

			for i, d := range descriptors {
				assert.Equal(t, i+1, d.Number)
				assert.Equal(t, st, d.SectionType)
				assert.NotEmpty(t, d.Traits)
				assert.NotEmpty(t, d.Description)

				want, ok := PersonalityFor(d.Number)
				require.True(t, ok)
				assert.Equal(t, want, d.Personality)
			}
		})
	}
}

func TestCatalogFor_FallbackForSectionsWithoutDedicatedWording(t *testing.T) {
	c := Default()

	for _, st := range []SectionType{SectionHero, SectionServices, SectionAbout, SectionProcess, SectionTestimonials, SectionPortfolio, SectionContact} {
		assert.True(t, c.HasDedicated(st), "expected dedicated catalog for %s", st)
	}
	for _, st := range []SectionType{SectionMenu, SectionLocation, SectionGallery} {
		assert.False(t, c.HasDedicated(st), "expected fallback catalog for %s", st)
		assert.Len(t, c.For(st), VariantCount)
	}

	menu := c.For(SectionMenu)
	gallery := c.For(SectionGallery)
	assert.Equal(t, menu[2].Description, gallery[2].Description)
	assert.Equal(t, SectionGallery, gallery[2].SectionType)
}

func TestCatalogFor_ReturnsCopies(t *testing.T) {
	first := CatalogFor(SectionHero)
	first[0].Traits[0] = "mutated"
	first[0].Description = "mutated"

	second := CatalogFor(SectionHero)
	assert.Equal(t, "professional", second[0].Traits[0])
	assert.NotEqual(t, "mutated", second[0].Description)
}

func TestParseSectionType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    SectionType
		wantErr bool
	}{
		{name: "exact", input: "hero", want: SectionHero},
		{name: "mixed case and spaces", input: "  Testimonials ", want: SectionTestimonials},
		{name: "fallback type", input: "menu", want: SectionMenu},
		{name: "unknown", input: "carousel", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSectionType(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownSectionType)
				assert.False(t, IsKnownSectionType(tt.input))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalog_Variant(t *testing.T) {
	c := Default()

	d, ok := c.Variant(SectionContact, 4)
	require.True(t, ok)
	assert.Equal(t, Elegant, d.Personality)
	assert.Equal(t, "luxury", d.Style)

	_, ok = c.Variant(SectionContact, 0)
	assert.False(t, ok)
	_, ok = c.Variant(SectionContact, 6)
	assert.False(t, ok)
}

func TestLoadCatalog_RejectsBrokenDocuments(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "invalid yaml",
			yaml: "archetypes: [",
		},
		{
			name: "wrong personality for number",
			yaml: `
archetypes:
  - {number: 1, personality: bold, style: x, traits: [bold]}
`,
		},
		{
			name: "missing archetypes",
			yaml: `
archetypes:
  - {number: 1, personality: professional, style: corporate, traits: [professional]}
sections:
  default: []
`,
		},
		{
			name: "unknown section key",
			yaml: testArchetypes + testDefaultSection + `
  carousel:
    - {number: 1, description: a}
    - {number: 2, description: b}
    - {number: 3, description: c}
    - {number: 4, description: d}
    - {number: 5, description: e}
`,
		},
		{
			name: "duplicate variant number",
			yaml: testArchetypes + `
sections:
  default:
    - {number: 1, description: a}
    - {number: 1, description: b}
    - {number: 3, description: c}
    - {number: 4, description: d}
    - {number: 5, description: e}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalog_ExtraTraitsExtendArchetype(t *testing.T) {
	c, err := LoadCatalog([]byte(testArchetypes + testDefaultSection + testServicesWithExtras))
	require.NoError(t, err)

	d, ok := c.Variant(SectionServices, 2)
	require.True(t, ok)
	assert.Equal(t, []string{"modern", "minimal", "tech", "innovative", "luxury"}, d.Traits)

	hero, ok := c.Variant(SectionHero, 2)
	require.True(t, ok)
	assert.Len(t, hero.Traits, 4)
}

// ==========================
// Test Fixtures
// ==========================

const testArchetypes = `
archetypes:
  - {number: 1, personality: professional, style: corporate, traits: [professional, corporate, trustworthy, established]}
  - {number: 2, personality: modern, style: minimal, traits: [modern, minimal, tech, innovative]}
  - {number: 3, personality: bold, style: creative, traits: [bold, creative, artistic, vibrant]}
  - {number: 4, personality: elegant, style: luxury, traits: [elegant, luxury, sophisticated, refined]}
  - {number: 5, personality: friendly, style: warm, traits: [friendly, warm, approachable, welcoming]}
`

const testDefaultSection = `
sections:
  default:
    - {number: 1, description: one}
    - {number: 2, description: two}
    - {number: 3, description: three}
    - {number: 4, description: four}
    - {number: 5, description: five}
`

const testServicesWithExtras = `
  services:
    - {number: 1, description: one}
    - {number: 2, description: two, extraTraits: [luxury]}
    - {number: 3, description: three}
    - {number: 4, description: four, extraTraits: [ornate, classic, gilded, formal]}
    - {number: 5, description: five}
`
