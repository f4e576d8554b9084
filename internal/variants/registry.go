// internal/variants/registry.go
package variants

import (
	"fmt"
	"strings"
)

// RenderKey is the lookup key a renderer uses to find a variant component.
type RenderKey struct {
	SectionType SectionType `json:"sectionType"`
	Variant     int         `json:"variant"`
}

func (k RenderKey) String() string {
	return fmt.Sprintf("%s/%d", k.SectionType, k.Variant)
}

// RenderRegistry resolves a render key to a component name.
type RenderRegistry interface {
	Resolve(key RenderKey) (string, bool)
}

// ComponentRegistry is a map-backed RenderRegistry.
type ComponentRegistry struct {
	components map[RenderKey]string
}

// NewComponentRegistry registers the conventional component name
// (e.g. "HeroVariant3") for every known section type and variant.
func NewComponentRegistry() *ComponentRegistry {
	r := &ComponentRegistry{components: make(map[RenderKey]string, len(knownSectionTypes)*VariantCount)}
	for _, st := range knownSectionTypes {
		for n := 1; n <= VariantCount; n++ {
			r.Register(RenderKey{SectionType: st, Variant: n}, componentName(st, n))
		}
	}
	return r
}

// Register adds or replaces the component for key.
func (r *ComponentRegistry) Register(key RenderKey, component string) {
	r.components[key] = component
}

func (r *ComponentRegistry) Resolve(key RenderKey) (string, bool) {
	c, ok := r.components[key]
	return c, ok
}

func componentName(st SectionType, n int) string {
	name := string(st)
	if st == SectionFAQ || st == SectionCTA {
		name = strings.ToUpper(name)
	} else if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return fmt.Sprintf("%sVariant%d", name, n)
}
