// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CatalogExport is the JSON document the catalog CLI writes for front-end
// renderers and design tooling.
type CatalogExport struct {
	Version      string         `json:"version"`
	GeneratedAt  string         `json:"generatedAt"`
	SectionTypes []SectionEntry `json:"sectionTypes"`
}

type SectionEntry struct {
	SectionType string         `json:"sectionType"`
	Dedicated   bool           `json:"dedicated"`
	Variants    []VariantEntry `json:"variants"`
}

type VariantEntry struct {
	Number      int      `json:"variant"`
	Personality string   `json:"personality"`
	Style       string   `json:"style"`
	Description string   `json:"description"`
	Traits      []string `json:"traits"`
	BestFor     []string `json:"bestFor"`
	Component   string   `json:"component"`
}

func LoadExport(path string) (*CatalogExport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var exp CatalogExport
	err = json.Unmarshal(data, &exp)
	return &exp, err
}

// SaveExport writes exp as indented JSON, creating the parent directory.
func SaveExport(exp *CatalogExport, path string) error {
	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog export: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog export: %w", err)
	}
	return nil
}

// Validate checks that every section lists variants 1..variantCount in order
// and that section types are unique.
func (e *CatalogExport) Validate(variantCount int) error {
	if len(e.SectionTypes) == 0 {
		return fmt.Errorf("catalog export contains no section types")
	}

	seen := make(map[string]bool, len(e.SectionTypes))
	for _, s := range e.SectionTypes {
		if s.SectionType == "" {
			return fmt.Errorf("section entry missing required field: sectionType")
		}
		if seen[s.SectionType] {
			return fmt.Errorf("duplicate section type: %s", s.SectionType)
		}
		seen[s.SectionType] = true

		if len(s.Variants) != variantCount {
			return fmt.Errorf("section %s lists %d variants, want %d", s.SectionType, len(s.Variants), variantCount)
		}
		for i, v := range s.Variants {
			if v.Number != i+1 {
				return fmt.Errorf("section %s variant at position %d is numbered %d", s.SectionType, i+1, v.Number)
			}
			if v.Component == "" {
				return fmt.Errorf("section %s variant %d missing required field: component", s.SectionType, v.Number)
			}
			if len(v.Traits) == 0 {
				return fmt.Errorf("section %s variant %d has no traits", s.SectionType, v.Number)
			}
		}
	}
	return nil
}
