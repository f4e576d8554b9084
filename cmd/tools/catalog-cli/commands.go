package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"site-composer/internal/models"
	"site-composer/internal/variants"
	"site-composer/pkg/registry"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list [section-type]",
		Aliases: []string{"ls"},
		Short:   "List section types, or the five variants of one section type",
		Args:    cobra.MaximumNArgs(1),
		Example: `  catalog-cli list
  catalog-cli list hero --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runListSections(cmd.OutOrStdout(), jsonOutput)
			}
			return runListVariants(cmd.OutOrStdout(), args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}

func runListSections(w io.Writer, jsonOutput bool) error {
	catalog := variants.Default()
	types := variants.KnownSectionTypes()

	if jsonOutput {
		type row struct {
			SectionType string `json:"sectionType"`
			Dedicated   bool   `json:"dedicated"`
		}
		rows := make([]row, 0, len(types))
		for _, st := range types {
			rows = append(rows, row{SectionType: string(st), Dedicated: catalog.HasDedicated(st)})
		}
		return writeJSON(w, rows)
	}

	fmt.Fprintf(w, "Section types (%d):\n\n", len(types))
	for _, st := range types {
		source := "shared"
		if catalog.HasDedicated(st) {
			source = "dedicated"
		}
		fmt.Fprintf(w, "  %-14s %s\n", st, source)
	}
	return nil
}

func runListVariants(w io.Writer, sectionType string, jsonOutput bool) error {
	st, err := variants.ParseSectionType(sectionType)
	if err != nil {
		return err
	}
	descriptors := variants.Default().For(st)

	if jsonOutput {
		return writeJSON(w, descriptors)
	}

	fmt.Fprintf(w, "Variants for %s:\n\n", st)
	for _, d := range descriptors {
		fmt.Fprintf(w, "  %d  %-12s %s\n", d.Number, d.Personality, d.Description)
		fmt.Fprintf(w, "     traits: %s\n", strings.Join(d.Traits, ", "))
	}
	return nil
}

func newRecommendCmd() *cobra.Command {
	var (
		section    string
		sections   []string
		traits     []string
		industry   string
		margin     float64
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Preview the variant the engine picks for a brand personality",
		Example: `  catalog-cli recommend --section hero --traits bold,creative
  catalog-cli recommend --sections hero,services,contact --traits elegant --industry spa`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if section == "" && len(sections) == 0 {
				return fmt.Errorf("either --section or --sections is required")
			}
			profile := models.BusinessProfile{Industry: industry, BrandPersonality: traits}
			selector := variants.NewSelector(nil, variants.WithConsistencyMargin(margin))

			if section != "" {
				return runRecommendSection(cmd.OutOrStdout(), selector, section, profile, jsonOutput)
			}
			return runRecommendSite(cmd.OutOrStdout(), selector, sections, profile, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&section, "section", "", "Single section type to score")
	cmd.Flags().StringSliceVar(&sections, "sections", nil, "Ordered section types for a site-wide selection")
	cmd.Flags().StringSliceVarP(&traits, "traits", "t", nil, "Brand personality traits")
	cmd.Flags().StringVar(&industry, "industry", "", "Business industry")
	cmd.Flags().Float64Var(&margin, "margin", 0.15, "Consistency margin for site-wide selection")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}

func runRecommendSection(w io.Writer, selector *variants.Selector, section string, profile models.BusinessProfile, jsonOutput bool) error {
	sel, err := selector.SelectVariant(section, profile.Industry, profile)
	if err != nil {
		return err
	}
	scored, err := selector.AllVariantsWithScores(section, profile.Industry, profile)
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(w, map[string]interface{}{
			"selection": sel,
			"variants":  scored,
		})
	}

	fmt.Fprintf(w, "%s -> variant %d (%d%%)\n", sel.SectionType, sel.SelectedVariant, variants.Percent(sel.Score))
	fmt.Fprintf(w, "  %s\n\n", sel.Reasoning)
	for _, v := range scored {
		marker := " "
		if v.IsRecommended {
			marker = "*"
		}
		fit := ""
		if v.IndustryFit {
			fit = "  industry fit"
		}
		fmt.Fprintf(w, "  %s %d  %-12s %3d%%%s\n", marker, v.Variant, v.Personality, variants.Percent(v.Score), fit)
	}
	return nil
}

func runRecommendSite(w io.Writer, selector *variants.Selector, sections []string, profile models.BusinessProfile, jsonOutput bool) error {
	result, err := selector.SelectVariantsForSite(sections, profile.Industry, profile)
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(w, result)
	}

	for _, sel := range result.Selections {
		fmt.Fprintf(w, "  %-14s variant %d (%d%%)\n", sel.SectionType, sel.SelectedVariant, variants.Percent(sel.Score))
	}
	fmt.Fprintf(w, "\n%s\n", result.OverallReasoning)
	return nil
}

func newExportCmd() *cobra.Command {
	var output string
	var exportVersion string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog with component names as a JSON document",
		RunE: func(cmd *cobra.Command, args []string) error {
			exp := buildExport(exportVersion, time.Now().UTC())
			if err := registry.SaveExport(exp, output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d section types to %s\n", len(exp.SectionTypes), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "configs/variant-catalog.json", "Output path")
	cmd.Flags().StringVar(&exportVersion, "version", "1.0.0", "Version stamped into the export")
	return cmd
}

func buildExport(exportVersion string, now time.Time) *registry.CatalogExport {
	catalog := variants.Default()
	components := variants.NewComponentRegistry()

	exp := &registry.CatalogExport{
		Version:     exportVersion,
		GeneratedAt: now.Format(time.RFC3339),
	}
	for _, st := range variants.KnownSectionTypes() {
		entry := registry.SectionEntry{SectionType: string(st), Dedicated: catalog.HasDedicated(st)}
		for _, d := range catalog.For(st) {
			component, _ := components.Resolve(variants.RenderKey{SectionType: st, Variant: d.Number})
			entry.Variants = append(entry.Variants, registry.VariantEntry{
				Number:      d.Number,
				Personality: string(d.Personality),
				Style:       d.Style,
				Description: d.Description,
				Traits:      d.Traits,
				BestFor:     d.BestForIndustries,
				Component:   component,
			})
		}
		exp.SectionTypes = append(exp.SectionTypes, entry)
	}
	return exp
}

func newValidateCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an exported catalog document",
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := registry.LoadExport(path)
			if err != nil {
				return fmt.Errorf("failed to load catalog export: %w", err)
			}
			if err := exp.Validate(variants.VariantCount); err != nil {
				return fmt.Errorf("catalog export validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog export valid. Found %d section types.\n", len(exp.SectionTypes))
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "configs/variant-catalog.json", "Path to the export file")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
