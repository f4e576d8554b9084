// internal/content/validate.go
package content

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "site-composer/internal/common/errors"
	"site-composer/internal/variants"

	"github.com/xeipuuv/gojsonschema"
)

var compiled = mustCompile()

func mustCompile() map[string]*gojsonschema.Schema {
	out := make(map[string]*gojsonschema.Schema, len(sectionSchemas)+1)
	for name, s := range sectionSchemas {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(s))
		if err != nil {
			panic(fmt.Sprintf("content: schema for %s does not compile: %v", name, err))
		}
		out[name] = schema
	}
	generic, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(genericSchema))
	if err != nil {
		panic(fmt.Sprintf("content: generic schema does not compile: %v", err))
	}
	out[""] = generic
	return out
}

// Validate checks raw against the schema of sectionType and decodes it into
// the matching content record. An empty raw document is treated as {}.
func Validate(sectionType string, raw json.RawMessage) (SectionContent, error) {
	st, err := variants.ParseSectionType(sectionType)
	if err != nil {
		return nil, apperrors.NewUnknownSectionTypeError(sectionType)
	}
	name := string(st)

	if len(strings.TrimSpace(string(raw))) == 0 {
		raw = json.RawMessage("{}")
	}

	schema, ok := compiled[name]
	if !ok {
		schema = compiled[""]
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, apperrors.NewInvalidContentError(name, fmt.Sprintf("malformed document: %v", err))
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, apperrors.NewInvalidContentError(name, strings.Join(errs, "; "))
	}

	return decode(name, raw)
}

func decode(name string, raw json.RawMessage) (SectionContent, error) {
	var target SectionContent
	switch name {
	case "hero":
		target = &HeroContent{}
	case "services":
		target = &ServicesContent{}
	case "about":
		target = &AboutContent{}
	case "process":
		target = &ProcessContent{}
	case "testimonials":
		target = &TestimonialsContent{}
	case "portfolio":
		target = &PortfolioContent{}
	case "contact":
		target = &ContactContent{}
	case "menu":
		target = &MenuContent{}
	case "location":
		target = &LocationContent{}
	case "gallery":
		target = &GalleryContent{}
	default:
		fields := map[string]interface{}{}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, apperrors.NewInvalidContentError(name, err.Error())
		}
		return GenericContent{Type: name, Fields: fields}, nil
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return nil, apperrors.NewInvalidContentError(name, err.Error())
	}
	return target, nil
}
