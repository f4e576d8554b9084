// internal/content/schemas.go
package content

type schemaMap = map[string]interface{}

func str() schemaMap { return schemaMap{"type": "string"} }

func nonEmpty() schemaMap { return schemaMap{"type": "string", "minLength": 1} }

func object(required []string, props schemaMap) schemaMap {
	s := schemaMap{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func arrayOf(item schemaMap, minItems int) schemaMap {
	return schemaMap{"type": "array", "items": item, "minItems": minItems}
}

var ctaSchema = object([]string{"text"}, schemaMap{"text": nonEmpty(), "href": str()})

// sectionSchemas are JSON Schemas for every section type with a dedicated content record.
var sectionSchemas = map[string]schemaMap{
	"hero": object([]string{"headline"}, schemaMap{
		"headline":        nonEmpty(),
		"subheadline":     str(),
		"primaryCta":      ctaSchema,
		"secondaryCta":    ctaSchema,
		"backgroundImage": str(),
	}),
	"services": object([]string{"items"}, schemaMap{
		"heading": str(),
		"items": arrayOf(object([]string{"title"}, schemaMap{
			"title": nonEmpty(), "description": str(), "icon": str(),
		}), 1),
	}),
	"about": object([]string{"body"}, schemaMap{
		"heading":    str(),
		"body":       nonEmpty(),
		"highlights": arrayOf(str(), 0),
		"imageUrl":   str(),
	}),
	"process": object([]string{"steps"}, schemaMap{
		"heading": str(),
		"steps": arrayOf(object([]string{"title"}, schemaMap{
			"title": nonEmpty(), "description": str(),
		}), 1),
	}),
	"testimonials": object([]string{"testimonials"}, schemaMap{
		"heading": str(),
		"testimonials": arrayOf(object([]string{"quote", "author"}, schemaMap{
			"quote":  nonEmpty(),
			"author": nonEmpty(),
			"role":   str(),
			"rating": schemaMap{"type": "integer", "minimum": 1, "maximum": 5},
		}), 1),
	}),
	"portfolio": object([]string{"projects"}, schemaMap{
		"heading": str(),
		"projects": arrayOf(object([]string{"title"}, schemaMap{
			"title": nonEmpty(), "description": str(), "imageUrl": str(), "link": str(),
		}), 1),
	}),
	"contact": schemaMap{
		"type": "object",
		"properties": schemaMap{
			"heading":  str(),
			"email":    schemaMap{"type": "string", "format": "email"},
			"phone":    str(),
			"address":  str(),
			"showForm": schemaMap{"type": "boolean"},
		},
		"anyOf": []interface{}{
			schemaMap{"required": []string{"email"}},
			schemaMap{"required": []string{"phone"}},
			schemaMap{"required": []string{"address"}},
			schemaMap{"properties": schemaMap{"showForm": schemaMap{"const": true}}, "required": []string{"showForm"}},
		},
	},
	"menu": object([]string{"categories"}, schemaMap{
		"heading": str(),
		"categories": arrayOf(object([]string{"name", "items"}, schemaMap{
			"name": nonEmpty(),
			"items": arrayOf(object([]string{"name"}, schemaMap{
				"name": nonEmpty(), "description": str(), "price": str(),
			}), 1),
		}), 1),
	}),
	"location": object([]string{"address"}, schemaMap{
		"heading": str(),
		"address": nonEmpty(),
		"hours":   arrayOf(str(), 0),
		"mapUrl":  str(),
	}),
	"gallery": object([]string{"images"}, schemaMap{
		"heading": str(),
		"images": arrayOf(object([]string{"url"}, schemaMap{
			"url": nonEmpty(), "caption": str(),
		}), 1),
	}),
}

// genericSchema accepts any JSON object for section types without a dedicated record.
var genericSchema = schemaMap{"type": "object"}
