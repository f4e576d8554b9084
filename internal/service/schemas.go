// internal/service/schemas.go
package service

import "site-composer/internal/common/validation"

// Request schemas shared by the HTTP API and the workflow workers. Range
// checks on variant numbers stay in the service so they map to INVALID_VARIANT.
var (
	RecommendRequestSchema = validation.ParseSchema(`{
		"type": "object",
		"properties": {
			"siteId":          {"type": "string", "minLength": 1},
			"sectionType":     {"type": "string", "minLength": 1},
			"sections":        {"type": "array", "items": {"type": "string", "minLength": 1}},
			"apply":           {"type": "boolean"},
			"businessProfile": {
				"type": "object",
				"properties": {
					"industry":         {"type": "string"},
					"brandPersonality": {"type": "array", "items": {"type": "string"}}
				}
			}
		}
	}`)

	SwitchRequestSchema = validation.ParseSchema(`{
		"type": "object",
		"properties": {
			"siteId":      {"type": "string", "minLength": 1},
			"sectionId":   {"type": "string"},
			"sectionType": {"type": "string"},
			"newVariant":  {"type": "integer"},
			"isOverride":  {"type": "boolean"}
		},
		"required": ["newVariant"],
		"anyOf": [["sectionId", "sectionType"]]
	}`)

	AddSectionRequestSchema = validation.ParseSchema(`{
		"type": "object",
		"properties": {
			"type":    {"type": "string", "minLength": 1},
			"variant": {"type": "integer"},
			"content": {"type": "object"}
		},
		"required": ["type"]
	}`)

	ReorderRequestSchema = validation.ParseSchema(`{
		"type": "object",
		"properties": {
			"sectionIds": {"type": "array", "items": {"type": "string", "minLength": 1}}
		},
		"required": ["sectionIds"]
	}`)
)
