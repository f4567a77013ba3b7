package tools

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"maps-mcp/internal/maps"
)

func object(required []string, props map[string]*jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Properties: props, Required: required}
}

func str(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description, MinLength: intPtr(1)}
}

func number(description string, min, max float64) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "number", Description: description, Minimum: &min, Maximum: &max}
}

func latLng(description string) *jsonschema.Schema {
	s := object([]string{"lat", "lng"}, map[string]*jsonschema.Schema{
		"lat": number("Latitude in degrees", -90, 90),
		"lng": number("Longitude in degrees", -180, 180),
	})
	s.Description = description
	return s
}

func nonEmptyArray(description string, items *jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Description: description, Items: items, MinItems: intPtr(1)}
}

func travelMode() *jsonschema.Schema {
	enum := make([]any, 0, len(maps.Modes))
	for _, m := range maps.Modes {
		enum = append(enum, m)
	}
	return &jsonschema.Schema{
		Type:        "string",
		Description: "Travel mode (driving, walking, bicycling, transit); defaults to driving",
		Enum:        enum,
		Default:     json.RawMessage(`"` + maps.ModeDriving + `"`),
	}
}

func intPtr(v int) *int { return &v }
