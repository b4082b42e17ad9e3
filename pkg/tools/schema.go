package tools

import (
	"github.com/raglab/deeprag/pkg/apperr"
)

// Schema is a small structural input schema: an object with typed
// properties and a required list. It covers required-field presence and
// primitive type checks, which is all the registered tools need.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Validate checks args against the schema. Properties not declared in
// the schema are allowed and passed through.
func (s Schema) Validate(args map[string]interface{}) error {
	for _, field := range s.Required {
		v, ok := args[field]
		if !ok || v == nil {
			return apperr.Validationf("missing required field: %s", field)
		}
	}

	for name, prop := range s.Properties {
		v, ok := args[name]
		if !ok || v == nil {
			continue
		}
		if !matchesType(v, prop.Type) {
			return apperr.Validationf("field %s must be of type %s", name, prop.Type)
		}
	}
	return nil
}

func matchesType(v interface{}, typ string) bool {
	switch typ {
	case "string":
		_, ok := v.(string)
		return ok
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "number":
		switch v.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case "integer":
		switch n := v.(type) {
		case int, int64:
			return true
		case float64:
			// JSON numbers decode as float64.
			return n == float64(int64(n))
		}
		return false
	case "object":
		_, ok := v.(map[string]interface{})
		return ok
	case "array":
		_, ok := v.([]interface{})
		return ok
	case "":
		return true
	}
	return false
}
