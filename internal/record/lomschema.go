package record

import (
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// lomSchema describes the expected shape of the recognized metadata keys.
// Validation is advisory: a tree that fails still gets stored and exported,
// the failures come back as warnings so editors can clean the data up.
const lomSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "id": {"type": ["string", "number"]},
    "title": {"type": "string"},
    "language": {"type": "string"},
    "description": {"type": "string"},
    "keywords": {
      "anyOf": [
        {"type": "string"},
        {"type": "array", "items": {"type": "string"}}
      ]
    },
    "coverage": {"type": "string"},
    "lifecycle": {
      "type": "object",
      "properties": {
        "version": {"type": ["string", "number"]},
        "status": {"type": "string"},
        "contributors": {
          "type": "array",
          "items": {
            "type": "object",
            "properties": {
              "role": {"type": "string"},
              "entity": {"type": "string"},
              "date": {"type": "string"}
            }
          }
        }
      }
    },
    "educational": {
      "anyOf": [
        {"type": "object"},
        {"type": "array", "items": {"type": "object"}}
      ]
    },
    "rights": {"type": "object"},
    "classifications": {
      "type": "array",
      "items": {"type": "object"}
    },
    "relations": {
      "type": "array",
      "items": {"type": "object"}
    }
  }
}`

var compiledLOMSchema = jsonschema.MustCompileString("lom.schema.json", lomSchema)

// ValidateLOM checks a metadata tree against the recognized shape and returns
// one warning string per mismatch. An empty slice means the tree is clean.
func ValidateLOM(lom map[string]any) []string {
	if len(lom) == 0 {
		return nil
	}

	err := compiledLOMSchema.Validate(normalizeForSchema(lom))
	if err == nil {
		return nil
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}

	warnings := collectLeafCauses(ve)
	sort.Strings(warnings)
	return warnings
}

// collectLeafCauses walks the validation error tree and keeps the leaves,
// which carry the specific mismatch messages.
func collectLeafCauses(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{fmt.Sprintf("%s: %s", loc, ve.Message)}
	}
	var out []string
	for _, cause := range ve.Causes {
		out = append(out, collectLeafCauses(cause)...)
	}
	return out
}

// normalizeForSchema rewrites the tree into the plain map/slice/scalar forms
// the validator expects, so values decoded from YAML or built in code behave
// the same as JSON-decoded ones.
func normalizeForSchema(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeForSchema(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeForSchema(val)
		}
		return out
	case string, bool, nil, float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// FormatWarnings joins warnings for log output.
func FormatWarnings(warnings []string) string {
	return strings.Join(warnings, "; ")
}
