package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	resumeforgeErrors "resumeforge/internal/errors"

	"github.com/xeipuuv/gojsonschema"
)

// ErrCodeAIResponseParse is the error code for unparseable model output
const ErrCodeAIResponseParse = "AI_RESPONSE_PARSE_FAILED"

// ExtractJSONObject scans raw model output for the first balanced top-level
// JSON object and returns it. Models occasionally wrap their JSON in prose or
// markdown fences despite response-schema instructions; the scanner tolerates
// that by tracking brace depth outside of string literals.
func ExtractJSONObject(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object found in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return raw[start : i+1], nil
				}
			}
		}
	}

	return "", fmt.Errorf("unbalanced JSON object in response")
}

// ResponseValidator validates extracted model JSON against a schema before it
// is decoded into a typed value. Model output is untrusted input.
type ResponseValidator struct {
	name   string
	schema *gojsonschema.Schema
}

// NewResponseValidator compiles a JSON schema for response validation
func NewResponseValidator(name, schemaJSON string) (*ResponseValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s response schema: %w", name, err)
	}
	return &ResponseValidator{name: name, schema: schema}, nil
}

func mustResponseValidator(name, schemaJSON string) *ResponseValidator {
	v, err := NewResponseValidator(name, schemaJSON)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks a JSON document against the compiled schema
func (v *ResponseValidator) Validate(doc string) error {
	result, err := v.schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Errorf("%s response is not valid JSON: %w", v.name, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return fmt.Errorf("%s response failed schema validation: %s", v.name, strings.Join(details, "; "))
	}
	return nil
}

// DecodeModelResponse extracts, validates, and decodes a typed value from raw
// model output. Returns a typed AI error so callers can distinguish parse
// failures from transport failures.
func DecodeModelResponse[Out any](raw string, validator *ResponseValidator) (Out, error) {
	var out Out

	doc, err := ExtractJSONObject(raw)
	if err != nil {
		return out, resumeforgeErrors.NewAIError(ErrCodeAIResponseParse,
			"Failed to locate JSON in model response", err)
	}

	if validator != nil {
		if err := validator.Validate(doc); err != nil {
			return out, resumeforgeErrors.NewAIError(ErrCodeAIResponseParse,
				"Model response failed validation", err)
		}
	}

	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		return out, resumeforgeErrors.NewAIError(ErrCodeAIResponseParse,
			"Failed to decode model response", err)
	}

	return out, nil
}

// scoreResultSchema validates scoring responses before decoding. Range
// clamping happens after decode; the schema only enforces shape and types.
const scoreResultSchema = `{
	"type": "object",
	"required": ["score", "breakdown"],
	"properties": {
		"score": {"type": "integer"},
		"breakdown": {
			"type": "object",
			"required": ["keywordMatch", "experienceRelevance", "formatCompatibility", "sectionCompleteness", "clarityUniqueness"],
			"properties": {
				"keywordMatch": {"type": "integer"},
				"experienceRelevance": {"type": "integer"},
				"formatCompatibility": {"type": "integer"},
				"sectionCompleteness": {"type": "integer"},
				"clarityUniqueness": {"type": "integer"}
			}
		},
		"feedback": {
			"type": "array",
			"items": {"type": "string"}
		},
		"improvements": {
			"type": "array",
			"items": {"type": "string"}
		}
	}
}`

// sectionContentSchema validates regeneration responses. Which field is
// populated depends on the regenerated section, so none are required here;
// the provider checks section-specific presence after decoding.
const sectionContentSchema = `{
	"type": "object",
	"properties": {
		"summary": {"type": "string"},
		"skills": {
			"type": "object",
			"additionalProperties": {
				"type": "array",
				"items": {"type": "string"}
			}
		},
		"bullets": {
			"type": "array",
			"items": {"type": "string"}
		}
	}
}`

var (
	scoreResultValidator    = mustResponseValidator("score", scoreResultSchema)
	sectionContentValidator = mustResponseValidator("regenerate", sectionContentSchema)
)
