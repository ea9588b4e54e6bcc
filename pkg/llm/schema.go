package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/panbanda/commitlens/pkg/models"
	"github.com/panbanda/commitlens/pkg/review"
)

const schemaURL = "commitlens://external-analysis.json"

// ResponseSchema is the JSON Schema of the model's answer.
const ResponseSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["quality_score", "issues", "security_concerns", "performance_impact", "recommendations"],
  "properties": {
    "quality_score": {"type": "number", "minimum": 0, "maximum": 10},
    "issues": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type", "severity", "description"],
        "properties": {
          "type": {"type": "string"},
          "severity": {"type": "string"},
          "description": {"type": "string"}
        }
      }
    },
    "security_concerns": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["level", "description"],
        "properties": {
          "level": {"type": "string"},
          "description": {"type": "string"}
        }
      }
    },
    "performance_impact": {"type": "string"},
    "recommendations": {"type": "array", "items": {"type": "string"}}
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(ResponseSchema))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

// responseSchemaDoc is ResponseSchema decoded for the generation config.
func responseSchemaDoc() map[string]any {
	var doc map[string]any
	_ = json.Unmarshal([]byte(ResponseSchema), &doc)
	delete(doc, "$schema")
	return doc
}

// ParseAnalysis validates a model answer and decodes it. Any deviation from
// ResponseSchema is reported as review.ErrMalformedResponse.
func ParseAnalysis(text string) (*models.ExternalAnalysis, error) {
	text = stripFences(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", review.ErrMalformedResponse)
	}

	sch, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile response schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", review.ErrMalformedResponse, err)
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %v", review.ErrMalformedResponse, err)
	}

	var analysis models.ExternalAnalysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", review.ErrMalformedResponse, err)
	}
	return &analysis, nil
}

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
