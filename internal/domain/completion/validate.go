package completion

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	"github.com/matiasleandrokruk/llm-server/internal/infra/llm"
)

const requestSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["input"],
  "properties": {
    "input": { "type": "string", "minLength": 1 },
    "params": {
      "type": "object",
      "properties": {
        "temperature":      { "type": "number",  "minimum": 0, "maximum": 2 },
        "top_p":            { "type": "number",  "minimum": 0, "maximum": 1 },
        "top_k":            { "type": "integer", "minimum": 1 },
        "reasoning_effort": { "type": "integer", "minimum": 1, "maximum": 10 }
      }
    }
  }
}`

const rootField = "(root)"

var requestSchema = mustCompileSchema(requestSchemaJSON)

func mustCompileSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("completion: invalid request schema: %v", err))
	}
	return schema
}

// Parse validates a raw JSON body and decodes it into a Request.
// On failure every violated constraint is reported, sorted by field.
func Parse(body []byte) (Request, *ValidationError) {
	result, err := requestSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return Request{}, rootError("invalid_json", "Request body must be a valid JSON document")
	}
	if !result.Valid() {
		return Request{}, &ValidationError{Fields: fieldErrors(result.Errors())}
	}

	var in wireRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return Request{}, rootError("invalid_type", err.Error())
	}
	return in.request(), nil
}

// wireRequest mirrors Request but reads integer params as JSON numbers, so
// integral floats such as 40.0 decode once the schema has accepted them.
type wireRequest struct {
	Input  string      `json:"input"`
	Params *wireParams `json:"params"`
}

type wireParams struct {
	Temperature     *float64 `json:"temperature"`
	TopP            *float64 `json:"top_p"`
	TopK            *float64 `json:"top_k"`
	ReasoningEffort *float64 `json:"reasoning_effort"`
}

func (w wireRequest) request() Request {
	req := Request{Input: w.Input}
	if w.Params != nil {
		req.Params = &llm.Params{
			Temperature:     w.Params.Temperature,
			TopP:            w.Params.TopP,
			TopK:            toInt(w.Params.TopK),
			ReasoningEffort: toInt(w.Params.ReasoningEffort),
		}
	}
	return req
}

// toInt converts a schema-checked integral number. Values past MaxInt32
// saturate; no provider distinguishes them.
func toInt(f *float64) *int {
	if f == nil {
		return nil
	}
	n := int(math.Min(*f, math.MaxInt32))
	return &n
}

// fieldErrors converts schema results into FieldErrors.
func fieldErrors(results []gojsonschema.ResultError) []FieldError {
	out := make([]FieldError, 0, len(results))
	for _, re := range results {
		field := fieldName(re)
		msg := re.Description()
		if field == "input" && (re.Type() == "required" || re.Type() == "string_gte") {
			msg = "Input is required"
		}
		out = append(out, FieldError{Field: field, Type: re.Type(), Message: msg})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// fieldName resolves the offending field. Required-property errors are
// reported on the parent, so the missing property name is appended.
func fieldName(re gojsonschema.ResultError) string {
	field := re.Field()
	if re.Type() != "required" {
		return field
	}
	prop, ok := re.Details()["property"].(string)
	if !ok || prop == "" {
		return field
	}
	if field == rootField {
		return prop
	}
	return field + "." + prop
}
