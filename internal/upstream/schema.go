// internal/upstream/schema.go
package upstream

import (
	"encoding/json"
	"fmt"
	"strings"

	"niche-proxy/internal/common/errors"
	"niche-proxy/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

// nicheScoutSchema is the minimum shape a usable upstream payload must
// have. query/category stay unconstrained: null there is a legal
// (and meaningful) value.
var nicheScoutSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"niches"},
	"properties": map[string]interface{}{
		"niches": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"name"},
				"properties": map[string]interface{}{
					"name":            map[string]interface{}{"type": "string"},
					"growth_rate":     map[string]interface{}{"type": "number"},
					"shorts_friendly": map[string]interface{}{"type": "boolean"},
				},
			},
		},
	},
}

// decodeResponse parses and schema-validates an upstream payload. Any
// failure maps to ErrCodeMalformedUpstreamResponse; the orchestrator
// regenerates instead of failing the request.
func decodeResponse(body []byte) (*models.UpstreamResponse, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errors.NewMalformedUpstreamResponseError(fmt.Sprintf("invalid JSON: %v", err))
	}

	schemaLoader := gojsonschema.NewGoLoader(nicheScoutSchema)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, errors.NewMalformedUpstreamResponseError(err.Error())
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, errors.NewMalformedUpstreamResponseError(strings.Join(details, "; "))
	}

	var resp models.UpstreamResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.NewMalformedUpstreamResponseError(err.Error())
	}
	return &resp, nil
}
