package turn

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema returns the closed JSON schema for the turn record as a plain
// map, suitable for serving over the API and for diffing against
// externally stored copies. additionalProperties is false: the schema
// rejects any field outside the declared set.
func Schema() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}

	schema := reflector.Reflect(&Turn{})
	schema.Title = "Q/A Turn"
	schema.Description = "One question/answer turn in a synthetic focus group session"

	data, err := schema.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	return m, nil
}
