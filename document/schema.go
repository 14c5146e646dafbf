package document

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// SchemaID is the $id of the generated schema.
const SchemaID = "https://github.com/ggoodman/autofill-go/document/response.schema.json"

// Schema reflects the JSON Schema of a Response document. Datasets and fields
// are kept as named definitions so editors can offer completion per element.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
	}
	s := r.Reflect(new(Response))
	s.ID = jsonschema.ID(SchemaID)
	s.Title = "Autofill fill response"
	return s
}

// SchemaJSON returns Schema encoded as indented JSON.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}
