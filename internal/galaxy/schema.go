package galaxy

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/*.json
var schemaFS embed.FS

// schemaBase is the fixed URL the embedded schemas are registered under, so
// that their ids and error locations do not depend on the working directory.
const schemaBase = "https://cartographer.local/schema/"

var (
	scanSchema   = mustCompile("scan.json")
	starSchema   = mustCompile("star.json")
	planetSchema = mustCompile("planet.json")
)

func mustCompile(name string) *jsonschema.Schema {
	data, err := schemaFS.ReadFile("schema/" + name)
	if err != nil {
		panic(fmt.Sprintf("galaxy: read schema %s: %v", name, err))
	}
	url := schemaBase + name
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, bytes.NewReader(data)); err != nil {
		panic(fmt.Sprintf("galaxy: add schema %s: %v", name, err))
	}
	return c.MustCompile(url)
}

// decodeDocument decodes a payload into the generic form the validator
// expects. Numbers stay json.Number so large system addresses keep their
// integer type.
func decodeDocument(payload []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("payload is not an object")
	}
	return doc, nil
}
