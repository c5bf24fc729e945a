package api

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/idilsaglam/todoc/internal/model"
)

//go:embed list_schema.json
var listSchemaJSON string

var listSchema = sync.OnceValue(func() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("list.json", strings.NewReader(listSchemaJSON)); err != nil {
		panic(fmt.Sprintf("api: add list schema: %v", err))
	}
	return compiler.MustCompile("list.json")
})

// decodeList validates the raw list payload against the embedded schema
// and then decodes it. The schema is the client's only defense against a
// backend that answers 200 with the wrong shape.
func decodeList(raw []byte) ([]model.Item, error) {
	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if err := listSchema().Validate(payload); err != nil {
		return nil, fmt.Errorf("response shape: %w", err)
	}
	var items []model.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}
