package i18n

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// catalogSchema documents the shape of a serialised translation catalog.
// Translation values must be strings; language blocks must not be empty.
const catalogSchema = `
{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "TranslationCatalog",
  "type": "object",
  "required": ["translations"],
  "properties": {
    "config": {
      "type": "object",
      "properties": {
        "default_language": {"type": "string", "minLength": 1},
        "languages": {
          "type": "array",
          "items": {"type": "string", "minLength": 1}
        }
      }
    },
    "translations": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "object",
        "minProperties": 1,
        "additionalProperties": {"type": "string"}
      }
    }
  }
}
`

var compiledCatalogSchema = mustCompileCatalogSchema()

func mustCompileCatalogSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("sitekit://i18n/catalog.schema.json", bytes.NewReader([]byte(catalogSchema))); err != nil {
		panic(fmt.Sprintf("i18n: add catalog schema resource: %v", err))
	}
	schema, err := compiler.Compile("sitekit://i18n/catalog.schema.json")
	if err != nil {
		panic(fmt.Sprintf("i18n: compile catalog schema: %v", err))
	}
	return schema
}

// ValidateCatalogDocument checks raw catalog JSON against the schema before
// it is decoded, so malformed files fail with a precise location instead of a
// decode error deep in the table.
func ValidateCatalogDocument(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if err := compiledCatalogSchema.Validate(doc); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}
