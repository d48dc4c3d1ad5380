package rabbitmq

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"immo-parser-service/internal/constants"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var schemaFiles = map[string]string{
	constants.EventTypeListingFound: "schemas/listing-found.v1.json",
	constants.EventTypePhoneFound:   "schemas/phone-found.v1.json",
}

// Contracts - скомпилированные схемы исходящих событий по ключу "тип/версия"
type Contracts struct {
	schemas map[string]*jsonschema.Schema
}

func contractKey(eventType, version string) string {
	return eventType + "/" + version
}

// LoadContracts компилирует встроенные схемы событий
func LoadContracts() (*Contracts, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	c := &Contracts{schemas: make(map[string]*jsonschema.Schema, len(schemaFiles))}
	for eventType, path := range schemaFiles {
		raw, err := schemaFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("contracts: read %s: %w", path, err)
		}
		url := "immo://events/" + path
		if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("contracts: add %s: %w", path, err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("contracts: compile %s: %w", path, err)
		}
		c.schemas[contractKey(eventType, constants.EventVersion)] = schema
	}
	return c, nil
}

// Validate проверяет тело сообщения по схеме события
func (c *Contracts) Validate(eventType, version string, body []byte) error {
	schema, ok := c.schemas[contractKey(eventType, version)]
	if !ok {
		return fmt.Errorf("schema for event '%s' version '%s' not found", eventType, version)
	}
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("message body is not a valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}
