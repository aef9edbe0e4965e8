package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed documents/*.yaml
var documents embed.FS

// Document names published by the presentation adapter.
const (
	IncomingState = "incoming-state"
	PickingBoard  = "picking-board"
	ErrorResponse = "error-response"
)

// DocumentValidator validates JSON documents against named JSON schemas
// written in YAML.
type DocumentValidator struct {
	schemas  map[string]*jsonschema.Schema
	compiler *jsonschema.Compiler
}

// NewDocumentValidator compiles every embedded schema document.
func NewDocumentValidator() (*DocumentValidator, error) {
	v := &DocumentValidator{
		schemas:  make(map[string]*jsonschema.Schema),
		compiler: jsonschema.NewCompiler(),
	}

	entries, err := fs.ReadDir(documents, "documents")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema documents: %w", err)
	}

	for _, entry := range entries {
		data, err := documents.ReadFile(path.Join("documents", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		name := strings.TrimSuffix(entry.Name(), ".yaml")
		if err := v.RegisterYAML(name, data); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// RegisterYAML compiles a YAML-encoded JSON schema under name.
func (v *DocumentValidator) RegisterYAML(name string, schemaYAML []byte) error {
	var raw interface{}
	if err := yaml.Unmarshal(schemaYAML, &raw); err != nil {
		return fmt.Errorf("failed to parse schema %s: %w", name, err)
	}

	schemaJSON, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to convert schema %s: %w", name, err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return fmt.Errorf("failed to decode schema %s: %w", name, err)
	}

	schemaURI := fmt.Sprintf("handy://schemas/%s.json", name)
	if err := v.compiler.AddResource(schemaURI, doc); err != nil {
		return fmt.Errorf("failed to add schema resource %s: %w", name, err)
	}

	compiled, err := v.compiler.Compile(schemaURI)
	if err != nil {
		return fmt.Errorf("failed to compile schema %s: %w", name, err)
	}

	v.schemas[name] = compiled
	return nil
}

// ValidateJSON validates a JSON document against the named schema.
func (v *DocumentValidator) ValidateJSON(name string, document []byte) error {
	schema, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("no schema registered for document: %s", name)
	}

	data, err := jsonschema.UnmarshalJSON(bytes.NewReader(document))
	if err != nil {
		return fmt.Errorf("failed to parse document %s: %w", name, err)
	}

	if err := schema.Validate(data); err != nil {
		return fmt.Errorf("document validation failed for %s: %w", name, err)
	}
	return nil
}

// Validate marshals value and validates it against the named schema.
func (v *DocumentValidator) Validate(name string, value interface{}) error {
	document, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", name, err)
	}
	return v.ValidateJSON(name, document)
}

// HasSchema checks if a schema exists for the given document name.
func (v *DocumentValidator) HasSchema(name string) bool {
	_, ok := v.schemas[name]
	return ok
}
