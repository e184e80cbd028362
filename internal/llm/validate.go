package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
)

var (
	// ErrMalformedReply marks a model reply that is not a JSON document.
	ErrMalformedReply = errors.New("reply is not valid JSON")
	// ErrSchemaMismatch marks a JSON reply that violates the stage's reply schema.
	ErrSchemaMismatch = errors.New("reply does not match schema")
)

// compiled caches reply schemas by their JSON encoding.
var compiled sync.Map

// DecodeReply checks a model reply against schema and decodes it into out.
// Failures are capability errors tagged with stage.
func DecodeReply(stage string, schema map[string]any, reply []byte, out any) error {
	s, err := compileSchema(schema)
	if err != nil {
		return common.NewConfigError(stage, "invalid reply schema", err)
	}
	var doc any
	if err := json.Unmarshal(reply, &doc); err != nil {
		return common.NewCapabilityError(stage, "decode reply", fmt.Errorf("%w: %v", ErrMalformedReply, err))
	}
	if err := s.Validate(doc); err != nil {
		return common.NewCapabilityError(stage, "validate reply", fmt.Errorf("%w: %v", ErrSchemaMismatch, err))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(reply, out); err != nil {
		return common.NewCapabilityError(stage, "unmarshal reply", err)
	}
	return nil
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	key := string(b)
	if s, ok := compiled.Load(key); ok {
		return s.(*jsonschema.Schema), nil
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("reply.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	s, err := compiler.Compile("reply.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	actual, _ := compiled.LoadOrStore(key, s)
	return actual.(*jsonschema.Schema), nil
}
