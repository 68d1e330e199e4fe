package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/startpacket/internal/common"
	"github.com/joseph-ayodele/startpacket/internal/entity"
)

const draftSchemaURL = "draft.schema.json"

var (
	draftOnce   sync.Once
	draftSchema *jsonschema.Schema
	draftErr    error
)

// Compile compiles a schema map into a reusable validator.
func Compile(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(draftSchemaURL, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	s, err := compiler.Compile(draftSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return s, nil
}

// ValidateJSON validates raw JSON against the Draft contract.
func ValidateJSON(data []byte) error {
	draftOnce.Do(func() {
		draftSchema, draftErr = Compile(BuildDraftJSONSchema())
	})
	if draftErr != nil {
		return draftErr
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := draftSchema.Validate(v); err != nil {
		return common.NewAppError("SCHEMA_MISMATCH", "draft does not match schema", fmt.Errorf("%w: %v", common.ErrValidation, err))
	}
	return nil
}

// ValidateDraft marshals a draft and checks it against the output contract.
func ValidateDraft(d *entity.Draft) error {
	if d == nil {
		return common.NewAppError("SCHEMA_MISMATCH", "draft is nil", common.ErrValidation)
	}
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	return ValidateJSON(data)
}
