package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/accessplane/access-host-sdk/manifest"
	"github.com/accessplane/access-host-sdk/validation"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator validates raw configuration documents against registered schemas.
// Schema violations are recoverable field errors, never panics: the operator
// fixes the form and retries.
type Validator struct {
	registry *Registry
}

// NewValidator creates a Validator over the given registry.
func NewValidator(registry *Registry) *Validator {
	return &Validator{registry: registry}
}

// Validate checks a configuration document against the schema registered for
// the platform's access-item type. A missing schema means the platform does
// not constrain that type; the document passes.
func (v *Validator) Validate(platformKey string, t manifest.AccessItemType, doc map[string]any) validation.Result {
	var res validation.Result

	schemaStr, ok := v.registry.GetSchema(platformKey, t)
	if !ok {
		return res
	}

	compiled, err := compile(platformKey, t, schemaStr)
	if err != nil {
		res.Errors = append(res.Errors, validation.FieldError{
			Field:   "$schema",
			Message: fmt.Sprintf("schema for %s/%s is not compilable: %v", platformKey, t, err),
		})
		return res
	}

	// Round-trip through JSON so numeric types match what the schema engine
	// expects regardless of how the caller built the map.
	instance, err := toInstance(doc)
	if err != nil {
		res.Errors = append(res.Errors, validation.FieldError{
			Field:   "$document",
			Message: fmt.Sprintf("configuration is not serializable: %v", err),
		})
		return res
	}

	if err := compiled.Validate(instance); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			res.Errors = append(res.Errors, flatten(ve.BasicOutput())...)
		} else {
			res.Errors = append(res.Errors, validation.FieldError{
				Field:   "$document",
				Message: err.Error(),
			})
		}
	}

	return res
}

func compile(platformKey string, t manifest.AccessItemType, schemaStr string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	url := fmt.Sprintf("accesshost://%s/%s.schema.json", platformKey, t)
	if err := compiler.AddResource(url, strings.NewReader(schemaStr)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

func toInstance(doc map[string]any) (any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// flatten converts the schema engine's basic output into ordered field
// errors, skipping the root aggregate entry.
func flatten(out jsonschema.Basic) []validation.FieldError {
	if out.Valid {
		return nil
	}
	var errs []validation.FieldError
	for _, e := range out.Errors {
		if e.Error == "" || e.KeywordLocation == "" {
			continue
		}
		errs = append(errs, validation.FieldError{
			Field:   fieldFromPointer(e.InstanceLocation),
			Message: e.Error,
		})
	}
	return errs
}

// fieldFromPointer converts a JSON pointer like "/checkoutPolicy/0" into a
// dotted field path for display.
func fieldFromPointer(ptr string) string {
	if ptr == "" || ptr == "/" {
		return "$document"
	}
	return strings.ReplaceAll(strings.TrimPrefix(ptr, "/"), "/", ".")
}
