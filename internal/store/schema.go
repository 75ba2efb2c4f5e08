package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/portfolio-go/internal/todo"
)

const schemaURL = "mem://devices.schema.json"

// Schema describes the registry document.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "required": ["widgets"],
    "properties": {
      "widgets": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["type", "key", "name"],
          "properties": {
            "type": {"enum": ["bar", "progress", "text", "button", "barras", "progreso", "texto", "boton"]},
            "key": {"type": "string", "minLength": 1},
            "name": {"type": "string", "minLength": 1},
            "value": {"type": "string"},
            "editing": {"type": "boolean"}
          }
        }
      }
    }
  }
}`

var compiled = func() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, strings.NewReader(Schema)); err != nil {
		panic(fmt.Sprintf("devices schema: %v", err))
	}
	return c.MustCompile(schemaURL)
}()

// FieldError is a schema violation at a path such as "dev.widgets[0].key".
type FieldError struct {
	Path string
	Msg  string
}

func (e *FieldError) Error() string {
	if e.Path == "" {
		return e.Msg
	}
	return e.Path + ": " + e.Msg
}

// Validate checks data against Schema. The returned error joins one
// *FieldError per violation.
func Validate(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parse devices file: %w", err)
	}

	err := compiled.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	var errs []error
	collect(ve, &errs)
	return errors.Join(errs...)
}

func collect(ve *jsonschema.ValidationError, errs *[]error) {
	if len(ve.Causes) == 0 {
		*errs = append(*errs, &FieldError{
			Path: todo.JSONPointerToPath(ve.InstanceLocation),
			Msg:  ve.Message,
		})
		return
	}
	for _, c := range ve.Causes {
		collect(c, errs)
	}
}
