package todo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaVersion is the snapshot format version written by Save.
const SchemaVersion = 1

const embeddedSchemaURL = "mem://todo.schema.json"

// EmbeddedSchema is the JSON Schema used when no schema file is given.
const EmbeddedSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "required": ["schema_version", "tasks"],
  "properties": {
    "schema_version": {"type": "integer", "const": 1},
    "tasks": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["id", "name", "completed"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string"},
          "completed": {"type": "boolean"},
          "subtasks": {
            "type": "array",
            "items": {
              "type": "object",
              "additionalProperties": false,
              "required": ["id", "name"],
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "name": {"type": "string"},
                "time_label": {"type": "string"}
              }
            }
          }
        }
      }
    }
  }
}`

// File is the on-disk snapshot of a List.
type File struct {
	SchemaVersion int          `json:"schema_version"`
	Tasks         []TaskRecord `json:"tasks"`
}

// TaskRecord is the stored form of a Task.
type TaskRecord struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Completed bool            `json:"completed"`
	Subtasks  []SubtaskRecord `json:"subtasks,omitempty"`
}

// SubtaskRecord is the stored form of a Subtask.
type SubtaskRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TimeLabel string `json:"time_label,omitempty"`
}

// ValidationOptions controls validation behavior.
type ValidationOptions struct {
	// SchemaPath is the path to a JSON Schema file.
	// If empty, the embedded schema is used.
	SchemaPath string
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid      bool
	Errors     []error
	Warnings   []string
	UsedSchema bool // true if JSON Schema validation was performed
}

// Snapshot captures the committed state of l.
func Snapshot(l *List) *File {
	f := &File{SchemaVersion: SchemaVersion, Tasks: make([]TaskRecord, 0, l.Len())}
	for _, t := range l.tasks {
		rec := TaskRecord{ID: t.ID, Name: t.Name, Completed: t.Completed}
		for _, s := range t.Subtasks {
			rec.Subtasks = append(rec.Subtasks, SubtaskRecord{ID: s.ID, Name: s.Name, TimeLabel: s.TimeLabel})
		}
		f.Tasks = append(f.Tasks, rec)
	}
	return f
}

// Restore builds a list from the snapshot. Every entry comes back in
// Viewing mode.
func (f *File) Restore(opts ...Option) *List {
	l := New(opts...)
	for _, rec := range f.Tasks {
		t := &Task{ID: rec.ID, Name: rec.Name, Completed: rec.Completed, newID: l.newID}
		for _, sr := range rec.Subtasks {
			t.Subtasks = append(t.Subtasks, &Subtask{
				ID:        sr.ID,
				TaskID:    t.ID,
				Name:      sr.Name,
				TimeLabel: sr.TimeLabel,
			})
		}
		l.tasks = append(l.tasks, t)
	}
	l.changed()
	return l
}

// Load reads and parses a snapshot file from path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read todo file: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse todo file: %w", err)
	}

	return &f, nil
}

// Save writes the snapshot to path with 2-space indentation.
func (f *File) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal todo file: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create todo dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write todo file: %w", err)
	}

	return nil
}

// Validate validates the snapshot against the schema, falling back to
// minimal checks when a schema file cannot be used.
func (f *File) Validate(opts ValidationOptions) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	schemaResult := validateWithSchema(f, opts.SchemaPath)
	result.UsedSchema = schemaResult.UsedSchema
	result.Warnings = append(result.Warnings, schemaResult.Warnings...)
	if schemaResult.UsedSchema {
		if !schemaResult.Valid {
			result.Valid = false
			result.Errors = append(result.Errors, schemaResult.Errors...)
		}
		return result
	}
	result.Warnings = append(result.Warnings, "JSON Schema validation not available, using minimal checks")

	f.validateMinimal(result)
	return result
}

func (f *File) validateMinimal(result *ValidationResult) {
	if f.SchemaVersion != SchemaVersion {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Path: "schema_version",
			Err:  fmt.Errorf("expected %d, got %d", SchemaVersion, f.SchemaVersion),
		})
	}

	if f.Tasks == nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Path: "tasks",
			Err:  fmt.Errorf("missing required field"),
		})
		return
	}

	for i, task := range f.Tasks {
		path := fmt.Sprintf("tasks[%d]", i)
		if task.ID == "" {
			result.Valid = false
			result.Errors = append(result.Errors, &ValidationError{Path: path + ".id", Err: fmt.Errorf("missing required field")})
		}
		for j, sub := range task.Subtasks {
			if sub.ID == "" {
				result.Valid = false
				result.Errors = append(result.Errors, &ValidationError{
					Path: fmt.Sprintf("%s.subtasks[%d].id", path, j),
					Err:  fmt.Errorf("missing required field"),
				})
			}
		}
	}
}

func compileSchema(schemaPath string) (*jsonschema.Schema, []string) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	if schemaPath == "" {
		if err := compiler.AddResource(embeddedSchemaURL, strings.NewReader(EmbeddedSchema)); err != nil {
			return nil, []string{fmt.Sprintf("invalid embedded schema: %v", err)}
		}
		schema, err := compiler.Compile(embeddedSchemaURL)
		if err != nil {
			return nil, []string{fmt.Sprintf("invalid embedded schema: %v", err)}
		}
		return schema, nil
	}

	absPath, err := filepath.Abs(schemaPath)
	if err != nil {
		return nil, []string{fmt.Sprintf("invalid schema path: %v", err)}
	}
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return nil, []string{fmt.Sprintf("schema file not found: %s", absPath)}
		}
		return nil, []string{fmt.Sprintf("failed to read schema file: %v", err)}
	}
	schema, err := compiler.Compile(absPath)
	if err != nil {
		return nil, []string{fmt.Sprintf("invalid schema file: %v", err)}
	}
	return schema, nil
}

func validateWithSchema(f *File, schemaPath string) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	schema, warnings := compileSchema(schemaPath)
	result.Warnings = append(result.Warnings, warnings...)
	if schema == nil {
		return result
	}
	result.UsedSchema = true

	// Round-trip through JSON so the schema sees the wire shape.
	fileData, err := json.Marshal(f)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Errorf("failed to marshal file for validation: %w", err))
		return result
	}
	var fileObj interface{}
	if err := json.Unmarshal(fileData, &fileObj); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Errorf("failed to unmarshal file for validation: %w", err))
		return result
	}

	if err := schema.Validate(fileObj); err != nil {
		result.Valid = false
		appendSchemaErrors(result, err)
	}
	return result
}

func appendSchemaErrors(result *ValidationResult, err error) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.Errors = append(result.Errors, err)
		return
	}
	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: JSONPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

// JSONPointerToPath turns "/tasks/0/id" into "tasks[0].id".
func JSONPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	path := ""
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		if path == "" {
			path = part
		} else {
			path += "." + part
		}
	}
	return path
}
