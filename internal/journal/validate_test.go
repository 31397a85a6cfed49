package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func mustTask(t *testing.T, text string, id int, priority Priority) Task {
	t.Helper()
	task, err := NewTask(text, "")
	if err != nil {
		t.Fatalf("NewTask failed: %v", err)
	}
	task.ID = id
	task.Priority = priority
	return task
}

func TestValidateMinimalValid(t *testing.T) {
	tasks := []Task{
		mustTask(t, "first", 1, PriorityHigh),
		mustTask(t, "second", 2, PriorityNone),
	}

	result := Validate(tasks, ValidationOptions{})
	if !result.Valid {
		t.Errorf("Valid: got false, errors: %v", result.Errors)
	}
	if result.UsedSchema {
		t.Error("UsedSchema: got true, want false")
	}
}

func TestValidateMinimalErrors(t *testing.T) {
	tests := []struct {
		name     string
		tasks    []Task
		wantPath string
	}{
		{
			name:     "empty text",
			tasks:    []Task{{ID: 1, Text: "   "}},
			wantPath: "[0].text",
		},
		{
			name:     "negative id",
			tasks:    []Task{{ID: -1, Text: "task"}},
			wantPath: "[0].id",
		},
		{
			name: "duplicate id",
			tasks: []Task{
				{ID: 3, Text: "first"},
				{ID: 3, Text: "second"},
			},
			wantPath: "[1].id",
		},
		{
			name:     "unknown priority",
			tasks:    []Task{{ID: 1, Text: "task", Priority: Priority("urgent")}},
			wantPath: "[0].priority",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.tasks, ValidationOptions{})
			if result.Valid {
				t.Fatal("Valid: got true, want false")
			}
			found := false
			for _, err := range result.Errors {
				if ve, ok := err.(*ValidationError); ok && ve.Path == tt.wantPath {
					found = true
				}
			}
			if !found {
				t.Errorf("no error at path %q, got: %v", tt.wantPath, result.Errors)
			}
		})
	}
}

func TestValidateMissingSchemaFallsBack(t *testing.T) {
	tasks := []Task{mustTask(t, "task", 1, PriorityLow)}

	result := Validate(tasks, ValidationOptions{
		SchemaPath: filepath.Join(t.TempDir(), "nope.json"),
	})
	if !result.Valid {
		t.Errorf("Valid: got false, errors: %v", result.Errors)
	}
	if result.UsedSchema {
		t.Error("UsedSchema: got true, want false")
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning about the missing schema")
	}
}

const testSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["text", "created_at"],
    "properties": {
      "id": {"type": "integer", "minimum": 0},
      "text": {"type": "string", "minLength": 1},
      "created_at": {"type": "integer"},
      "due_date": {"type": ["integer", "null"]},
      "priority": {"enum": ["low", "medium", "high", null]},
      "category": {"type": ["string", "null"]}
    }
  }
}`

func writeTestSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.json")
	if err := os.WriteFile(path, []byte(testSchema), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestValidateWithSchemaValid(t *testing.T) {
	tasks := []Task{mustTask(t, "valid task", 1, PriorityMedium)}

	result := Validate(tasks, ValidationOptions{SchemaPath: writeTestSchema(t)})
	if !result.Valid {
		t.Errorf("Valid: got false, errors: %v", result.Errors)
	}
	if !result.UsedSchema {
		t.Error("UsedSchema: got false, want true")
	}
}

func TestValidateWithSchemaInvalid(t *testing.T) {
	tasks := []Task{mustTask(t, "placeholder", 1, PriorityLow)}
	tasks[0].Text = ""

	result := Validate(tasks, ValidationOptions{SchemaPath: writeTestSchema(t)})
	if result.Valid {
		t.Fatal("Valid: got true, want false")
	}
	if !result.UsedSchema {
		t.Error("UsedSchema: got false, want true")
	}
	if len(result.Errors) == 0 {
		t.Fatal("expected schema errors")
	}
}

func TestJSONPointerToPath(t *testing.T) {
	tests := []struct {
		ptr  string
		want string
	}{
		{"", ""},
		{"/0", "[0]"},
		{"/0/priority", "[0].priority"},
		{"/12/due_date", "[12].due_date"},
	}

	for _, tt := range tests {
		if got := jsonPointerToPath(tt.ptr); got != tt.want {
			t.Errorf("jsonPointerToPath(%q): got %q, want %q", tt.ptr, got, tt.want)
		}
	}
}

func TestValidateEmptyJournal(t *testing.T) {
	result := Validate(nil, ValidationOptions{})
	if !result.Valid {
		t.Errorf("Valid: got false, errors: %v", result.Errors)
	}
	if strings.Join(result.Warnings, "") != "" {
		t.Errorf("Warnings: got %v, want none", result.Warnings)
	}
}
