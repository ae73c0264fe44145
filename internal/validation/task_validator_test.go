package validation

import (
	"strings"
	"testing"
	"time"

	"task-tracker/internal/domain"
)

func TestTaskValidator_ValidateTitle(t *testing.T) {
	validator := NewTaskValidator()

	tests := []struct {
		name        string
		input       string
		expected    string
		expectError bool
		errorType   ValidationErrorType
	}{
		{"Valid title", "Write report", "Write report", false, ""},
		{"Trimmed", "  Write report  ", "Write report", false, ""},
		{"Empty title", "", "", true, ErrorTypeRequired},
		{"Whitespace only", "   ", "", true, ErrorTypeRequired},
		{"Too long", strings.Repeat("a", 256), "", true, ErrorTypeInvalidLength},
		{"Exactly max", strings.Repeat("a", 255), strings.Repeat("a", 255), false, ""},
		{"Punctuation allowed", "Fix #42: crash @ startup", "Fix #42: crash @ startup", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validator.ValidateTitle(tt.input)

			if !tt.expectError {
				if err != nil {
					t.Fatalf("ValidateTitle(%q) unexpected error %v", tt.input, err)
				}
				if got != tt.expected {
					t.Errorf("ValidateTitle(%q) = %q, expected %q", tt.input, got, tt.expected)
				}
				return
			}

			ve, ok := AsValidationError(err)
			if !ok {
				t.Fatalf("ValidateTitle(%q) expected ValidationError but got %T", tt.input, err)
			}
			if ve.Errors[0].Field != FieldTitle || ve.Errors[0].Type != tt.errorType {
				t.Errorf("ValidateTitle(%q) got %+v", tt.input, ve.Errors[0])
			}
		})
	}
}

func TestTaskValidator_ValidateStatus(t *testing.T) {
	validator := NewTaskValidator()

	for _, s := range []string{"todo", "in_progress", "done"} {
		if _, err := validator.ValidateStatus(s); err != nil {
			t.Errorf("ValidateStatus(%q) unexpected error %v", s, err)
		}
	}

	_, err := validator.ValidateStatus("archived")
	ve, ok := AsValidationError(err)
	if !ok || len(ve.GetFieldErrors(FieldStatus)) != 1 {
		t.Fatalf("ValidateStatus(archived) expected a status error, got %v", err)
	}
}

func TestTaskValidator_ValidateTask_DoneNeedsDueDate(t *testing.T) {
	validator := NewTaskValidator()
	due := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		task        domain.Task
		errorFields []string
	}{
		{"Todo without due date", domain.Task{Title: "a", Status: domain.StatusTodo}, nil},
		{"Done with due date", domain.Task{Title: "a", Status: domain.StatusDone, DueDate: &due}, nil},
		{"Done without due date", domain.Task{Title: "a", Status: domain.StatusDone}, []string{FieldDueDate}},
		{"Blank title and done without due date", domain.Task{Title: " ", Status: domain.StatusDone}, []string{FieldTitle, FieldDueDate}},
		{"Unknown status", domain.Task{Title: "a", Status: "blocked"}, []string{FieldStatus}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateTask(tt.task)
			if len(tt.errorFields) == 0 {
				if err != nil {
					t.Fatalf("ValidateTask() unexpected error %v", err)
				}
				return
			}

			ve, ok := AsValidationError(err)
			if !ok {
				t.Fatalf("ValidateTask() expected ValidationError, got %v", err)
			}
			for _, field := range tt.errorFields {
				if len(ve.GetFieldErrors(field)) == 0 {
					t.Errorf("ValidateTask() missing error for %s in %v", field, ve.Errors)
				}
			}
			if len(ve.Errors) != len(tt.errorFields) {
				t.Errorf("ValidateTask() got %d errors, expected %d", len(ve.Errors), len(tt.errorFields))
			}
		})
	}
}

func TestTaskValidator_ParseFilter(t *testing.T) {
	validator := NewTaskValidator()

	filter, err := validator.ParseFilter("done", "2025-01-01", "2025-01-31T23:59:59Z")
	if err != nil {
		t.Fatalf("ParseFilter() unexpected error %v", err)
	}
	if filter.Status == nil || *filter.Status != "done" {
		t.Errorf("ParseFilter() status = %v", filter.Status)
	}
	if filter.DueDateFrom == nil || filter.DueDateTo == nil {
		t.Fatalf("ParseFilter() dates not set: %+v", filter)
	}

	empty, err := validator.ParseFilter("", "", "")
	if err != nil || empty.Status != nil || empty.DueDateFrom != nil || empty.DueDateTo != nil {
		t.Errorf("ParseFilter() with no values = %+v, %v", empty, err)
	}

	_, err = validator.ParseFilter("", "soon", "later")
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("ParseFilter() expected ValidationError, got %v", err)
	}
	if len(ve.GetFieldErrors(FieldDueDateFrom)) != 1 || len(ve.GetFieldErrors(FieldDueDateTo)) != 1 {
		t.Errorf("ParseFilter() errors = %v", ve.Errors)
	}
}
