package validation

import (
	"strings"
	"time"

	"task-tracker/internal/domain"
)

// Field names as they appear in requests and error bodies.
const (
	FieldTitle       = "title"
	FieldStatus      = "status"
	FieldDueDate     = "due_date"
	FieldDueDateFrom = "due_date_from"
	FieldDueDateTo   = "due_date_to"
)

// DueDateRequiredMessage is reported when a done task has no due date.
const DueDateRequiredMessage = "A due date is required when status is done."

// TaskValidator provides validation for Task-related operations
type TaskValidator struct {
	validator *Validator
}

// NewTaskValidator creates a new task validator
func NewTaskValidator() *TaskValidator {
	return &TaskValidator{
		validator: NewValidator(),
	}
}

// NewTaskValidatorWithValidator creates a task validator around v.
func NewTaskValidatorWithValidator(v *Validator) *TaskValidator {
	return &TaskValidator{validator: v}
}

// ValidateTitle validates a title and returns it trimmed.
func (tv *TaskValidator) ValidateTitle(title string) (string, error) {
	validationError := NewValidationError()

	trimmed := tv.validator.TrimAndValidateString(title)
	if !tv.validator.IsNonEmptyString(trimmed) {
		validationError.AddError(FieldTitle, ErrorTypeRequired, "This field may not be blank.", title)
		return "", validationError
	}

	maxLen := tv.validator.TitleMaxLength()
	if !tv.validator.IsValidStringLength(trimmed, 1, maxLen) {
		validationError.AddInvalidLengthError(FieldTitle, trimmed, 0, maxLen)
		return "", validationError
	}

	return trimmed, nil
}

// ValidateStatus checks a status string against the known statuses.
func (tv *TaskValidator) ValidateStatus(status string) (domain.Status, error) {
	s := domain.Status(status)
	if !s.IsValid() {
		validationError := NewValidationError()
		names := make([]string, len(domain.Statuses))
		for i, known := range domain.Statuses {
			names[i] = string(known)
		}
		validationError.AddInvalidValueError(FieldStatus, status,
			"\""+status+"\" is not a valid choice. Choose one of: "+strings.Join(names, ", ")+".")
		return "", validationError
	}
	return s, nil
}

// ValidateTask validates the final state of a task about to be stored.
// A done task must carry a due date.
func (tv *TaskValidator) ValidateTask(task domain.Task) error {
	validationError := NewValidationError()

	if _, err := tv.ValidateTitle(task.Title); err != nil {
		validationError.Merge(err)
	}
	if _, err := tv.ValidateStatus(string(task.Status)); err != nil {
		validationError.Merge(err)
	}
	if task.Status == domain.StatusDone && task.DueDate == nil {
		validationError.AddError(FieldDueDate, ErrorTypeRequired, DueDateRequiredMessage, nil)
	}

	if validationError.HasErrors() {
		return validationError
	}
	return nil
}

// ParseDueDate parses a client-supplied due date for field.
func (tv *TaskValidator) ParseDueDate(field, value string) (time.Time, error) {
	t, ok := tv.validator.ParseTimestamp(value)
	if !ok {
		validationError := NewValidationError()
		validationError.AddInvalidFormatError(field, value, "an ISO-8601 timestamp")
		return time.Time{}, validationError
	}
	return t, nil
}

// ParseFilter builds a TaskFilter from raw query values. Empty values are
// treated as absent. The status value is matched exactly, so an unknown
// status simply matches nothing.
func (tv *TaskValidator) ParseFilter(status, dueFrom, dueTo string) (domain.TaskFilter, error) {
	var filter domain.TaskFilter
	validationError := NewValidationError()

	if status != "" {
		filter.Status = &status
	}
	if dueFrom != "" {
		if t, err := tv.ParseDueDate(FieldDueDateFrom, dueFrom); err != nil {
			validationError.Merge(err)
		} else {
			filter.DueDateFrom = &t
		}
	}
	if dueTo != "" {
		if t, err := tv.ParseDueDate(FieldDueDateTo, dueTo); err != nil {
			validationError.Merge(err)
		} else {
			filter.DueDateTo = &t
		}
	}

	if validationError.HasErrors() {
		return domain.TaskFilter{}, validationError
	}
	return filter, nil
}
