package domain

import "time"

// Operation names a client-facing write operation.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
)

// WritableTaskFields is the allow-list of request keys a client may set per
// operation. Any other key (id, owner, created_at, updated_at, is_overdue or
// unknown names) is dropped before validation.
var WritableTaskFields = map[Operation][]string{
	OperationCreate: {"title", "description", "status", "due_date"},
	OperationUpdate: {"title", "description", "status", "due_date"},
}

// IsWritable reports whether field may be supplied by a client for op.
func IsWritable(op Operation, field string) bool {
	for _, f := range WritableTaskFields[op] {
		if f == field {
			return true
		}
	}
	return false
}

// OptionalTime distinguishes "not supplied" from "supplied as null".
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

// TaskInput carries the client-writable fields of a create or update
// request. Nil pointers mean the field was not supplied.
type TaskInput struct {
	Title       *string
	Description *string
	Status      *Status
	DueDate     OptionalTime
}

// ApplyTo merges the supplied fields into t.
func (in TaskInput) ApplyTo(t *Task) {
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	if in.DueDate.Set {
		t.DueDate = in.DueDate.Value
	}
}
