package cli

import (
	stderrors "errors"

	"task-tracker/internal/errors"
	"task-tracker/internal/validation"
)

// ErrorHandler turns command errors into operator-facing messages
type ErrorHandler struct{}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// HandleSimple returns the user-facing message without operation context
func (eh *ErrorHandler) HandleSimple(err error) error {
	if err == nil {
		return nil
	}
	if msg, ok := eh.message(err); ok {
		return stderrors.New(msg)
	}
	return err
}

// message prefers field-level validation detail over the AppError summary.
func (eh *ErrorHandler) message(err error) (string, bool) {
	if ve, ok := validation.AsValidationError(err); ok {
		return ve.GetUserFriendlyMessage(), true
	}
	if _, ok := errors.AsAppError(err); ok {
		return errors.GetUserMessage(err), true
	}
	return "", false
}

// ExitCode maps an error to a process exit status: 2 for caller mistakes,
// 1 for everything else.
func (eh *ErrorHandler) ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if appErr, ok := errors.AsAppError(err); ok {
		if appErr.Type.CallerFault() {
			return 2
		}
		return 1
	}
	if validation.IsValidationError(err) {
		return 2
	}
	return 1
}
