package api

import (
	stderrors "errors"

	"github.com/gofiber/fiber/v2"

	"task-tracker/internal/errors"
	"task-tracker/internal/validation"
)

// errorHandler renders an error returned by a handler.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if stderrors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"detail": fe.Message})
	}

	status, body := s.render(err)
	if status >= fiber.StatusInternalServerError || errors.ShouldLogError(err) {
		s.logger.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"code", errors.GetErrorCode(err),
			"error", err,
		)
	}
	return c.Status(status).JSON(body)
}

func (s *Server) render(err error) (int, any) {
	if ve, ok := validation.AsValidationError(err); ok {
		return fiber.StatusBadRequest, ve.FieldMessages()
	}

	appErr, ok := errors.AsAppError(err)
	if !ok {
		return fiber.StatusInternalServerError, fiber.Map{"detail": "A server error occurred."}
	}

	status := appErr.Type.HTTPStatus()
	switch appErr.Type {
	case errors.ErrorTypeValidation:
		return status, fiber.Map{NonFieldErrors: []string{appErr.Message}}
	case errors.ErrorTypeInvalidInput:
		field := appErr.ContextString("field")
		if field == "" {
			field = NonFieldErrors
		}
		return status, fiber.Map{field: []string{appErr.ContextString("reason")}}
	case errors.ErrorTypeNotFound:
		if appErr.ContextString("resource") == "page" {
			return status, fiber.Map{"detail": "Invalid page."}
		}
		return status, fiber.Map{"detail": "Not found."}
	case errors.ErrorTypeUnauthenticated:
		return status, fiber.Map{"detail": "Authentication credentials were not provided."}
	case errors.ErrorTypePermission:
		return status, fiber.Map{"detail": "You do not have permission to perform this action."}
	case errors.ErrorTypeTimeout:
		return status, fiber.Map{"detail": "The request timed out."}
	default:
		return status, fiber.Map{"detail": "A server error occurred."}
	}
}
