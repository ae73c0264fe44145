package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
)

func taskID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewNotFoundError("task", raw)
	}
	return id, nil
}

func (s *Server) listTasks(c *fiber.Ctx) error {
	page, ok := pageRequest(c, s.paging)
	if !ok {
		return errors.NewNotFoundError("page", c.Query("page"))
	}

	filter, err := s.validator.ParseFilter(c.Query("status"), c.Query("due_date_from"), c.Query("due_date_to"))
	if err != nil {
		return errors.NewValidationError("invalid filter", err)
	}

	result, err := s.services.TaskService.ListTasks(c.UserContext(), principalFrom(c), filter, page)
	if err != nil {
		return err
	}
	return c.JSON(toPageResponse(c, result))
}

func (s *Server) getTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	task, err := s.services.TaskService.GetTask(c.UserContext(), principalFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(toTaskResponse(task))
}

func (s *Server) createTask(c *fiber.Ctx) error {
	principal := principalFrom(c)
	if !principal.IsAuthenticated() {
		return errors.NewUnauthenticatedError("create task")
	}

	in, err := s.decodeTaskInput(c.Body(), domain.OperationCreate)
	if err != nil {
		return errors.NewValidationError("invalid task", err)
	}

	task, err := s.services.TaskService.CreateTask(c.UserContext(), principal, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toTaskResponse(task))
}

// updateTask serves PUT (full) and PATCH (partial) on one task.
func (s *Server) updateTask(partial bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := taskID(c)
		if err != nil {
			return err
		}

		principal := principalFrom(c)

		in, err := s.decodeTaskInput(c.Body(), domain.OperationUpdate)
		if err != nil {
			// A body error is only reported for a task the caller can see.
			if _, lookupErr := s.services.TaskService.GetTask(c.UserContext(), principal, id); lookupErr != nil {
				return lookupErr
			}
			return errors.NewValidationError("invalid task", err)
		}

		task, err := s.services.TaskService.UpdateTask(c.UserContext(), principal, id, in, partial)
		if err != nil {
			return err
		}
		return c.JSON(toTaskResponse(task))
	}
}

func (s *Server) deleteTask(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	if err := s.services.TaskService.DeleteTask(c.UserContext(), principalFrom(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) recalculateOverdue(c *fiber.Ctx) error {
	updated, err := s.services.OverdueService.Recalculate(c.UserContext(), principalFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(RecalculateResponse{Updated: updated})
}
