package services

import (
	"context"
	"strconv"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/repository"
	"task-tracker/internal/validation"
)

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	repo          repository.Repository
	mapper        *domain.TaskMapper
	taskValidator *validation.TaskValidator
	now           Clock
}

// NewTaskService creates a new TaskService instance. A nil clock means time.Now.
func NewTaskService(repo repository.Repository, validator *validation.TaskValidator, now Clock) TaskService {
	if validator == nil {
		validator = validation.NewTaskValidator()
	}
	if now == nil {
		now = time.Now
	}
	return &taskServiceImpl{
		repo:          repo,
		mapper:        domain.NewTaskMapper(),
		taskValidator: validator,
		now:           now,
	}
}

func notFound(id int64) error {
	return errors.NewNotFoundError("task", strconv.FormatInt(id, 10))
}

// ownerOf returns the principal's user id. Anonymous callers own nothing, so
// any lookup they make is reported as not found.
func ownerOf(p domain.Principal, id int64) (int64, error) {
	ownerID, ok := p.UserID()
	if !ok || id <= 0 {
		return 0, notFound(id)
	}
	return ownerID, nil
}

// ListTasks returns one page of the principal's tasks
func (t *taskServiceImpl) ListTasks(ctx context.Context, p domain.Principal, filter domain.TaskFilter, page domain.PageRequest) (*domain.TaskPage, error) {
	if page.Page < 1 {
		page.Page = 1
	}

	ownerID, ok := p.UserID()
	if !ok {
		if page.Page > 1 {
			return nil, errors.NewNotFoundError("page", strconv.Itoa(page.Page))
		}
		return &domain.TaskPage{Page: page.Page, Size: page.Size, Results: []*domain.Task{}}, nil
	}

	query := repository.TaskQuery{
		OwnerID:     ownerID,
		Status:      filter.Status,
		DueDateFrom: filter.DueDateFrom,
		DueDateTo:   filter.DueDateTo,
	}

	count, err := t.repo.CountTasks(ctx, query)
	if err != nil {
		return nil, err
	}

	if page.Size > 0 {
		// Page 1 always exists, even when empty.
		if page.Page > 1 && int64(page.Offset()) >= count {
			return nil, errors.NewNotFoundError("page", strconv.Itoa(page.Page))
		}
		query.Limit = page.Size
		query.Offset = page.Offset()
	}

	rows, err := t.repo.ListTasks(ctx, query)
	if err != nil {
		return nil, err
	}

	return &domain.TaskPage{
		Count:   count,
		Page:    page.Page,
		Size:    page.Size,
		Results: t.mapper.FromRows(rows),
	}, nil
}

// GetTask retrieves one of the principal's tasks by ID
func (t *taskServiceImpl) GetTask(ctx context.Context, p domain.Principal, id int64) (*domain.Task, error) {
	ownerID, err := ownerOf(p, id)
	if err != nil {
		return nil, err
	}

	row, err := t.repo.GetTask(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	return t.mapper.FromRow(row), nil
}

// normalize trims the title so blank and padded titles are handled alike.
func normalize(in domain.TaskInput) domain.TaskInput {
	if in.Title != nil {
		title := validation.NewValidator().TrimAndValidateString(*in.Title)
		in.Title = &title
	}
	return in
}

// CreateTask creates a task owned by the principal
func (t *taskServiceImpl) CreateTask(ctx context.Context, p domain.Principal, in domain.TaskInput) (*domain.Task, error) {
	ownerID, ok := p.UserID()
	if !ok {
		return nil, errors.NewUnauthenticatedError("create task")
	}

	in = normalize(in)
	if in.Title == nil {
		ve := validation.NewValidationError()
		ve.AddRequiredError(validation.FieldTitle)
		return nil, errors.NewValidationError("invalid task", ve)
	}

	task := domain.NewTask(ownerID, "")
	in.ApplyTo(&task)
	if err := t.taskValidator.ValidateTask(task); err != nil {
		return nil, errors.NewValidationError("invalid task", err)
	}

	now := t.now()
	task.CreatedAt = now
	task.UpdatedAt = now

	row := t.mapper.ToRow(task)
	if err := t.repo.CreateTask(ctx, row); err != nil {
		return nil, err
	}
	return t.mapper.FromRow(row), nil
}

// UpdateTask merges in over the stored task and validates the result
// inside the update transaction.
func (t *taskServiceImpl) UpdateTask(ctx context.Context, p domain.Principal, id int64, in domain.TaskInput, partial bool) (*domain.Task, error) {
	ownerID, err := ownerOf(p, id)
	if err != nil {
		return nil, err
	}

	in = normalize(in)
	now := t.now()

	row, err := t.repo.UpdateTask(ctx, id, ownerID, func(row *repository.TaskRow) error {
		// Only reached for a task the principal owns.
		if !partial && in.Title == nil {
			ve := validation.NewValidationError()
			ve.AddRequiredError(validation.FieldTitle)
			return errors.NewValidationError("invalid task", ve)
		}

		task := t.mapper.FromRow(row)
		in.ApplyTo(task)
		if err := t.taskValidator.ValidateTask(*task); err != nil {
			return errors.NewValidationError("invalid task", err)
		}
		task.UpdatedAt = now
		t.mapper.CopyInto(*task, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t.mapper.FromRow(row), nil
}

// DeleteTask deletes one of the principal's tasks
func (t *taskServiceImpl) DeleteTask(ctx context.Context, p domain.Principal, id int64) error {
	ownerID, err := ownerOf(p, id)
	if err != nil {
		return err
	}
	return t.repo.DeleteTask(ctx, id, ownerID)
}
