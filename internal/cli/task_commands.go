package cli

import (
	"context"
	"strconv"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/validation"
)

const displayTimeFormat = "2006-01-02 15:04"

// TaskListCommand lists one page of a user's tasks.
type TaskListCommand struct {
	User    string
	Status  string
	DueFrom string
	DueTo   string
	Page    int
	Size    int
}

func (c *TaskListCommand) Execute(ctx context.Context, app *App, args []string) error {
	principal, err := app.principalFor(ctx, c.User)
	if err != nil {
		return err
	}

	filter, err := validation.NewTaskValidator().ParseFilter(c.Status, c.DueFrom, c.DueTo)
	if err != nil {
		return errors.NewValidationError("invalid filter", err)
	}

	page := domain.PageRequest{Page: c.Page, Size: c.Size}
	if page.Size <= 0 || page.Size > app.config.Pagination.MaxSize {
		page.Size = app.config.Pagination.DefaultSize
	}

	result, err := app.services.TaskService.ListTasks(ctx, principal, filter, page)
	if err != nil {
		return err
	}

	if len(result.Results) == 0 {
		app.printf("No tasks found\n")
		return nil
	}
	for _, task := range result.Results {
		printTask(app, task)
	}
	app.printf("page %d, %d of %d tasks\n", result.Page, len(result.Results), result.Count)
	return nil
}

func printTask(app *App, task *domain.Task) {
	due := "no due date"
	if task.DueDate != nil {
		due = "due " + task.DueDate.Local().Format(displayTimeFormat)
	}
	overdue := ""
	if task.IsOverdue {
		overdue = " OVERDUE"
	}
	app.printf("%d [%s] %s (%s)%s\n", task.ID, task.Status, task.Title, due, overdue)
}

// TaskAddCommand creates a task owned by User.
type TaskAddCommand struct {
	User        string
	Description string
	Status      string
	DueDate     string
}

func (c *TaskAddCommand) Execute(ctx context.Context, app *App, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("title", args, "exactly one title argument is required")
	}

	principal, err := app.principalFor(ctx, c.User)
	if err != nil {
		return err
	}

	title := args[0]
	in := domain.TaskInput{Title: &title}
	if c.Description != "" {
		in.Description = &c.Description
	}
	if c.Status != "" {
		status := domain.Status(c.Status)
		in.Status = &status
	}
	if c.DueDate != "" {
		due, err := validation.NewTaskValidator().ParseDueDate(validation.FieldDueDate, c.DueDate)
		if err != nil {
			return errors.NewValidationError("invalid task", err)
		}
		in.DueDate = domain.OptionalTime{Set: true, Value: &due}
	}

	task, err := app.services.TaskService.CreateTask(ctx, principal, in)
	if err != nil {
		return err
	}
	app.printf("Created task: ")
	printTask(app, task)
	return nil
}

// TaskDeleteCommand deletes one of User's tasks.
type TaskDeleteCommand struct {
	User string
}

func (c *TaskDeleteCommand) Execute(ctx context.Context, app *App, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("id", args, "exactly one task id is required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return errors.NewInvalidInputError("id", args[0], "must be an integer")
	}

	principal, err := app.principalFor(ctx, c.User)
	if err != nil {
		return err
	}

	if err := app.services.TaskService.DeleteTask(ctx, principal, id); err != nil {
		return err
	}
	app.printf("Deleted task %d\n", id)
	return nil
}
