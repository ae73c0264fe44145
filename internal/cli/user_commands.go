package cli

import (
	"context"

	"task-tracker/internal/errors"
)

// UserAddCommand provisions a user.
type UserAddCommand struct {
	Admin bool
}

func (c *UserAddCommand) Execute(ctx context.Context, app *App, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("username", args, "exactly one username is required")
	}

	user, err := app.services.UserService.CreateUser(ctx, args[0], c.Admin)
	if err != nil {
		return err
	}

	role := "user"
	if user.IsAdmin {
		role = "admin"
	}
	app.printf("Created %s %s with id %d\n", role, user.Username, user.ID)
	return nil
}

// UserListCommand prints every user.
type UserListCommand struct{}

func (c *UserListCommand) Execute(ctx context.Context, app *App, args []string) error {
	users, err := app.services.UserService.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		app.printf("No users found\n")
		return nil
	}
	for _, user := range users {
		admin := ""
		if user.IsAdmin {
			admin = " (admin)"
		}
		app.printf("%d %s%s\n", user.ID, user.Username, admin)
	}
	return nil
}
