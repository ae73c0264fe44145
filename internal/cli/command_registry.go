package cli

import (
	"context"
	"sort"

	"task-tracker/internal/errors"
)

// Command represents a CLI command. Flag values live on the command itself.
type Command interface {
	Execute(ctx context.Context, app *App, args []string) error
}

// CommandRegistry manages all available commands
type CommandRegistry struct {
	commands map[string]Command
}

// NewCommandRegistry creates a registry holding every operator command
func NewCommandRegistry() *CommandRegistry {
	registry := &CommandRegistry{
		commands: make(map[string]Command),
	}

	registry.Register("serve", &ServeCommand{})
	registry.Register("recalc-overdue", &RecalcOverdueCommand{})
	registry.Register("migrate", &MigrateCommand{})
	registry.Register("user add", &UserAddCommand{})
	registry.Register("user list", &UserListCommand{})
	registry.Register("task list", &TaskListCommand{})
	registry.Register("task add", &TaskAddCommand{})
	registry.Register("task delete", &TaskDeleteCommand{})

	return registry
}

// Register adds a command to the registry
func (r *CommandRegistry) Register(name string, command Command) {
	r.commands[name] = command
}

// Get returns the command registered under name.
func (r *CommandRegistry) Get(name string) (Command, bool) {
	command, ok := r.commands[name]
	return command, ok
}

// Names lists the registered command names in order.
func (r *CommandRegistry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs the specified command with the given arguments
func (r *CommandRegistry) Execute(ctx context.Context, app *App, commandName string, args []string) error {
	command, exists := r.commands[commandName]
	if !exists {
		return errors.NewInvalidInputError("command", commandName, "unknown command")
	}
	return command.Execute(ctx, app, args)
}
