package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"task-tracker/internal/config"
	"task-tracker/internal/logging"
)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd      *cobra.Command
	registry *CommandRegistry
	app      *App
	ownsApp  bool

	configFile string
	out        io.Writer
}

// NewRootCommand builds the command tree. A nil app is opened from the
// loaded configuration before the first command runs.
func NewRootCommand(app *App) *RootCommand {
	root := &RootCommand{
		registry: NewCommandRegistry(),
		app:      app,
	}

	root.cmd = &cobra.Command{
		Use:   "tasksd",
		Short: "Multi-user task tracking service",
		Long: `tasksd serves the task tracking HTTP API and provides operator commands.

EXAMPLES:
  tasksd serve                             # Run the HTTP API
  tasksd user add alice                    # Provision a user
  tasksd user add root --admin             # Provision an admin
  tasksd task add "write report" --user alice --due 2025-07-01
  tasksd task list --user alice --status todo
  tasksd recalc-overdue                    # Flag overdue tasks (run from cron)

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > environment variables > config file > defaults

    TASKS_CONFIG                           Config file (.toml, .yaml)
    TASKS_DB_DRIVER                        sqlite or postgres (default: sqlite)
    TASKS_DB_DIR                           SQLite directory (default: ~/.tasks)
    TASKS_DB_FILENAME                      SQLite filename (default: tasks.db)
    TASKS_DB_DSN                           Postgres connection string
    TASKS_SERVER_ADDR                      Listen address (default: :8000)
    TASKS_IDENTITY_MODE                    header or jwt (default: header)
    TASKS_LOG_FORMAT                       text or json (default: text)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.setup(cmd.Context())
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the root command and releases the repository afterwards.
func (r *RootCommand) Execute() error {
	return r.ExecuteContext(context.Background())
}

// ExecuteContext is Execute with a parent context.
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	err := r.cmd.ExecuteContext(ctx)
	if r.ownsApp && r.app != nil {
		if cerr := r.app.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// SetArgs replaces os.Args, for tests.
func (r *RootCommand) SetArgs(args []string) {
	r.cmd.SetArgs(args)
}

// SetOutput redirects command output.
func (r *RootCommand) SetOutput(w io.Writer) {
	r.out = w
	r.cmd.SetOut(w)
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.StringVar(&r.configFile, "config", "", "Config file, .toml or .yaml (overrides TASKS_CONFIG)")

	// Database configuration
	flags.String("db-driver", "", "Database driver: sqlite or postgres (overrides TASKS_DB_DRIVER)")
	flags.String("db-dir", "", "SQLite directory (overrides TASKS_DB_DIR)")
	flags.String("db-filename", "", "SQLite filename (overrides TASKS_DB_FILENAME)")
	flags.String("db-dsn", "", "Postgres connection string (overrides TASKS_DB_DSN)")
	flags.Duration("db-query-timeout", 0, "Database query timeout (overrides TASKS_DB_QUERY_TIMEOUT)")
	flags.Duration("db-write-timeout", 0, "Database write timeout (overrides TASKS_DB_WRITE_TIMEOUT)")

	// Identity configuration
	flags.String("identity-mode", "", "Identity mode: header or jwt (overrides TASKS_IDENTITY_MODE)")

	// Application configuration
	flags.Duration("app-timeout", 0, "Command timeout (overrides TASKS_APP_TIMEOUT)")
	flags.Bool("verbose", false, "Enable debug logging (overrides TASKS_APP_VERBOSE)")
	flags.String("log-format", "", "Log format: text or json (overrides TASKS_LOG_FORMAT)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Serve the task API until interrupted. SIGINT and SIGTERM drain in-flight requests before exiting.",
		Args:  cobra.NoArgs,
		RunE:  r.run("serve", false),
	}
	serveCmd.Flags().String("addr", "", "Listen address (overrides TASKS_SERVER_ADDR)")

	recalcCmd := &cobra.Command{
		Use:   "recalc-overdue",
		Short: "Flag tasks whose due date has passed",
		Long: `Recalculate the overdue flag of every task and print {"updated": n},
where n is the number of tasks newly flagged. Safe to run repeatedly.`,
		Args: cobra.NoArgs,
		RunE: r.run("recalc-overdue", true),
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE:  r.run("migrate", true),
	}

	userCmd := &cobra.Command{Use: "user", Short: "Manage users"}
	userAdd := registered[*UserAddCommand](r.registry, "user add")
	userAddCmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE:  r.run("user add", true),
	}
	userAddCmd.Flags().BoolVar(&userAdd.Admin, "admin", false, "Allow the user to run maintenance operations")
	userListCmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE:  r.run("user list", true),
	}
	userCmd.AddCommand(userAddCmd, userListCmd)

	taskCmd := &cobra.Command{Use: "task", Short: "Manage a user's tasks"}

	taskList := registered[*TaskListCommand](r.registry, "task list")
	taskListCmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's tasks, newest first",
		Args:  cobra.NoArgs,
		RunE:  r.run("task list", true),
	}
	taskListCmd.Flags().StringVar(&taskList.User, "user", "", "Username to act as")
	taskListCmd.Flags().StringVar(&taskList.Status, "status", "", "Only tasks with this status")
	taskListCmd.Flags().StringVar(&taskList.DueFrom, "due-from", "", "Only tasks due at or after this time")
	taskListCmd.Flags().StringVar(&taskList.DueTo, "due-to", "", "Only tasks due at or before this time")
	taskListCmd.Flags().IntVar(&taskList.Page, "page", 1, "Page number")
	taskListCmd.Flags().IntVar(&taskList.Size, "size", 0, "Page size")

	taskAdd := registered[*TaskAddCommand](r.registry, "task add")
	taskAddCmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE:  r.run("task add", true),
	}
	taskAddCmd.Flags().StringVar(&taskAdd.User, "user", "", "Username to act as")
	taskAddCmd.Flags().StringVar(&taskAdd.Description, "description", "", "Task description")
	taskAddCmd.Flags().StringVar(&taskAdd.Status, "status", "", "todo, in_progress or done")
	taskAddCmd.Flags().StringVar(&taskAdd.DueDate, "due", "", "Due date, ISO-8601")

	taskDelete := registered[*TaskDeleteCommand](r.registry, "task delete")
	taskDeleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE:  r.run("task delete", true),
	}
	taskDeleteCmd.Flags().StringVar(&taskDelete.User, "user", "", "Username to act as")

	for _, cmd := range []*cobra.Command{taskListCmd, taskAddCmd, taskDeleteCmd} {
		_ = cmd.MarkFlagRequired("user")
	}
	taskCmd.AddCommand(taskListCmd, taskAddCmd, taskDeleteCmd)

	r.cmd.AddCommand(serveCmd, recalcCmd, migrateCmd, userCmd, taskCmd)
}

// registered fetches a command of a known concrete type from the registry.
func registered[T Command](registry *CommandRegistry, name string) T {
	command, ok := registry.Get(name)
	if !ok {
		panic("cli: command not registered: " + name)
	}
	return command.(T)
}

// run returns a RunE that dispatches to the named registry command.
func (r *RootCommand) run(name string, withTimeout bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if withTimeout && r.app.config.Application.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.app.config.Application.Timeout)
			defer cancel()
		}

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			r.app.config.Server.Addr = addr
		}
		return r.registry.Execute(ctx, r.app, name, args)
	}
}

// setup loads configuration, installs the logger and opens the app unless
// one was injected.
func (r *RootCommand) setup(ctx context.Context) error {
	if r.app != nil {
		if r.out != nil {
			r.app.SetOutput(r.out)
		}
		return nil
	}

	cfg, err := config.NewLoader().WithFile(r.configFile).LoadWithOverrides(r.overridesFromFlags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.Setup(logging.Options{
		Format:  cfg.Application.LogFormat,
		Level:   cfg.Application.LogLevel,
		Verbose: cfg.Application.Verbose,
	})
	logging.Debugf("configuration loaded: driver=%s", cfg.Database.Driver)

	app, err := OpenApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if r.out != nil {
		app.SetOutput(r.out)
	}
	r.app = app
	r.ownsApp = true
	return nil
}

// overridesFromFlags collects the persistent flags the user actually set.
func (r *RootCommand) overridesFromFlags() *config.ConfigOverrides {
	flags := r.cmd.PersistentFlags()
	overrides := &config.ConfigOverrides{}

	stringFlag := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}

	overrides.DBDriver = stringFlag("db-driver")
	overrides.DBDir = stringFlag("db-dir")
	overrides.DBFilename = stringFlag("db-filename")
	overrides.DBDSN = stringFlag("db-dsn")
	overrides.IdentityMode = stringFlag("identity-mode")
	overrides.LogFormat = stringFlag("log-format")

	if flags.Changed("db-query-timeout") {
		v, _ := flags.GetDuration("db-query-timeout")
		overrides.DBQueryTimeout = &v
	}
	if flags.Changed("db-write-timeout") {
		v, _ := flags.GetDuration("db-write-timeout")
		overrides.DBWriteTimeout = &v
	}
	if flags.Changed("app-timeout") {
		v, _ := flags.GetDuration("app-timeout")
		overrides.Timeout = &v
	}
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		overrides.Verbose = &v
	}
	return overrides
}
