package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"task-manager/internal/api"
	"task-manager/internal/config"
	"task-manager/internal/logging"
)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd       *cobra.Command
	loader    *config.Loader
	bootstrap Bootstrap
	config    *config.Config
	app       *App
}

// NewRootCommand creates the root cobra command with global flags.
// bootstrap is called once, by the first command that needs the task store.
func NewRootCommand(loader *config.Loader, bootstrap Bootstrap) *RootCommand {
	root := &RootCommand{
		loader:    loader,
		bootstrap: bootstrap,
	}

	root.cmd = &cobra.Command{
		Use:   "tm",
		Short: "A command-line task manager",
		Long: `Task Manager (tm) keeps a prioritised list of tasks in a local database.

EXAMPLES:
  tm add "Write report" -p high -d "Q3 numbers"   # Add a task
  tm list --filter pending                        # List pending tasks
  tm list --search report --grid                  # Search titles, grid layout
  tm done 3                                       # Toggle completion of task 3
  tm edit 3 --title "Write Q3 report"             # Change a task
  tm rm 3                                         # Delete a task
  tm watch --priority high                        # Follow high priority tasks live

CONFIGURATION:
  Configuration follows this priority order: command-line flags > environment variables > .env file > defaults

  Database Configuration:
    TM_DB_DRIVER                           sqlite, gorm-sqlite or postgres (default: sqlite)
    TM_DB_DIR                              Database directory (default: ~/.tm)
    TM_DB_FILENAME                         Database filename (default: tasks.db)
    TM_DB_DSN                              PostgreSQL connection string
    TM_DB_QUERY_TIMEOUT                    Query timeout (default: 10s)
    TM_DB_WRITE_TIMEOUT                    Write timeout (default: 5s)

  Logging Configuration:
    TM_LOG_LEVEL                           debug, info, warn or error (default: warn)
    TM_LOG_JSON                            Log as JSON (default: false)

  Display Configuration:
    TM_DISPLAY_TIME_FORMAT                 Time format (default: 2006-01-02 15:04)
    TM_DISPLAY_VIEW                        LIST or GRID (default: LIST)

  Validation Configuration:
    TM_VALIDATION_TITLE_MAX                Max title length (default: 200)
    TM_VALIDATION_DESCRIPTION_MAX          Max description length (default: 2000)

  Application Configuration:
    TM_APP_TIMEOUT                         Application timeout (default: 60s)
    TM_APP_VERBOSE                         Enable verbose output (default: false)
    TM_METRICS_ADDR                        Metrics listen address for watch`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.loadConfig(cmd)
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Command returns the underlying cobra command
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// Execute runs the root command and releases the application afterwards
func (r *RootCommand) Execute(ctx context.Context) error {
	defer r.closeApp()
	return r.cmd.ExecuteContext(ctx)
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	// Database configuration
	flags.String("db-driver", "", "Storage driver: sqlite, gorm-sqlite, postgres (overrides TM_DB_DRIVER)")
	flags.String("db-dir", "", "Database directory (overrides TM_DB_DIR)")
	flags.String("db-filename", "", "Database filename (overrides TM_DB_FILENAME)")
	flags.String("db-dsn", "", "PostgreSQL connection string (overrides TM_DB_DSN)")
	flags.Duration("db-query-timeout", 0, "Database query timeout (overrides TM_DB_QUERY_TIMEOUT)")
	flags.Duration("db-write-timeout", 0, "Database write timeout (overrides TM_DB_WRITE_TIMEOUT)")

	// Logging configuration
	flags.String("log-level", "", "Log level (overrides TM_LOG_LEVEL)")
	flags.Bool("log-json", false, "Log as JSON (overrides TM_LOG_JSON)")

	// Display configuration
	flags.String("time-format", "", "Time display format (overrides TM_DISPLAY_TIME_FORMAT)")

	// Application configuration
	flags.Duration("app-timeout", 0, "Application timeout (overrides TM_APP_TIMEOUT)")
	flags.BoolP("verbose", "v", false, "Enable verbose output (overrides TM_APP_VERBOSE)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	// Add command
	var input api.TaskInput
	addCmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a new task",
		Long:  "Add a new task. The title is required; priority defaults to MEDIUM.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, app *App) error {
				input.Title = args[0]
				return NewAddCommand(app, cmd.OutOrStdout()).Execute(ctx, input)
			})
		},
	}
	addCmd.Flags().StringVarP(&input.Description, "description", "d", "", "Task description")
	addCmd.Flags().StringVarP(&input.Priority, "priority", "p", "", "Priority: HIGH, MEDIUM or LOW")

	// Show command
	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, app *App) error {
				return NewShowCommand(app, cmd.OutOrStdout()).Execute(ctx, args)
			})
		},
	}

	// Edit command
	editCmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Change a task",
		Long: `Change the title, description or priority of a task.
Only the flags that are given are changed.

Examples:
  tm edit 3 --title "New title"
  tm edit 3 --priority low --description ""`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edit := editFromFlags(cmd)
			return r.run(cmd, func(ctx context.Context, app *App) error {
				return NewEditCommand(app, cmd.OutOrStdout()).Execute(ctx, args, edit)
			})
		},
	}
	editCmd.Flags().String("title", "", "New title")
	editCmd.Flags().String("description", "", "New description")
	editCmd.Flags().String("priority", "", "New priority: HIGH, MEDIUM or LOW")

	// Done command
	doneCmd := &cobra.Command{
		Use:   "done [id]",
		Short: "Toggle the completion state of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, app *App) error {
				return NewDoneCommand(app, cmd.OutOrStdout()).Execute(ctx, args)
			})
		},
	}

	// Remove command
	rmCmd := &cobra.Command{
		Use:     "rm [id]",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Long:    "Delete a task. This operation cannot be undone.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, app *App) error {
				return NewRemoveCommand(app, cmd.OutOrStdout()).Execute(ctx, args)
			})
		},
	}

	// List command
	var listOpts ListOptions
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `List tasks, newest first. At most one of --filter, --search and --priority may be given.

Examples:
  tm list                      # All tasks
  tm list --filter completed   # ALL, COMPLETED or PENDING
  tm list --search milk        # Titles containing "milk"
  tm list --priority high      # High priority tasks`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, app *App) error {
				return NewListCommand(app, cmd.OutOrStdout()).Execute(ctx, listOpts)
			})
		},
	}
	addListFlags(listCmd, &listOpts)

	// Watch command
	var watchOpts ListOptions
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the task list as it changes",
		Long: `Print the task list and print it again after every change, until interrupted.
Accepts the same selectors as list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Runs until the context is cancelled, so no application timeout
			app, err := r.getApp(cmd.Context())
			if err != nil {
				return err
			}
			return NewWatchCommand(app, cmd.OutOrStdout()).Execute(cmd.Context(), watchOpts)
		},
	}
	addListFlags(watchCmd, &watchOpts)
	watchCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (overrides TM_METRICS_ADDR)")

	r.cmd.AddCommand(
		addCmd,
		showCmd,
		editCmd,
		doneCmd,
		rmCmd,
		listCmd,
		watchCmd,
	)
}

func addListFlags(cmd *cobra.Command, opts *ListOptions) {
	cmd.Flags().StringVarP(&opts.Query.Filter, "filter", "f", "", "Completion filter: ALL, COMPLETED or PENDING")
	cmd.Flags().StringVarP(&opts.Query.Search, "search", "s", "", "Show tasks whose title contains this text")
	cmd.Flags().StringVarP(&opts.Query.Priority, "priority", "p", "", "Show tasks of this priority")
	cmd.Flags().BoolVarP(&opts.Grid, "grid", "g", false, "Use the grid layout")
}

// editFromFlags collects the edit flags that were explicitly set
func editFromFlags(cmd *cobra.Command) api.TaskEdit {
	var edit api.TaskEdit
	flags := cmd.Flags()
	if flags.Changed("title") {
		v, _ := flags.GetString("title")
		edit.Title = &v
	}
	if flags.Changed("description") {
		v, _ := flags.GetString("description")
		edit.Description = &v
	}
	if flags.Changed("priority") {
		v, _ := flags.GetString("priority")
		edit.Priority = &v
	}
	return edit
}

// run executes fn with the application under the configured timeout
func (r *RootCommand) run(cmd *cobra.Command, fn func(ctx context.Context, app *App) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), r.getAppTimeout())
	defer cancel()

	app, err := r.getApp(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, app)
}

// getApp bootstraps the application on first use
func (r *RootCommand) getApp(ctx context.Context) (*App, error) {
	if r.app != nil {
		return r.app, nil
	}
	app, err := r.bootstrap(ctx, r.config)
	if err != nil {
		return nil, NewErrorHandler().Handle("open task store", err)
	}
	r.app = app
	return app, nil
}

func (r *RootCommand) closeApp() {
	if r.app == nil {
		return
	}
	if err := r.app.Close(); err != nil {
		logging.Warn("failed to close task store", "error", err)
	}
	r.app = nil
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 60 * time.Second
}

// loadConfig loads configuration, applies flag overrides and initializes logging
func (r *RootCommand) loadConfig(cmd *cobra.Command) error {
	cfg, err := r.loader.LoadWithOverrides(overridesFromFlags(cmd))
	if err != nil {
		return err
	}
	if logging.DebugEnabled() {
		cfg.Logging.Level = "debug"
		logging.Debugf("tm: TM_DEBUG set, driver=%s database=%s\n", cfg.Database.Driver, cfg.GetDatabasePath())
	}
	r.config = cfg
	logging.InitWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.JSON)
	logging.Debug("configuration loaded", "driver", cfg.Database.Driver, "database", cfg.GetDatabasePath())
	return nil
}

// overridesFromFlags returns overrides for every flag that was explicitly set
func overridesFromFlags(cmd *cobra.Command) *config.ConfigOverrides {
	flags := cmd.Flags()
	o := &config.ConfigOverrides{}

	stringFlag := func(name string) *string {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	durationFlag := func(name string) *time.Duration {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetDuration(name)
		return &v
	}
	boolFlag := func(name string) *bool {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetBool(name)
		return &v
	}

	// Database configuration
	o.DBDriver = stringFlag("db-driver")
	o.DBDir = stringFlag("db-dir")
	o.DBFilename = stringFlag("db-filename")
	o.DBDSN = stringFlag("db-dsn")
	o.DBQueryTimeout = durationFlag("db-query-timeout")
	o.DBWriteTimeout = durationFlag("db-write-timeout")

	// Logging configuration
	o.LogLevel = stringFlag("log-level")
	o.LogJSON = boolFlag("log-json")

	// Display configuration
	o.TimeFormat = stringFlag("time-format")

	// Application configuration
	o.Timeout = durationFlag("app-timeout")
	o.Verbose = boolFlag("verbose")

	// Metrics configuration
	o.MetricsAddr = stringFlag("metrics-addr")

	return o
}
