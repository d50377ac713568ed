package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sticky-wall/internal/api"
	"sticky-wall/internal/config"
	"sticky-wall/internal/logging"
)

// closeTimeout bounds the final push flush when the process exits
const closeTimeout = 10 * time.Second

// Opener builds the business API for a loaded configuration. The returned
// function releases everything it opened.
type Opener func(cfg *config.Config, logger *slog.Logger) (api.BusinessAPI, func(context.Context) error, error)

// DefaultOpener opens the configured storage and remote sync
func DefaultOpener(cfg *config.Config, logger *slog.Logger) (api.BusinessAPI, func(context.Context) error, error) {
	app, err := api.New(cfg, api.Options{Logger: logger})
	if err != nil {
		return nil, nil, err
	}
	return api.NewBusinessAPI(app), app.Close, nil
}

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd      *cobra.Command
	registry *CommandRegistry
	app      *App
	open     Opener
	errOut   io.Writer
	closer   func(context.Context) error
	loaded   bool
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(open Opener) *RootCommand {
	return NewRootCommandWithIO(open, os.Stdout, os.Stderr, os.Stdin)
}

// NewRootCommandWithIO creates the root command over the given streams
func NewRootCommandWithIO(open Opener, out, errOut io.Writer, in io.Reader) *RootCommand {
	if open == nil {
		open = DefaultOpener
	}
	root := &RootCommand{
		registry: NewCommandRegistry(),
		app:      NewAppWithIO(nil, config.NewConfig(), out, in),
		open:     open,
		errOut:   errOut,
	}

	root.cmd = &cobra.Command{
		Use:   "wall",
		Short: "A sticky-note task wall for today, tomorrow and this week",
		Long: `Sticky Wall (wall) keeps a small task list split into today, tomorrow,
this week and finished. Tasks are stored locally and, once you sign in,
mirrored to a remote record so another device can pick them up.

EXAMPLES:
  wall add "Pay rent"                       # Add a task for today
  wall add "Leg day" -d tomorrow -c Gym     # Add a task for tomorrow in Gym
  wall list                                 # Show every section
  wall done today 1                         # Finish the first task of today
  wall undo 1                               # Reopen the first finished task
  wall category add Gym                     # Register a category
  wall register --first-name Ada --last-name Lovelace --email ada@example.com
  wall login <user id>                      # Sign in and pull your tasks
  wall sync                                 # Reconcile with the server now

CONFIGURATION:
  Configuration follows this priority order: flags > environment > config file > defaults
  The config file is ~/.sticky-wall/config.yaml unless --config or STICKY_CONFIG is set.

  STICKY_STORAGE_BACKEND                    sqlite or file (default: sqlite)
  STICKY_STORAGE_DIR                        Data directory (default: ~/.sticky-wall)
  STICKY_SYNC_ENABLED                       Mirror tasks to the remote record (default: true)
  STICKY_SYNC_BASE_URL                      Record service URL
  STICKY_TASK_LOCATION                      Time zone used for today (default: Local)
  STICKY_CATEGORIES_DEFAULTS                Comma separated starting categories
  STICKY_DEBUG                              Enable debug logging`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.loadConfig()
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the root command and releases the business API afterwards
func (r *RootCommand) Execute() error {
	return r.ExecuteArgs(os.Args[1:])
}

// ExecuteArgs runs the root command with explicit arguments
func (r *RootCommand) ExecuteArgs(args []string) error {
	r.cmd.SetArgs(args)
	err := r.cmd.Execute()
	if r.closer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if cerr := r.closer(ctx); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close: %w", cerr)
		}
		r.closer = nil
	}
	return err
}

// Command exposes the cobra command, mostly for completion generation
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("config", "", "Config file (overrides STICKY_CONFIG)")

	// Storage configuration
	flags.String("storage-backend", "", "Storage backend: sqlite or file (overrides STICKY_STORAGE_BACKEND)")
	flags.String("storage-dir", "", "Data directory (overrides STICKY_STORAGE_DIR)")
	flags.String("storage-file", "", "Data file name (overrides STICKY_STORAGE_FILENAME)")

	// Sync configuration
	flags.Bool("offline", false, "Do not talk to the sync server")
	flags.String("sync-url", "", "Record service URL (overrides STICKY_SYNC_BASE_URL)")
	flags.Duration("sync-timeout", 0, "Remote request timeout (overrides STICKY_SYNC_TIMEOUT)")

	// Application configuration
	flags.Duration("timeout", 0, "Command timeout (overrides STICKY_APP_TIMEOUT)")
	flags.BoolP("verbose", "v", false, "Enable verbose output (overrides STICKY_APP_VERBOSE)")
	flags.Bool("debug", false, "Enable debug logging")
}

// addSubcommands builds one cobra command per registered command
func (r *RootCommand) addSubcommands() {
	for _, spec := range r.registry.Specs() {
		handler := spec.New(r.app)
		sub := &cobra.Command{
			Use:   spec.Use,
			Short: spec.Short,
			Long:  spec.Long,
			Args:  spec.Args,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := r.openAPI(); err != nil {
					return err
				}
				ctx, cancel := context.WithTimeout(cmd.Context(), r.getAppTimeout())
				defer cancel()
				return handler.Execute(ctx, args)
			},
		}
		if b, ok := handler.(flagBinder); ok {
			b.BindFlags(sub)
		}
		r.cmd.AddCommand(sub)
	}
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.app.config != nil && r.app.config.Application.Timeout > 0 {
		return r.app.config.Application.Timeout
	}
	return 60 * time.Second
}

// loadConfig reads defaults, file and environment, then applies flags
func (r *RootCommand) loadConfig() error {
	if r.loaded {
		return nil
	}
	cfg, err := config.NewLoader().LoadWithOverrides(r.getOverridesFromFlags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	r.app.config = cfg
	r.loaded = true
	return nil
}

// openAPI opens storage and sync on first use
func (r *RootCommand) openAPI() error {
	if r.app.businessAPI != nil {
		return nil
	}
	cfg := r.app.config
	level := logging.Level(cfg.Application.Verbose)
	if cfg.Application.Debug {
		level = slog.LevelDebug
	}
	logger := logging.New(r.errOut, level)

	businessAPI, closer, err := r.open(cfg, logger)
	if err != nil {
		return NewErrorHandler().Handle("open task storage", err)
	}
	r.app.businessAPI = businessAPI
	r.closer = closer
	return nil
}

// getOverridesFromFlags collects the global flags that were set
func (r *RootCommand) getOverridesFromFlags() *config.ConfigOverrides {
	flags := r.cmd.PersistentFlags()
	o := &config.ConfigOverrides{}

	if flags.Changed("config") {
		v, _ := flags.GetString("config")
		o.ConfigFile = &v
	}
	if flags.Changed("storage-backend") {
		v, _ := flags.GetString("storage-backend")
		o.StorageBackend = &v
	}
	if flags.Changed("storage-dir") {
		v, _ := flags.GetString("storage-dir")
		o.StorageDir = &v
	}
	if flags.Changed("storage-file") {
		v, _ := flags.GetString("storage-file")
		o.StorageFilename = &v
	}
	if offline, _ := flags.GetBool("offline"); offline {
		enabled := false
		o.SyncEnabled = &enabled
	}
	if flags.Changed("sync-url") {
		v, _ := flags.GetString("sync-url")
		o.SyncBaseURL = &v
	}
	if v, _ := flags.GetDuration("sync-timeout"); v > 0 {
		o.SyncTimeout = &v
	}
	if v, _ := flags.GetDuration("timeout"); v > 0 {
		o.Timeout = &v
	}
	if v, _ := flags.GetBool("verbose"); v {
		o.Verbose = &v
	}
	if v, _ := flags.GetBool("debug"); v {
		o.Debug = &v
	}
	return o
}
