package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"sticky-wall/internal/errors"
)

// Command represents a CLI command
type Command interface {
	Execute(ctx context.Context, args []string) error
}

// flagBinder is implemented by commands that take flags
type flagBinder interface {
	BindFlags(cmd *cobra.Command)
}

// CommandSpec describes one subcommand and how to build its handler
type CommandSpec struct {
	Name  string
	Use   string
	Short string
	Long  string
	Args  cobra.PositionalArgs
	New   func(app *App) Command
}

// CommandRegistry manages all available commands
type CommandRegistry struct {
	specs []CommandSpec
	index map[string]int
}

// NewCommandRegistry creates a registry holding every wall command
func NewCommandRegistry() *CommandRegistry {
	r := &CommandRegistry{index: make(map[string]int)}

	r.Register(CommandSpec{
		Name:  "add",
		Use:   "add [text]",
		Short: "Add a task",
		Long: `Add a task dated today, tomorrow or later this week.

Examples:
  wall add Buy milk
  wall add "Leg day" --date tomorrow --category Gym
  wall add Send report --date 2026-10-16`,
		Args: cobra.MinimumNArgs(1),
		New:  func(app *App) Command { return NewAddCommand(app) },
	})
	r.Register(CommandSpec{
		Name:  "list",
		Use:   "list [section]",
		Short: "List tasks",
		Long: `List every section, or one of today, tomorrow, thisweek and finished.

Examples:
  wall list
  wall list today
  wall list thisweek --category Work`,
		Args: cobra.MaximumNArgs(1),
		New:  func(app *App) Command { return NewListCommand(app) },
	})
	r.Register(CommandSpec{
		Name:  "edit",
		Use:   "edit [section] [position] [text]",
		Short: "Edit a task",
		Long: `Edit the task shown at a position of a section. Fields that are not
given keep their current value. A new date moves the task to its section.

Examples:
  wall edit today 2 Buy oat milk
  wall edit thisweek 1 --date today`,
		Args: cobra.MinimumNArgs(2),
		New:  func(app *App) Command { return NewEditCommand(app) },
	})
	r.Register(CommandSpec{
		Name:  "done",
		Use:   "done [section] [position]",
		Short: "Mark a task finished",
		Args:  cobra.ExactArgs(2),
		New:   func(app *App) Command { return NewCompletionCommand(app, true) },
	})
	r.Register(CommandSpec{
		Name:  "undo",
		Use:   "undo [position]",
		Short: "Move a finished task back to its date section",
		Args:  cobra.ExactArgs(1),
		New:   func(app *App) Command { return NewCompletionCommand(app, false) },
	})
	r.Register(CommandSpec{
		Name:  "delete",
		Use:   "delete [section] [position]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(2),
		New:   func(app *App) Command { return NewDeleteCommand(app) },
	})
	r.Register(CommandSpec{
		Name:  "clear",
		Use:   "clear",
		Short: "Delete every task",
		Args:  cobra.NoArgs,
		New:   func(app *App) Command { return NewClearCommand(app) },
	})
	r.Register(CommandSpec{
		Name:  "stats",
		Use:   "stats",
		Short: "Show task counts and progress",
		Args:  cobra.NoArgs,
		New:   func(app *App) Command { return NewStatsCommand(app) },
	})
	r.Register(CommandSpec{
		Name:  "category",
		Use:   "category [list|add|delete] [name]",
		Short: "Manage categories",
		Long: `List, add or delete categories. Deleting a category clears it from
every task that uses it.

Examples:
  wall category list
  wall category add Gym
  wall category delete Work`,
		Args: cobra.MinimumNArgs(1),
		New:  func(app *App) Command { return NewCategoryCommand(app) },
	})
	r.Register(CommandSpec{
		Name:  "login",
		Use:   "login [user id]",
		Short: "Sign in to sync tasks",
		Args:  cobra.ExactArgs(1),
		New:   func(app *App) Command { return NewLoginCommand(app) },
	})
	r.Register(CommandSpec{
		Name:  "register",
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		New:   func(app *App) Command { return NewRegisterCommand(app) },
	})
	r.Register(CommandSpec{
		Name:  "passwd",
		Use:   "passwd",
		Short: "Change the account password",
		Args:  cobra.NoArgs,
		New:   func(app *App) Command { return NewPasswordCommand(app) },
	})
	r.Register(CommandSpec{
		Name:  "logout",
		Use:   "logout",
		Short: "Sign out and clear local data",
		Args:  cobra.NoArgs,
		New:   func(app *App) Command { return NewLogoutCommand(app) },
	})
	r.Register(CommandSpec{
		Name:  "whoami",
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		New:   func(app *App) Command { return NewWhoamiCommand(app) },
	})
	r.Register(CommandSpec{
		Name:  "sync",
		Use:   "sync",
		Short: "Reconcile with the remote record now",
		Args:  cobra.NoArgs,
		New:   func(app *App) Command { return NewSyncCommand(app) },
	})
	r.Register(CommandSpec{
		Name:  "status",
		Use:   "status",
		Short: "Show sync status",
		Args:  cobra.NoArgs,
		New:   func(app *App) Command { return NewStatusCommand(app) },
	})

	return r
}

// Register adds a command to the registry, replacing one with the same name
func (r *CommandRegistry) Register(spec CommandSpec) {
	if i, ok := r.index[spec.Name]; ok {
		r.specs[i] = spec
		return
	}
	r.index[spec.Name] = len(r.specs)
	r.specs = append(r.specs, spec)
}

// Lookup returns the command registered under name
func (r *CommandRegistry) Lookup(name string) (CommandSpec, bool) {
	i, ok := r.index[name]
	if !ok {
		return CommandSpec{}, false
	}
	return r.specs[i], true
}

// Specs returns the registered commands in registration order
func (r *CommandRegistry) Specs() []CommandSpec {
	out := make([]CommandSpec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Execute runs the specified command with the given arguments
func (r *CommandRegistry) Execute(ctx context.Context, app *App, commandName string, args []string) error {
	spec, ok := r.Lookup(commandName)
	if !ok {
		return errors.NewInvalidInputError("command", commandName, "unknown command")
	}
	return spec.New(app).Execute(ctx, args)
}

// GetUsage returns the usage string for the CLI
func (r *CommandRegistry) GetUsage() string {
	uses := make([]string, 0, len(r.specs))
	for _, spec := range r.specs {
		uses = append(uses, "wall "+spec.Use)
	}
	return "usage: " + strings.Join(uses, " | ")
}
