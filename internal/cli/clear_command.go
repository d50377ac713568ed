package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// ClearCommand handles the clear command
type ClearCommand struct {
	app          *App
	errorHandler *ErrorHandler
	yes          bool
}

// NewClearCommand creates a new clear command handler
func NewClearCommand(app *App) *ClearCommand {
	return &ClearCommand{app: app, errorHandler: NewErrorHandler()}
}

// BindFlags registers --yes
func (c *ClearCommand) BindFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&c.yes, "yes", "y", false, "Do not ask for confirmation")
}

// Execute runs the clear command
func (c *ClearCommand) Execute(ctx context.Context, args []string) error {
	if !c.yes && !c.app.confirm("Delete every task?") {
		c.app.println("Clear cancelled.")
		return nil
	}
	if _, err := c.app.businessAPI.ClearAllTasks(ctx); err != nil {
		return c.errorHandler.Handle("clear tasks", err)
	}
	c.app.println("All tasks cleared")
	return nil
}
