package cli

import (
	"context"

	"github.com/spf13/cobra"

	"sticky-wall/internal/errors"
)

// DeleteCommand handles the delete command
type DeleteCommand struct {
	app          *App
	errorHandler *ErrorHandler
	yes          bool
}

// NewDeleteCommand creates a new delete command handler
func NewDeleteCommand(app *App) *DeleteCommand {
	return &DeleteCommand{app: app, errorHandler: NewErrorHandler()}
}

// BindFlags registers --yes
func (c *DeleteCommand) BindFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&c.yes, "yes", "y", false, "Do not ask for confirmation")
}

// Execute runs the delete command
func (c *DeleteCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.NewInvalidInputError("command", "delete", "usage: wall delete <section> <position>")
	}
	section, err := parseSection(args[0])
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}
	index, err := parsePosition(args[1])
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}
	task, err := c.app.taskAt(ctx, section, index)
	if err != nil {
		return c.errorHandler.Handle("delete task", err)
	}

	if !c.yes && !c.app.confirm("Delete \""+task.Text+"\"?") {
		c.app.println("Delete cancelled.")
		return nil
	}
	ch, err := c.app.businessAPI.DeleteTask(ctx, section, index)
	if err != nil {
		return c.errorHandler.Handle("delete task", err)
	}
	c.app.printf("Deleted task: %s\n", ch.Task.Text)
	return nil
}
