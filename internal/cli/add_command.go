package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"sticky-wall/internal/domain"
	"sticky-wall/internal/errors"
)

// AddCommand handles the add command
type AddCommand struct {
	app          *App
	errorHandler *ErrorHandler
	date         string
	category     string
}

// NewAddCommand creates a new add command handler
func NewAddCommand(app *App) *AddCommand {
	return &AddCommand{app: app, errorHandler: NewErrorHandler()}
}

// BindFlags registers --date and --category
func (c *AddCommand) BindFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&c.date, "date", "d", "today", "Due date: today, tomorrow or YYYY-MM-DD")
	cmd.Flags().StringVarP(&c.category, "category", "c", "", "Category name")
}

// Execute runs the add command
func (c *AddCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.NewInvalidInputError("command", "add", "usage: wall add \"your task\" [--date D] [--category C]")
	}
	in := domain.TaskInput{
		Text:     strings.Join(args, " "),
		Date:     c.app.resolveDate(c.date),
		Category: c.category,
	}
	ch, err := c.app.businessAPI.AddTask(ctx, in)
	if err != nil {
		return c.errorHandler.Handle("add task", err)
	}
	c.app.printf("Added to %s: %s\n", ch.Section, ch.Task.Text)
	return nil
}
