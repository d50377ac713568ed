package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"sticky-wall/internal/domain"
	"sticky-wall/internal/errors"
)

// EditCommand handles the edit command
type EditCommand struct {
	app           *App
	errorHandler  *ErrorHandler
	date          string
	category      string
	clearCategory bool
}

// NewEditCommand creates a new edit command handler
func NewEditCommand(app *App) *EditCommand {
	return &EditCommand{app: app, errorHandler: NewErrorHandler()}
}

// BindFlags registers --date, --category and --no-category
func (c *EditCommand) BindFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&c.date, "date", "d", "", "New due date: today, tomorrow or YYYY-MM-DD")
	cmd.Flags().StringVarP(&c.category, "category", "c", "", "New category")
	cmd.Flags().BoolVar(&c.clearCategory, "no-category", false, "Remove the category")
}

// Execute runs the edit command
func (c *EditCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.NewInvalidInputError("command", "edit", "usage: wall edit <section> <position> [text]")
	}
	section, err := parseSection(args[0])
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}
	index, err := parsePosition(args[1])
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}
	current, err := c.app.taskAt(ctx, section, index)
	if err != nil {
		return c.errorHandler.Handle("edit task", err)
	}

	in := c.input(current, args[2:])
	ch, err := c.app.businessAPI.EditTask(ctx, section, index, in)
	if err != nil {
		return c.errorHandler.Handle("edit task", err)
	}
	if ch.Section != section {
		c.app.printf("Updated and moved to %s: %s\n", ch.Section, ch.Task.Text)
		return nil
	}
	c.app.printf("Updated: %s\n", ch.Task.Text)
	return nil
}

// input merges the given fields over the current values
func (c *EditCommand) input(current domain.Task, words []string) domain.TaskInput {
	in := domain.TaskInput{Text: current.Text, Date: current.Date, Category: current.Category}
	if len(words) > 0 {
		in.Text = strings.Join(words, " ")
	}
	if c.date != "" {
		in.Date = c.app.resolveDate(c.date)
	}
	switch {
	case c.clearCategory:
		in.Category = ""
	case c.category != "":
		in.Category = c.category
	}
	return in
}
