package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"sticky-wall/internal/errors"
)

// CategoryCommand handles category list, add and delete
type CategoryCommand struct {
	app          *App
	errorHandler *ErrorHandler
	yes          bool
}

// NewCategoryCommand creates a new category command handler
func NewCategoryCommand(app *App) *CategoryCommand {
	return &CategoryCommand{app: app, errorHandler: NewErrorHandler()}
}

// BindFlags registers --yes
func (c *CategoryCommand) BindFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&c.yes, "yes", "y", false, "Do not ask for confirmation when deleting")
}

// Execute runs the category command
func (c *CategoryCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.NewInvalidInputError("command", "category", "usage: wall category [list|add|delete] [name]")
	}
	name := strings.Join(args[1:], " ")
	switch args[0] {
	case "list", "ls":
		return c.list(ctx)
	case "add":
		return c.add(ctx, name)
	case "delete", "rm":
		return c.delete(ctx, name)
	}
	return errors.NewInvalidInputError("action", args[0], "expected list, add or delete")
}

func (c *CategoryCommand) list(ctx context.Context) error {
	names, err := c.app.businessAPI.ListCategories(ctx)
	if err != nil {
		return c.errorHandler.Handle("list categories", err)
	}
	if len(names) == 0 {
		c.app.println("No categories")
		return nil
	}
	for _, name := range names {
		c.app.println(name)
	}
	canAdd, err := c.app.businessAPI.CanAddCategory(ctx)
	if err != nil {
		return c.errorHandler.Handle("list categories", err)
	}
	if !canAdd {
		c.app.println("(category limit reached)")
	}
	return nil
}

func (c *CategoryCommand) add(ctx context.Context, name string) error {
	if _, err := c.app.businessAPI.AddCategory(ctx, name); err != nil {
		return c.errorHandler.Handle("add category", err)
	}
	c.app.printf("Added category: %s\n", strings.TrimSpace(name))
	return nil
}

func (c *CategoryCommand) delete(ctx context.Context, name string) error {
	if name == "" {
		return errors.NewInvalidInputError("name", name, "usage: wall category delete <name>")
	}
	if !c.yes && !c.app.confirm("Delete category \""+name+"\" and clear it from its tasks?") {
		c.app.println("Delete cancelled.")
		return nil
	}
	ch, err := c.app.businessAPI.DeleteCategory(ctx, name)
	if err != nil {
		return c.errorHandler.Handle("delete category", err)
	}
	c.app.printf("Deleted category: %s\n", name)
	if len(ch.Views) > 0 {
		sections := make([]string, 0, len(ch.Views))
		for _, v := range ch.Views {
			sections = append(sections, string(v))
		}
		c.app.printf("Cleared from tasks in: %s\n", strings.Join(sections, ", "))
	}
	return nil
}
