package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"sticky-wall/internal/domain"
)

var sectionTitles = map[domain.Section]string{
	domain.SectionToday:    "Today",
	domain.SectionTomorrow: "Tomorrow",
	domain.SectionThisWeek: "This week",
	domain.SectionFinished: "Finished",
}

// ListCommand handles the list command
type ListCommand struct {
	app          *App
	errorHandler *ErrorHandler
	category     string
}

// NewListCommand creates a new list command handler
func NewListCommand(app *App) *ListCommand {
	return &ListCommand{app: app, errorHandler: NewErrorHandler()}
}

// BindFlags registers --category
func (c *ListCommand) BindFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&c.category, "category", "c", "", "Only show tasks in this category")
}

// Execute runs the list command
func (c *ListCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.listAll(ctx)
	}
	section, err := parseSection(args[0])
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}
	tasks, err := c.app.businessAPI.GetSectionTasks(ctx, section, "")
	if err != nil {
		return c.errorHandler.Handle("list tasks", err)
	}
	if !c.printSection(section, tasks) {
		c.app.println("No tasks found")
	}
	return nil
}

func (c *ListCommand) listAll(ctx context.Context) error {
	all, err := c.app.businessAPI.GetAllTasks(ctx)
	if err != nil {
		return c.errorHandler.Handle("list tasks", err)
	}
	printed := false
	for _, section := range domain.AllSections {
		if printed && c.matching(all[section]) > 0 {
			c.app.println()
		}
		if c.printSection(section, all[section]) {
			printed = true
		}
	}
	if !printed {
		c.app.println("No tasks found")
	}
	return nil
}

func (c *ListCommand) matching(tasks []domain.Task) int {
	n := 0
	for _, t := range tasks {
		if c.category == "" || t.Category == c.category {
			n++
		}
	}
	return n
}

// printSection prints a header and the tasks matching the category filter.
// Each line keeps the task's position in the whole section, which is what
// edit, done and delete take.
func (c *ListCommand) printSection(section domain.Section, tasks []domain.Task) bool {
	n := c.matching(tasks)
	if n == 0 {
		return false
	}
	c.app.printf("%s (%d)\n", sectionTitles[section], n)
	for i, t := range tasks {
		if c.category != "" && t.Category != c.category {
			continue
		}
		c.app.printf("  %d. %s\n", i+1, formatTask(t))
	}
	return true
}

func formatTask(t domain.Task) string {
	mark := "[ ]"
	if t.Completed {
		mark = "[x]"
	}
	line := fmt.Sprintf("%s %s  %s", mark, t.Text, t.Date)
	if t.Category != "" {
		line += "  #" + t.Category
	}
	return line
}
