package cli

import (
	"context"
	"strings"
)

const progressWidth = 20

// StatsCommand handles the stats command
type StatsCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewStatsCommand creates a new stats command handler
func NewStatsCommand(app *App) *StatsCommand {
	return &StatsCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute runs the stats command
func (c *StatsCommand) Execute(ctx context.Context, args []string) error {
	st, err := c.app.businessAPI.Stats(ctx)
	if err != nil {
		return c.errorHandler.Handle("compute stats", err)
	}
	c.app.printf("Today:     %d\n", st.Today)
	c.app.printf("Tomorrow:  %d\n", st.Tomorrow)
	c.app.printf("This week: %d\n", st.ThisWeek)
	c.app.printf("Finished:  %d\n", st.Finished)
	c.app.printf("Total:     %d\n", st.Total)
	c.app.printf("Progress:  %s %d%%\n", progressBar(st.Percentage), st.Percentage)
	return nil
}

func progressBar(percentage int) string {
	filled := percentage * progressWidth / 100
	if filled > progressWidth {
		filled = progressWidth
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", progressWidth-filled) + "]"
}
