package cli

import (
	"context"
	"time"

	"sticky-wall/internal/syncer"
)

// SyncCommand handles the sync command
type SyncCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewSyncCommand creates a new sync command handler
func NewSyncCommand(app *App) *SyncCommand {
	return &SyncCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute runs the sync command
func (c *SyncCommand) Execute(ctx context.Context, args []string) error {
	report, err := c.app.businessAPI.SyncNow(ctx)
	if err != nil {
		return c.errorHandler.Handle("sync", err)
	}
	switch {
	case report.Adopted:
		c.app.println("Pulled newer tasks from the server")
	case report.Queued:
		c.app.println("Uploading local changes")
	default:
		c.app.println("Already in sync")
	}
	return nil
}

// StatusCommand handles the status command
type StatusCommand struct {
	app *App
}

// NewStatusCommand creates a new status command handler
func NewStatusCommand(app *App) *StatusCommand {
	return &StatusCommand{app: app}
}

// Execute runs the status command
func (c *StatusCommand) Execute(ctx context.Context, args []string) error {
	st := c.app.businessAPI.SyncStatus(ctx)
	switch {
	case !st.SyncEnabled:
		c.app.println("Sync:          disabled")
	case !st.SignedIn:
		c.app.println("Sync:          signed out")
	default:
		c.app.printf("Sync:          signed in as %s\n", st.UserID)
	}
	c.app.printf("Last modified: %s\n", c.formatMillis(st.LastModified))
	c.printPush(st.Push)
	return nil
}

func (c *StatusCommand) printPush(p syncer.Status) {
	if p.Pending {
		c.app.println("Upload:        pending")
	}
	if !p.LastAttempt.IsZero() {
		c.app.printf("Last upload:   %s (%s)\n", c.formatTime(p.LastAttempt), p.LastResult)
	}
	if p.LastError != "" {
		c.app.printf("Last error:    %s\n", p.LastError)
	}
}

func (c *StatusCommand) formatMillis(ms int64) string {
	if ms <= 0 {
		return "never"
	}
	return c.formatTime(time.UnixMilli(ms))
}

func (c *StatusCommand) formatTime(t time.Time) string {
	loc, err := c.app.config.GetLocation()
	if err != nil {
		loc = time.Local
	}
	return t.In(loc).Format("2006-01-02 15:04:05")
}
