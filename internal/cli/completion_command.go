package cli

import (
	"context"

	"sticky-wall/internal/domain"
	"sticky-wall/internal/errors"
)

// CompletionCommand handles done and undo. The task is located by position
// and toggled by reference.
type CompletionCommand struct {
	app          *App
	errorHandler *ErrorHandler
	complete     bool
}

// NewCompletionCommand creates done (complete true) or undo handlers
func NewCompletionCommand(app *App, complete bool) *CompletionCommand {
	return &CompletionCommand{app: app, errorHandler: NewErrorHandler(), complete: complete}
}

// Execute runs the command
func (c *CompletionCommand) Execute(ctx context.Context, args []string) error {
	section, position, err := c.target(args)
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}
	index, err := parsePosition(position)
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}
	task, err := c.app.taskAt(ctx, section, index)
	if err != nil {
		return c.errorHandler.Handle(c.operation(), err)
	}

	ch, err := c.app.businessAPI.ToggleCompletion(ctx, task.Ref())
	if err != nil {
		return c.errorHandler.Handle(c.operation(), err)
	}
	switch {
	case ch.Resynced:
		c.app.println("The task list changed; run wall list and try again")
	case ch.Section == domain.SectionFinished:
		c.app.printf("Finished: %s\n", task.Text)
	default:
		c.app.printf("Moved back to %s: %s\n", ch.Section, task.Text)
	}
	return nil
}

func (c *CompletionCommand) target(args []string) (domain.Section, string, error) {
	if !c.complete {
		if len(args) != 1 {
			return "", "", errors.NewInvalidInputError("command", "undo", "usage: wall undo <position>")
		}
		return domain.SectionFinished, args[0], nil
	}
	if len(args) != 2 {
		return "", "", errors.NewInvalidInputError("command", "done", "usage: wall done <section> <position>")
	}
	section, err := parseSection(args[0])
	if err != nil {
		return "", "", err
	}
	if section == domain.SectionFinished {
		return "", "", errors.NewInvalidInputError("section", section, "task is already finished")
	}
	return section, args[1], nil
}

func (c *CompletionCommand) operation() string {
	if c.complete {
		return "finish task"
	}
	return "reopen task"
}
