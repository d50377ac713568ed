package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"sticky-wall/internal/api"
	"sticky-wall/internal/config"
	"sticky-wall/internal/domain"
	"sticky-wall/internal/errors"
	"sticky-wall/internal/schedule"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// App represents the CLI application state shared by every command
type App struct {
	businessAPI api.BusinessAPI
	config      *config.Config
	out         io.Writer
	in          *bufio.Reader
}

// NewApp creates a new CLI application writing to stdout and reading stdin
func NewApp(businessAPI api.BusinessAPI, cfg *config.Config) *App {
	return NewAppWithIO(businessAPI, cfg, os.Stdout, os.Stdin)
}

// NewAppWithIO creates a CLI application over the given streams
func NewAppWithIO(businessAPI api.BusinessAPI, cfg *config.Config, out io.Writer, in io.Reader) *App {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &App{
		businessAPI: businessAPI,
		config:      cfg,
		out:         out,
		in:          bufio.NewReader(in),
	}
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// prompt prints label and reads one line of input
func (a *App) prompt(label string) (string, error) {
	a.printf("%s", label)
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", errors.NewInvalidInputError("input", "", "no input provided")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirm asks a yes/no question; anything but y or yes is a no
func (a *App) confirm(question string) bool {
	answer, err := a.prompt(question + " [y/N]: ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// today returns the current date in the configured time zone
func (a *App) today() time.Time {
	loc, err := a.config.GetLocation()
	if err != nil {
		loc = time.Local
	}
	return timeNow().In(loc)
}

// resolveDate expands the today/tomorrow shorthands and passes anything else through
func (a *App) resolveDate(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "today":
		return schedule.FormatDate(a.today())
	case "tomorrow":
		return schedule.FormatDate(a.today().AddDate(0, 0, 1))
	}
	return value
}

// parseSection accepts a section name
func parseSection(value string) (domain.Section, error) {
	section, ok := domain.ParseSection(value)
	if !ok {
		return "", errors.NewInvalidInputError("section", value, "expected today, tomorrow, thisweek or finished")
	}
	return section, nil
}

// parsePosition converts a 1-based list position into an index
func parsePosition(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, errors.NewInvalidInputError("position", value, "expected a positive number")
	}
	return n - 1, nil
}

// taskAt returns the task shown at a list position
func (a *App) taskAt(ctx context.Context, section domain.Section, index int) (domain.Task, error) {
	tasks, err := a.businessAPI.GetSectionTasks(ctx, section, "")
	if err != nil {
		return domain.Task{}, err
	}
	if index < 0 || index >= len(tasks) {
		return domain.Task{}, errors.NewNotFoundError("task", fmt.Sprintf("%s #%d", section, index+1))
	}
	return tasks[index], nil
}

// valueOrPrompt returns value, or asks for it when it is empty
func (a *App) valueOrPrompt(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return a.prompt(label)
}
