package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"sticky-wall/internal/validation"
)

// LoginCommand handles the login command
type LoginCommand struct {
	app          *App
	errorHandler *ErrorHandler
	password     string
}

// NewLoginCommand creates a new login command handler
func NewLoginCommand(app *App) *LoginCommand {
	return &LoginCommand{app: app, errorHandler: NewErrorHandler()}
}

// BindFlags registers --password
func (c *LoginCommand) BindFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&c.password, "password", "p", "", "Password (asked for when omitted)")
}

// Execute runs the login command
func (c *LoginCommand) Execute(ctx context.Context, args []string) error {
	userID := strings.Join(args, " ")
	password, err := c.app.valueOrPrompt(c.password, "Password: ")
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}
	u, err := c.app.businessAPI.Login(ctx, userID, password)
	if err != nil {
		return c.errorHandler.Handle("sign in", err)
	}
	c.app.printf("Signed in as %s (%s)\n", u.FullName, u.ID)
	return nil
}

// RegisterCommand handles the register command
type RegisterCommand struct {
	app          *App
	errorHandler *ErrorHandler
	registration validation.Registration
}

// NewRegisterCommand creates a new register command handler
func NewRegisterCommand(app *App) *RegisterCommand {
	return &RegisterCommand{app: app, errorHandler: NewErrorHandler()}
}

// BindFlags registers the account fields
func (c *RegisterCommand) BindFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.registration.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&c.registration.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&c.registration.Email, "email", "", "Email address")
	cmd.Flags().StringVarP(&c.registration.Password, "password", "p", "", "Password (asked for when omitted)")
}

// Execute runs the register command
func (c *RegisterCommand) Execute(ctx context.Context, args []string) error {
	r := c.registration
	password, err := c.app.valueOrPrompt(r.Password, "Password: ")
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}
	r.Password = password

	u, err := c.app.businessAPI.Register(ctx, r)
	if err != nil {
		return c.errorHandler.Handle("register", err)
	}
	c.app.printf("Registered %s. Your user ID is %s\n", u.FullName, u.ID)
	c.app.println("Use it with wall login to sign in on another device.")
	return nil
}

// PasswordCommand handles the passwd command
type PasswordCommand struct {
	app          *App
	errorHandler *ErrorHandler
	userID       string
}

// NewPasswordCommand creates a new passwd command handler
func NewPasswordCommand(app *App) *PasswordCommand {
	return &PasswordCommand{app: app, errorHandler: NewErrorHandler()}
}

// BindFlags registers --user
func (c *PasswordCommand) BindFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&c.userID, "user", "u", "", "User ID (defaults to the signed-in user)")
}

// Execute runs the passwd command
func (c *PasswordCommand) Execute(ctx context.Context, args []string) error {
	userID := c.userID
	if userID == "" {
		u, ok, err := c.app.businessAPI.CurrentUser(ctx)
		if err != nil {
			return c.errorHandler.Handle("change password", err)
		}
		if ok {
			userID = u.ID
		}
	}

	answers := make([]string, 0, 3)
	for _, label := range []string{"Current password: ", "New password: ", "Confirm new password: "} {
		v, err := c.app.prompt(label)
		if err != nil {
			return c.errorHandler.HandleSimple(err)
		}
		answers = append(answers, v)
	}

	if err := c.app.businessAPI.ChangePassword(ctx, userID, answers[0], answers[1], answers[2]); err != nil {
		return c.errorHandler.Handle("change password", err)
	}
	c.app.println("Password changed")
	return nil
}

// LogoutCommand handles the logout command
type LogoutCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewLogoutCommand creates a new logout command handler
func NewLogoutCommand(app *App) *LogoutCommand {
	return &LogoutCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute runs the logout command
func (c *LogoutCommand) Execute(ctx context.Context, args []string) error {
	if err := c.app.businessAPI.Logout(ctx); err != nil {
		return c.errorHandler.Handle("sign out", err)
	}
	c.app.println("Signed out")
	return nil
}

// WhoamiCommand handles the whoami command
type WhoamiCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewWhoamiCommand creates a new whoami command handler
func NewWhoamiCommand(app *App) *WhoamiCommand {
	return &WhoamiCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute runs the whoami command
func (c *WhoamiCommand) Execute(ctx context.Context, args []string) error {
	valid, err := c.app.businessAPI.ValidateSession(ctx)
	if err != nil {
		return c.errorHandler.Handle("check session", err)
	}
	if !valid {
		c.app.println("Not signed in")
		return nil
	}
	u, _, err := c.app.businessAPI.CurrentUser(ctx)
	if err != nil {
		return c.errorHandler.Handle("check session", err)
	}
	c.app.printf("%s <%s> (%s)\n", u.FullName, u.Email, u.ID)
	return nil
}
