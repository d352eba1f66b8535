package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/ignite-gym/ignitegym/internal/cli/client"
	"github.com/ignite-gym/ignitegym/internal/cli/forms"
)

// NewSignUpCmd creates the signup command
func NewSignUpCmd(app *App) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignUp(cmd.Context(), app, name, email)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Your name (will prompt if not provided)")
	cmd.Flags().StringVar(&email, "email", "", "E-mail address (will prompt if not provided)")

	return cmd
}

func runSignUp(ctx context.Context, app *App, name, email string) error {
	var err error
	if name == "" {
		if name, err = app.prompt("Name"); err != nil {
			return err
		}
	}
	if email == "" {
		if email, err = app.prompt("E-mail"); err != nil {
			return err
		}
	}

	password, err := app.promptPassword("Password")
	if err != nil {
		return err
	}
	confirm, err := app.promptPassword("Confirm password")
	if err != nil {
		return err
	}

	form := forms.SignUp{Name: name, Email: email, Password: password, PasswordConfirm: confirm}
	if err := app.Forms.Validate(form); err != nil {
		return err
	}

	if err := app.API.Register(ctx, client.RegisterRequest{Name: name, Email: email, Password: password}); err != nil {
		return err
	}
	app.println("✓ Account created!")

	return signIn(ctx, app, email, password)
}

// NewLoginCmd creates the login command
func NewLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the Ignite Gym API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), app, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "E-mail address (or set IGNITEGYM_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set IGNITEGYM_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(ctx context.Context, app *App, email, password string) error {
	// Check for environment variables (useful for scripts)
	if email == "" {
		email = os.Getenv("IGNITEGYM_EMAIL")
	}
	if password == "" {
		password = os.Getenv("IGNITEGYM_PASSWORD")
	}

	var err error
	if email == "" {
		if email, err = app.prompt("E-mail"); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = app.promptPassword("Password"); err != nil {
			return err
		}
	}

	if err := app.Forms.Validate(forms.SignIn{Email: email, Password: password}); err != nil {
		return err
	}

	return signIn(ctx, app, email, password)
}

func signIn(ctx context.Context, app *App, email, password string) error {
	app.printf("Signing in to %s...\n", app.API.BaseURL())

	if err := app.Session.SignIn(ctx, email, password); err != nil {
		return err
	}

	user := app.Session.User()
	app.println("✓ Signed in!")
	app.printf("  User: %s (%s)\n", user.Name, user.Email)
	return nil
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Session.SignOut(cmd.Context()); err != nil {
				return err
			}
			app.println("✓ Signed out.")
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.requireUser()
			if err != nil {
				app.println("Not signed in.")
				return nil
			}

			app.printf("%s (%s)\n", user.Name, user.Email)
			app.printf("  ID:     %s\n", user.ID)
			if user.Avatar != "" {
				app.printf("  Avatar: %s\n", app.API.AvatarURL(user.Avatar))
			}
			app.printf("  API:    %s\n", app.API.BaseURL())
			return nil
		},
	}
}
