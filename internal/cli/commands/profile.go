package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ignite-gym/ignitegym/internal/cli/client"
	"github.com/ignite-gym/ignitegym/internal/cli/forms"
)

// NewProfileCmd creates the profile command
func NewProfileCmd(app *App) *cobra.Command {
	var name string
	var changePassword bool

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your profile",
		Long: `Show your profile, or update it when --name or --change-password is given.

Changing the password prompts for the old password, the new password and its
confirmation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfile(cmd.Context(), app, name, changePassword)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().BoolVar(&changePassword, "change-password", false, "Change the password")

	return cmd
}

func runProfile(ctx context.Context, app *App, name string, changePassword bool) error {
	user, err := app.requireUser()
	if err != nil {
		return err
	}

	if name == "" && !changePassword {
		app.printf("Name:   %s\n", user.Name)
		app.printf("E-mail: %s\n", user.Email)
		if user.Avatar != "" {
			app.printf("Avatar: %s\n", app.API.AvatarURL(user.Avatar))
		}
		return nil
	}

	form := forms.Profile{Name: name}
	if form.Name == "" {
		form.Name = user.Name
	}

	if changePassword {
		if form.OldPassword, err = app.promptPassword("Old password"); err != nil {
			return err
		}
		if form.Password, err = app.promptPassword("New password"); err != nil {
			return err
		}
		if form.ConfirmPassword, err = app.promptPassword("Confirm new password"); err != nil {
			return err
		}
	}

	if err := app.Forms.Validate(form); err != nil {
		return err
	}

	updated, err := app.API.UpdateProfile(ctx, client.UpdateProfileRequest{
		Name:            form.Name,
		Password:        form.Password,
		OldPassword:     form.OldPassword,
		ConfirmPassword: form.ConfirmPassword,
	})
	if err != nil {
		return err
	}

	next := *user
	if updated != nil {
		next = *updated
	} else {
		next.Name = form.Name
	}

	if err := app.Session.UpdateUserProfile(ctx, next); err != nil {
		return err
	}

	app.println("✓ Profile updated!")
	return nil
}

// NewAvatarCmd creates the avatar command
func NewAvatarCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "avatar <image-file>",
		Short: "Upload a new profile photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAvatar(cmd.Context(), app, args[0])
		},
	}
}

// maxAvatarSize mirrors the limit enforced by the API
const maxAvatarSize = 5 << 20

var errMissingAvatar = errors.New("upload response is missing the avatar")

func runAvatar(ctx context.Context, app *App, path string) error {
	user, err := app.requireUser()
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	if info.Size() > maxAvatarSize {
		return fmt.Errorf("this image is too large. Choose one up to 5MB")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	defer f.Close()

	app.println("Uploading photo...")
	updated, err := app.API.UploadAvatar(ctx, filepath.Base(path), f)
	if err != nil {
		return err
	}
	if updated == nil || updated.Avatar == "" {
		return &client.TransportError{
			Method: http.MethodPatch,
			Path:   "/users/avatar",
			Err:    errMissingAvatar,
		}
	}

	next := *user
	next.Avatar = updated.Avatar
	if err := app.Session.UpdateUserProfile(ctx, next); err != nil {
		return err
	}

	app.println("✓ Photo updated!")
	app.printf("  %s\n", app.API.AvatarURL(next.Avatar))
	return nil
}
