package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ignite-gym/ignitegym/internal/cli/commands"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the gym command tree around app. The session is opened
// before any command other than version, help and config runs.
func NewRootCmd(app *commands.App) *cobra.Command {
	var apiURL, logLevel string

	rootCmd := &cobra.Command{
		Use:   "gym",
		Short: "Ignite Gym - Track your workouts from the terminal",
		Long: `Ignite Gym CLI - Browse exercises by muscle group and keep a history of
the ones you completed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" || commands.SkipsSession(cmd) {
				return nil
			}
			// Tests hand in an already wired app
			if app.Session != nil {
				return nil
			}
			return app.Bootstrap(cmd.Context(), apiURL, logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides config and IGNITEGYM_API_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gym version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewSignUpCmd(app))
	rootCmd.AddCommand(commands.NewLoginCmd(app))
	rootCmd.AddCommand(commands.NewLogoutCmd(app))
	rootCmd.AddCommand(commands.NewWhoamiCmd(app))
	rootCmd.AddCommand(commands.NewProfileCmd(app))
	rootCmd.AddCommand(commands.NewAvatarCmd(app))
	rootCmd.AddCommand(commands.NewGroupsCmd(app))
	rootCmd.AddCommand(commands.NewExercisesCmd(app))
	rootCmd.AddCommand(commands.NewExerciseCmd(app))
	rootCmd.AddCommand(commands.NewDoneCmd(app))
	rootCmd.AddCommand(commands.NewHistoryCmd(app))
	rootCmd.AddCommand(commands.NewConfigCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	app := &commands.App{}
	defer app.Close()

	if err := NewRootCmd(app).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", commands.UserMessage(err))
		app.Log.Debug().Err(err).Msg("Command failed")
		return err
	}
	return nil
}
