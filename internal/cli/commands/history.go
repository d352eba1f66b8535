package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show completed exercises grouped by day",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireUser(); err != nil {
				return err
			}

			days, err := app.API.History(cmd.Context())
			if err != nil {
				return err
			}

			if len(days) == 0 {
				app.println("No exercises registered yet.")
				app.println("\nLet's train today? Register one with: gym done <id>")
				return nil
			}

			for i, day := range days {
				if i > 0 {
					app.println()
				}
				app.println(day.Title)

				w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
				for _, entry := range day.Data {
					fmt.Fprintf(w, "  %s\t%s\t%s\n", entry.Hour, entry.Group, entry.Name)
				}
				w.Flush()
			}
			return nil
		},
	}
}
