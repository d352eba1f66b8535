package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewGroupsCmd creates the groups command
func NewGroupsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List muscle groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireUser(); err != nil {
				return err
			}

			groups, err := app.API.Groups(cmd.Context())
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				app.println("No groups found.")
				return nil
			}
			for _, g := range groups {
				app.println(g)
			}
			return nil
		},
	}
}

// NewExercisesCmd creates the exercises command
func NewExercisesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "exercises [group]",
		Aliases: []string{"ls"},
		Short:   "List exercises of a muscle group",
		Long:    "List exercises of a muscle group. Without a group, the first group returned by the API is used.",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group := ""
			if len(args) == 1 {
				group = args[0]
			}
			return runExercises(cmd.Context(), app, group)
		},
	}
}

func runExercises(ctx context.Context, app *App, group string) error {
	if _, err := app.requireUser(); err != nil {
		return err
	}

	if group == "" {
		groups, err := app.API.Groups(ctx)
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			app.println("No groups found.")
			return nil
		}
		group = groups[0]
	}

	exercises, err := app.API.ExercisesByGroup(ctx, group)
	if err != nil {
		return err
	}

	if len(exercises) == 0 {
		app.printf("No exercises found for %s.\n", group)
		return nil
	}

	app.printf("Exercises (%s): %d\n\n", group, len(exercises))

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSERIES\tREPETITIONS")
	fmt.Fprintln(w, "──\t────\t──────\t───────────")
	for _, e := range exercises {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", e.ID, e.Name, e.Series, e.Repetitions)
	}
	w.Flush()

	app.println("\nMark one as done with: gym done <id>")
	return nil
}

// NewExerciseCmd creates the exercise command
func NewExerciseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "exercise <id>",
		Short: "Show an exercise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireUser(); err != nil {
				return err
			}

			e, err := app.API.Exercise(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			app.printf("%s\n", e.Name)
			app.printf("  Group:       %s\n", e.Group)
			app.printf("  Series:      %d\n", e.Series)
			app.printf("  Repetitions: %d\n", e.Repetitions)
			if e.Demo != "" {
				app.printf("  Demo:        %s\n", app.API.DemoURL(e.Demo))
			}
			if e.Thumb != "" {
				app.printf("  Thumb:       %s\n", app.API.ThumbURL(e.Thumb))
			}
			return nil
		},
	}
}

// NewDoneCmd creates the done command
func NewDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <exercise-id>",
		Short: "Register an exercise as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireUser(); err != nil {
				return err
			}

			if err := app.API.RegisterHistory(cmd.Context(), args[0]); err != nil {
				return err
			}

			app.println("✓ Congratulations! Exercise registered in your history.")
			return nil
		},
	}
}
