package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
)

func goalsCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "goals",
		Aliases: []string{"goal"},
		Short:   "Track budget ceilings and savings targets",
		Long: `Without a subcommand, evaluate every goal against today's period and
list them highest percentage first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGoalReport(cmd, app)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Evaluate and list goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGoalReport(cmd, app)
		},
	})
	cmd.AddCommand(addGoalCmd(app))
	cmd.AddCommand(editGoalCmd(app))
	cmd.AddCommand(deleteGoalCmd(app))
	return cmd
}

func runGoalReport(cmd *cobra.Command, app *application) error {
	report, err := app.goals.Report(cmd.Context(), app.userID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(report) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No goals yet. Use 'fintrack goals add' to create one."))
		return nil
	}
	w := newTable(out)
	writeHeader(w, "ID", "Goal", "Period", "Window", "Actual", "Limit", "%", "Status")
	for _, p := range report {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%.1f%%\t%s\n",
			p.Goal.ID, p.Label, p.Goal.Period, p.Window, money(p.Actual), p.Goal.Limit, p.Percent, statusText(p.Status))
	}
	return w.Flush()
}

func addGoalFlags(cmd *cobra.Command) {
	cmd.Flags().String("kind", "", "category, cards, savings or global")
	cmd.Flags().String("period", string(core.Monthly), "monthly, quarterly, semiannual, annual or custom")
	cmd.Flags().Int64("category", 0, "category id for category goals")
	cmd.Flags().String("limit", "", "ceiling, or target for savings goals")
	cmd.Flags().String("start", "", "first day of a custom period (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "last day of a custom period (YYYY-MM-DD)")
	cmd.Flags().String("label", "", "display label")
}

// applyGoalFlags copies the changed flags onto g.
func applyGoalFlags(cmd *cobra.Command, g *core.Goal) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("kind") {
		s, _ := flags.GetString("kind")
		g.Kind = core.GoalKind(strings.ToLower(strings.TrimSpace(s)))
	}
	if flags.Changed("period") || g.Period == "" {
		s, _ := flags.GetString("period")
		g.Period = core.PeriodType(strings.ToLower(strings.TrimSpace(s)))
	}
	if flags.Changed("category") {
		g.CategoryID, _ = flags.GetInt64("category")
	}
	if flags.Changed("limit") {
		s, _ := flags.GetString("limit")
		if g.Limit, err = core.ParseAmount(s); err != nil {
			return err
		}
	}
	if flags.Changed("start") {
		s, _ := flags.GetString("start")
		if g.Start, err = core.ParseDate(s); err != nil {
			return err
		}
	}
	if flags.Changed("end") {
		s, _ := flags.GetString("end")
		if g.End, err = core.ParseDate(s); err != nil {
			return err
		}
	}
	if flags.Changed("label") {
		s, _ := flags.GetString("label")
		g.Label = strings.TrimSpace(s)
	}
	return nil
}

func addGoalCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a goal",
		Example: `  fintrack goals add --kind cards --limit 2000
  fintrack goals add --kind category --category 3 --period quarterly --limit 4500
  fintrack goals add --kind savings --period custom --start 2024-01-01 --end 2024-06-30 --limit 6000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := core.Goal{UserID: app.userID}
			if err := applyGoalFlags(cmd, &g); err != nil {
				return err
			}
			created, err := app.goals.Create(cmd.Context(), g)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Goal %d created", created.ID)))
			return nil
		},
	}
	addGoalFlags(cmd)
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("limit")
	return cmd
}

func editGoalCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <goal-id>",
		Short: "Edit a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			g, err := app.store.GetGoal(cmd.Context(), app.userID, id)
			if err != nil {
				return err
			}
			if err := applyGoalFlags(cmd, &g); err != nil {
				return err
			}
			if err := app.goals.Update(cmd.Context(), g); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Goal %d updated", id)))
			return nil
		},
	}
	addGoalFlags(cmd)
	return cmd
}

func deleteGoalCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <goal-id>",
		Short: "Delete a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.goals.Delete(cmd.Context(), app.userID, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Goal %d deleted", id)))
			return nil
		},
	}
}
