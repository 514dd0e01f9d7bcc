package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
)

func txCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transaction", "transactions"},
		Short:   "Record and manage account income and expenses",
	}
	cmd.AddCommand(addTxCmd(app))
	cmd.AddCommand(listTxCmd(app))
	cmd.AddCommand(editTxCmd(app))
	cmd.AddCommand(deleteTxCmd(app))
	return cmd
}

func costType(fixed bool) core.CostType {
	if fixed {
		return core.Fixed
	}
	return core.Variable
}

func addTxCmd(app *application) *cobra.Command {
	var (
		kind       string
		categoryID int64
		desc       string
		amount     string
		date       string
		fixed      bool
		note       string
		paid       bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income or expense entry",
		Long: `Record an account entry. A categorized entry takes its kind from the
category; --kind is only needed for uncategorized entries.`,
		Example: `  fintrack tx add --category 3 --desc Rent --amount 1500 --fixed
  fintrack tx add --kind income --desc Bonus --amount 800`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amt, err := core.ParseAmount(amount)
			if err != nil {
				return err
			}
			d, err := parseDate(date, app.today())
			if err != nil {
				return err
			}
			k := core.Expense
			if kind != "" {
				if k, err = parseKind(kind); err != nil {
					return err
				}
			}
			t, err := app.ledger.Record(cmd.Context(), core.Transaction{
				UserID:      app.userID,
				CategoryID:  categoryID,
				Kind:        k,
				Description: desc,
				Amount:      amt,
				Date:        d,
				CostType:    costType(fixed),
				Note:        note,
				Paid:        paid,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Recorded entry %d", t.ID)))
			return writeTransactions(cmd, []core.Transaction{t})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "income or expense (default: expense, ignored with --category)")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "category id")
	cmd.Flags().StringVar(&desc, "desc", "", "description (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount (required)")
	cmd.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD (default: today)")
	cmd.Flags().BoolVar(&fixed, "fixed", false, "fixed cost, copied to the next month by copy-fixed")
	cmd.Flags().StringVar(&note, "note", "", "free text note")
	cmd.Flags().BoolVar(&paid, "paid", false, "already paid")
	_ = cmd.MarkFlagRequired("desc")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func listTxCmd(app *application) *cobra.Command {
	var (
		kind       string
		categoryID int64
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the entries of a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			win, err := app.monthWindow(cmd)
			if err != nil {
				return err
			}
			q := core.TransactionQuery{UserID: app.userID, Window: win, CategoryID: categoryID}
			if kind != "" {
				if q.Kind, err = parseKind(kind); err != nil {
					return err
				}
			}
			txs, err := app.ledger.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			if len(txs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("No entries in "+monthLabel(win)))
				return nil
			}
			return writeTransactions(cmd, txs)
		},
	}
	addMonthFlag(cmd)
	cmd.Flags().StringVar(&kind, "kind", "", "only income or expense")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "only this category")
	return cmd
}

func editTxCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <entry-id>",
		Short: "Edit an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := app.ledger.Get(cmd.Context(), app.userID, id)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("category") {
				t.CategoryID, _ = flags.GetInt64("category")
			}
			if flags.Changed("kind") {
				s, _ := flags.GetString("kind")
				if t.Kind, err = parseKind(s); err != nil {
					return err
				}
			}
			if flags.Changed("desc") {
				t.Description, _ = flags.GetString("desc")
			}
			if flags.Changed("amount") {
				s, _ := flags.GetString("amount")
				if t.Amount, err = core.ParseAmount(s); err != nil {
					return err
				}
			}
			if flags.Changed("date") {
				s, _ := flags.GetString("date")
				if t.Date, err = core.ParseDate(s); err != nil {
					return err
				}
			}
			if flags.Changed("fixed") {
				fixed, _ := flags.GetBool("fixed")
				t.CostType = costType(fixed)
			}
			if flags.Changed("note") {
				t.Note, _ = flags.GetString("note")
			}
			if flags.Changed("paid") {
				t.Paid, _ = flags.GetBool("paid")
			}

			if err := app.ledger.Update(cmd.Context(), t); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Entry %d updated", id)))
			return nil
		},
	}

	cmd.Flags().Int64("category", 0, "category id, 0 for uncategorized")
	cmd.Flags().String("kind", "", "income or expense for uncategorized entries")
	cmd.Flags().String("desc", "", "new description")
	cmd.Flags().String("amount", "", "new amount")
	cmd.Flags().String("date", "", "new date YYYY-MM-DD")
	cmd.Flags().Bool("fixed", false, "fixed (true) or variable (false) cost")
	cmd.Flags().String("note", "", "new note")
	cmd.Flags().Bool("paid", false, "paid status")
	return cmd
}

func deleteTxCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entry-id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.ledger.Delete(cmd.Context(), app.userID, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Entry %d deleted", id)))
			return nil
		},
	}
}
