package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
)

func summaryCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the monthly summary",
		Long:  `Show income, expenses, balances and the per-category, per-card and per-person breakdowns of one month.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			y, m, err := app.month(cmd)
			if err != nil {
				return err
			}
			s, err := app.aggregator.MonthSummary(cmd.Context(), app.userID, y, m)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			writeTitle(out, "Summary %s", monthLabel(s.Window))

			w := newTable(out)
			fmt.Fprintf(w, "Income\t%s\n", money(s.Income))
			fmt.Fprintf(w, "Account expenses\t%s\n", money(s.AccountExpense))
			fmt.Fprintf(w, "Card purchases\t%s\n", money(s.CardTotal))
			fmt.Fprintf(w, "Total expenses\t%s\n", money(s.TotalExpense))
			fmt.Fprintf(w, "Bank balance\t%s\n", money(s.BankBalance))
			fmt.Fprintf(w, "Owed by others\t%s\n", money(s.ThirdPartyTotal))
			fmt.Fprintf(w, "Personal expenses\t%s\n", money(s.PersonalExpense))
			fmt.Fprintf(w, "Personal balance\t%s\n", money(s.PersonalBalance))
			if err := w.Flush(); err != nil {
				return err
			}

			if len(s.ExpenseByCategory) > 0 {
				fmt.Fprintln(out)
				writeTitle(out, "Expenses by category")
				w = newTable(out)
				writeHeader(w, "ID", "Category", "Total")
				for _, c := range s.ExpenseByCategory {
					id := strconv.FormatInt(c.CategoryID, 10)
					if c.IsCards || c.CategoryID == 0 {
						id = "-"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", id, c.Name, money(c.Total))
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}

			if len(s.IncomeByCategory) > 0 {
				fmt.Fprintln(out)
				writeTitle(out, "Income by category")
				w = newTable(out)
				writeHeader(w, "ID", "Category", "Total")
				for _, c := range s.IncomeByCategory {
					fmt.Fprintf(w, "%d\t%s\t%s\n", c.CategoryID, c.Name, money(c.Total))
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}

			if len(s.Cards) > 0 {
				fmt.Fprintln(out)
				writeCardTotals(cmd, s.Cards)
			}
			if len(s.ThirdParties) > 0 {
				fmt.Fprintln(out)
				writeThirdPartyTotals(cmd, s.ThirdParties)
			}
			return nil
		},
	}
	addMonthFlag(cmd)
	return cmd
}

func writeCardTotals(cmd *cobra.Command, cards []core.CardTotal) {
	out := cmd.OutOrStdout()
	writeTitle(out, "Cards")
	w := newTable(out)
	writeHeader(w, "ID", "Card", "Total", "Status")
	for _, c := range cards {
		status := successStyle.Render("paid")
		if c.Pending() {
			status = warnStyle.Render(fmt.Sprintf("%d open", c.Unpaid))
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.Card.ID, c.Card.Label(), money(c.Total), status)
	}
	w.Flush()
}

func writeThirdPartyTotals(cmd *cobra.Command, parties []core.ThirdPartyTotal) {
	out := cmd.OutOrStdout()
	writeTitle(out, "Owed by others")
	w := newTable(out)
	writeHeader(w, "ID", "Person", "Total")
	for _, p := range parties {
		fmt.Fprintf(w, "%d\t%s\t%s\n", p.ThirdParty.ID, p.ThirdParty.Label(), money(p.Total))
	}
	w.Flush()
}

func writePurchases(cmd *cobra.Command, ps []core.CardPurchase) error {
	w := newTable(cmd.OutOrStdout())
	writeHeader(w, "ID", "Date", "Description", "Amount", "Status")
	for _, p := range ps {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Date, p.Description, money(p.Amount), paidMark(p.Paid))
	}
	return w.Flush()
}

func writeTransactions(cmd *cobra.Command, txs []core.Transaction) error {
	w := newTable(cmd.OutOrStdout())
	writeHeader(w, "ID", "Date", "Description", "Kind", "Cost", "Amount", "Status")
	for _, t := range txs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Date, t.Description, t.Kind, t.CostType, money(t.Amount), paidMark(t.Paid))
	}
	return w.Flush()
}

func cardsCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Show card totals for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			y, m, err := app.month(cmd)
			if err != nil {
				return err
			}
			s, err := app.aggregator.MonthSummary(cmd.Context(), app.userID, y, m)
			if err != nil {
				return err
			}
			if len(s.Cards) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("No card purchases in "+monthLabel(s.Window)))
				return nil
			}
			writeCardTotals(cmd, s.Cards)
			return nil
		},
	}
	addMonthFlag(cmd)
	cmd.AddCommand(cardBillCmd(app))
	return cmd
}

func cardBillCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bill <card-id>",
		Short: "List the purchases on one card bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			win, err := app.monthWindow(cmd)
			if err != nil {
				return err
			}
			bill, err := app.aggregator.CardBill(cmd.Context(), app.userID, id, win)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			writeTitle(out, "%s %s, due day %d", bill.Card.Label(), monthLabel(win), bill.Card.DueDay)
			if err := writePurchases(cmd, bill.Purchases); err != nil {
				return err
			}
			fmt.Fprintf(out, "Total: %s (%d open)\n", money(bill.Total), bill.Unpaid)
			return nil
		},
	}
	addMonthFlag(cmd)
	return cmd
}

func peopleCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "people",
		Short: "Show what other people owe for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			y, m, err := app.month(cmd)
			if err != nil {
				return err
			}
			s, err := app.aggregator.MonthSummary(cmd.Context(), app.userID, y, m)
			if err != nil {
				return err
			}
			if len(s.ThirdParties) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Nobody owes anything in "+monthLabel(s.Window)))
				return nil
			}
			writeThirdPartyTotals(cmd, s.ThirdParties)
			return nil
		},
	}
	addMonthFlag(cmd)
	cmd.AddCommand(peopleShowCmd(app))
	return cmd
}

func peopleShowCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <person-id>",
		Short: "Show the statement of one person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			win, err := app.monthWindow(cmd)
			if err != nil {
				return err
			}
			st, err := app.aggregator.ThirdPartyStatement(cmd.Context(), app.userID, id, win)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			writeTitle(out, "%s %s", st.ThirdParty.Label(), monthLabel(win))
			if err := writePurchases(cmd, st.Purchases); err != nil {
				return err
			}
			fmt.Fprintf(out, "Month: %s\nAll time: %s\n", money(st.WindowTotal), money(st.AllTime))
			return nil
		},
	}
	addMonthFlag(cmd)
	return cmd
}

func personalCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "personal",
		Short: "List personal expenses of a month",
		Long:  `List account expenses and the card purchases made for yourself, leaving out purchases made for others.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			win, err := app.monthWindow(cmd)
			if err != nil {
				return err
			}
			pe, err := app.aggregator.PersonalExpenses(cmd.Context(), app.userID, win)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			writeTitle(out, "Account expenses %s", monthLabel(win))
			if err := writeTransactions(cmd, pe.Transactions); err != nil {
				return err
			}
			fmt.Fprintln(out)
			writeTitle(out, "Own card purchases")
			if err := writePurchases(cmd, pe.Purchases); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nAccount: %s\nCards: %s\nTotal: %s\n", money(pe.AccountTotal), money(pe.CardTotal), money(pe.Total))
			return nil
		},
	}
	addMonthFlag(cmd)
	return cmd
}

func categoryCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category <category-id>",
		Short: "List the entries of one category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			win, err := app.monthWindow(cmd)
			if err != nil {
				return err
			}
			d, err := app.aggregator.CategoryDetail(cmd.Context(), app.userID, id, win)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			writeTitle(out, "%s %s", d.Category.Name, monthLabel(win))
			if err := writeTransactions(cmd, d.Transactions); err != nil {
				return err
			}
			fmt.Fprintf(out, "Total: %s (%d open)\n", money(d.Total), d.Unpaid)
			return nil
		},
	}
	addMonthFlag(cmd)
	return cmd
}
