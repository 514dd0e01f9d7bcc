package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/statement"
)

func copyFixedCmd(app *application) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "copy-fixed",
		Short: "Copy last month's fixed entries into a month",
		Long: `Copy the fixed income and expense entries of the previous month into the
given month. Entries already present with the same description, amount and
kind are skipped, so running it twice copies nothing the second time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			y, m, err := app.month(cmd)
			if err != nil {
				return err
			}
			target := core.NewDate(y, m, 1)

			var results []services.CopyResult
			switch strings.ToLower(kind) {
			case "", "all":
				results, err = app.copier.CopyAllFixed(cmd.Context(), app.userID, target)
			default:
				k, kerr := parseKind(kind)
				if kerr != nil {
					return kerr
				}
				var r services.CopyResult
				r, err = app.copier.CopyFixed(cmd.Context(), app.userID, k, target)
				results = []services.CopyResult{r}
			}
			if err != nil {
				return err
			}

			w := newTable(cmd.OutOrStdout())
			writeHeader(w, "Kind", "From", "Found", "Created", "Status")
			for _, r := range results {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", r.Kind, monthLabel(r.Source), r.Found, r.Created, r.Status)
			}
			return w.Flush()
		},
	}
	addMonthFlag(cmd)
	cmd.Flags().StringVar(&kind, "kind", "all", "income, expense or all")
	return cmd
}

func payCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Mark a card bill or a category as paid for a month",
	}

	toggle := func(use, short string, set func(cmd *cobra.Command, id int64, y, m int, paid bool) (int64, error)) *cobra.Command {
		c := &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				y, m, err := app.month(cmd)
				if err != nil {
					return err
				}
				undo, _ := cmd.Flags().GetBool("undo")
				n, err := set(cmd, id, y, m, !undo)
				if err != nil {
					return err
				}
				state := "paid"
				if undo {
					state = "open"
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("%d row(s) marked %s", n, state)))
				return nil
			},
		}
		addMonthFlag(c)
		c.Flags().Bool("undo", false, "mark as not paid")
		return c
	}

	cmd.AddCommand(toggle("card <card-id>", "Toggle every purchase on a card bill", func(cmd *cobra.Command, id int64, y, m int, paid bool) (int64, error) {
		return app.ledger.SetCardBillPaid(cmd.Context(), app.userID, id, y, m, paid)
	}))
	cmd.AddCommand(toggle("category <category-id>", "Toggle every entry of a category", func(cmd *cobra.Command, id int64, y, m int, paid bool) (int64, error) {
		return app.ledger.SetCategoryPaid(cmd.Context(), app.userID, id, y, m, paid)
	}))
	return cmd
}

func importCmd(app *application) *cobra.Command {
	var cardID int64

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a card statement (CSV or OFX)",
		Long: `Import the lines of a card statement as simple purchases on one card.
Every line is moved into the chosen month, keeping its day. Lines without a
description or with a zero amount are skipped.`,
		Example: `  fintrack import fatura.csv --card 1 -m 2024-05
  fintrack import statement.ofx --card 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			y, m, err := app.month(cmd)
			if err != nil {
				return err
			}

			start := time.Now()
			lines, err := statement.ParseFile(ctx, args[0])
			if err != nil {
				return err
			}
			res, err := app.importer.Import(ctx, app.userID, cardID, y, m, lines)
			if err != nil {
				return err
			}

			if app.logger != nil {
				fields := log.NewFields().
					WithOperation(log.OpImport).
					WithUser(app.userID).
					WithMonth(y, m)
				kv := append(fields.ToSlice(),
					log.FieldCardID, cardID,
					log.FieldCount, len(res.Imported),
					log.FieldDuration, time.Since(start).Milliseconds())
				app.logger.WithComponent(log.ComponentImport).InfoContext(ctx, "Statement file imported", kv...)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("Imported %d purchase(s) from %s, skipped %d",
				len(res.Imported), filepath.Base(args[0]), res.Skipped)))
			return writePurchases(cmd, res.Imported)
		},
	}
	addMonthFlag(cmd)
	cmd.Flags().Int64Var(&cardID, "card", 0, "card id (required)")
	_ = cmd.MarkFlagRequired("card")
	return cmd
}
