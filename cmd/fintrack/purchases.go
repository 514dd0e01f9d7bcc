package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func purchaseCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "purchase",
		Aliases: []string{"purchases"},
		Short:   "Record and manage credit card purchases",
	}
	cmd.AddCommand(addPurchaseCmd(app))
	cmd.AddCommand(editPurchaseCmd(app))
	cmd.AddCommand(deletePurchaseCmd(app))
	return cmd
}

func addPurchaseCmd(app *application) *cobra.Command {
	var (
		cardID       int64
		desc         string
		amount       string
		date         string
		installments int
		forID        int64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a card purchase, split into installments when asked",
		Example: `  fintrack purchase add --card 1 --desc "TV" --amount 1200,00 --installments 3
  fintrack purchase add --card 1 --desc "Dinner" --amount 80 --for 2`,
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
			rows, err := app.engine.Record(cmd.Context(), services.PurchaseRequest{
				UserID:        app.userID,
				CardID:        cardID,
				Description:   desc,
				Amount:        amt,
				Date:          d,
				IsInstallment: cmd.Flags().Changed("installments"),
				Installments:  installments,
				IsThirdParty:  forID != 0,
				ThirdPartyID:  forID,
			})
			if err != nil {
				return err
			}
			if app.logger != nil {
				fields := log.NewFields().WithOperation(log.OpCreate).WithUser(app.userID).WithPurchase(desc, amt, cardID, len(rows))
				app.logger.DebugContext(cmd.Context(), "Purchase submitted", fields.ToSlice()...)
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Recorded %d row(s)", len(rows))))
			return writePurchases(cmd, rows)
		},
	}

	cmd.Flags().Int64Var(&cardID, "card", 0, "card id (required)")
	cmd.Flags().StringVar(&desc, "desc", "", "description (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "total amount, e.g. 1200.50 or 1.200,50 (required)")
	cmd.Flags().StringVar(&date, "date", "", "purchase date YYYY-MM-DD (default: today)")
	cmd.Flags().IntVarP(&installments, "installments", "n", 1, "number of monthly installments")
	cmd.Flags().Int64Var(&forID, "for", 0, "id of the person the purchase was made for")
	_ = cmd.MarkFlagRequired("card")
	_ = cmd.MarkFlagRequired("desc")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func editPurchaseCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <purchase-id>",
		Short: "Edit one purchase row",
		Long:  `Edit one stored purchase row. Installment rows are edited one at a time; the change never fans out.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := app.store.GetPurchase(cmd.Context(), app.userID, id)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("card") {
				p.CardID, _ = flags.GetInt64("card")
			}
			if flags.Changed("desc") {
				p.Description, _ = flags.GetString("desc")
			}
			if flags.Changed("amount") {
				s, _ := flags.GetString("amount")
				if p.Amount, err = core.ParseAmount(s); err != nil {
					return err
				}
			}
			if flags.Changed("date") {
				s, _ := flags.GetString("date")
				if p.Date, err = core.ParseDate(s); err != nil {
					return err
				}
			}
			if flags.Changed("for") {
				p.ThirdPartyID, _ = flags.GetInt64("for")
				p.IsThirdParty = p.ThirdPartyID != 0
			}
			if flags.Changed("paid") {
				p.Paid, _ = flags.GetBool("paid")
			}

			updated, err := app.engine.Update(cmd.Context(), app.userID, p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Purchase updated"))
			return writePurchases(cmd, []core.CardPurchase{updated})
		},
	}

	cmd.Flags().Int64("card", 0, "move to another card")
	cmd.Flags().String("desc", "", "new description")
	cmd.Flags().String("amount", "", "new amount of this row")
	cmd.Flags().String("date", "", "new date YYYY-MM-DD")
	cmd.Flags().Int64("for", 0, "person id, 0 to clear")
	cmd.Flags().Bool("paid", false, "mark the row as paid")
	return cmd
}

func deletePurchaseCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <purchase-id>",
		Short: "Delete one purchase row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.engine.Delete(cmd.Context(), app.userID, id); err != nil {
				if errors.Is(err, core.ErrNotFound) {
					return fmt.Errorf("purchase %d not found", id)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Purchase %d deleted", id)))
			return nil
		},
	}
}
