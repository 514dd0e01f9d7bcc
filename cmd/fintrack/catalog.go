package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

func catalogCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage categories, cards and people",
	}
	cmd.AddCommand(listCatalogCmd(app))
	cmd.AddCommand(addCategoryCmd(app))
	cmd.AddCommand(editCategoryCmd(app))
	cmd.AddCommand(addCardCmd(app))
	cmd.AddCommand(editCardCmd(app))
	cmd.AddCommand(addPersonCmd(app))
	cmd.AddCommand(editPersonCmd(app))
	cmd.AddCommand(deleteEntityCmd(app))
	return cmd
}

func listCatalogCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories, cards and people",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			cats, err := app.catalog.Categories(ctx, app.userID, "")
			if err != nil {
				return err
			}
			writeTitle(out, "Categories")
			w := newTable(out)
			writeHeader(w, "ID", "Name", "Kind", "Scope")
			for _, c := range cats {
				scope := "own"
				if c.IsGlobal() {
					scope = mutedStyle.Render("global")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Kind, scope)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			cards, err := app.catalog.Cards(ctx, app.userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			writeTitle(out, "Cards")
			w = newTable(out)
			writeHeader(w, "ID", "Card", "Due day", "Color")
			for _, c := range cards {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", c.ID, c.Label(), c.DueDay, c.Color.Name())
			}
			if err := w.Flush(); err != nil {
				return err
			}

			people, err := app.catalog.ThirdParties(ctx, app.userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			writeTitle(out, "People")
			w = newTable(out)
			writeHeader(w, "ID", "Name", "Relationship")
			for _, p := range people {
				fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, p.Name, p.Relationship)
			}
			return w.Flush()
		},
	}
}

func addCategoryCmd(app *application) *cobra.Command {
	var name, kind string
	cmd := &cobra.Command{
		Use:   "add-category",
		Short: "Create a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}
			c, err := app.catalog.CreateCategory(cmd.Context(), core.Category{UserID: app.userID, Name: name, Kind: k})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Category %d created", c.ID)))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "category name (required)")
	cmd.Flags().StringVar(&kind, "kind", string(core.Expense), "income or expense")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func editCategoryCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit-category <category-id>",
		Short: "Rename a category or change its kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := app.store.GetCategory(cmd.Context(), app.userID, id)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				c.Name, _ = flags.GetString("name")
			}
			if flags.Changed("kind") {
				s, _ := flags.GetString("kind")
				if c.Kind, err = parseKind(s); err != nil {
					return err
				}
			}
			c.UserID = app.userID
			if err := app.catalog.UpdateCategory(cmd.Context(), c); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Category %d updated", id)))
			return nil
		},
	}
	cmd.Flags().String("name", "", "new name")
	cmd.Flags().String("kind", "", "income or expense")
	return cmd
}

func addCardCmd(app *application) *cobra.Command {
	var (
		name, digits, color string
		dueDay              int
	)
	cmd := &cobra.Command{
		Use:     "add-card",
		Short:   "Register a credit card",
		Example: `  fintrack catalog add-card --name Nubank --digits 1234 --due-day 10 --color purple`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			col, err := parseColor(color)
			if err != nil {
				return err
			}
			c, err := app.catalog.CreateCard(cmd.Context(), core.CreditCard{
				UserID: app.userID, Name: name, LastDigits: digits, DueDay: dueDay, Color: col,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Card %d created: %s", c.ID, c.Label())))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "card name (required)")
	cmd.Flags().StringVar(&digits, "digits", "", "last four digits (required)")
	cmd.Flags().IntVar(&dueDay, "due-day", 10, "bill due day (1-31)")
	cmd.Flags().StringVar(&color, "color", "", "purple, orange, red, yellow, blue, black, green or gray")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("digits")
	return cmd
}

func editCardCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit-card <card-id>",
		Short: "Edit a credit card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := app.store.GetCard(cmd.Context(), app.userID, id)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				c.Name, _ = flags.GetString("name")
			}
			if flags.Changed("digits") {
				c.LastDigits, _ = flags.GetString("digits")
			}
			if flags.Changed("due-day") {
				c.DueDay, _ = flags.GetInt("due-day")
			}
			if flags.Changed("color") {
				s, _ := flags.GetString("color")
				if c.Color, err = parseColor(s); err != nil {
					return err
				}
			}
			if err := app.catalog.UpdateCard(cmd.Context(), c); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Card %d updated", id)))
			return nil
		},
	}
	cmd.Flags().String("name", "", "new name")
	cmd.Flags().String("digits", "", "new last four digits")
	cmd.Flags().Int("due-day", 0, "new due day")
	cmd.Flags().String("color", "", "new color")
	return cmd
}

func addPersonCmd(app *application) *cobra.Command {
	var name, relationship string
	cmd := &cobra.Command{
		Use:   "add-person",
		Short: "Register someone you buy things for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := app.catalog.CreateThirdParty(cmd.Context(), core.ThirdParty{
				UserID: app.userID, Name: name, Relationship: relationship,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Person %d created: %s", p.ID, p.Label())))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name (required)")
	cmd.Flags().StringVar(&relationship, "relationship", "", "e.g. sister, friend")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func editPersonCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit-person <person-id>",
		Short: "Edit a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := app.store.GetThirdParty(cmd.Context(), app.userID, id)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				p.Name, _ = flags.GetString("name")
			}
			if flags.Changed("relationship") {
				p.Relationship, _ = flags.GetString("relationship")
			}
			if err := app.catalog.UpdateThirdParty(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Person %d updated", id)))
			return nil
		},
	}
	cmd.Flags().String("name", "", "new name")
	cmd.Flags().String("relationship", "", "new relationship")
	return cmd
}

func deleteEntityCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <category|card|third_party> <id>",
		Short: "Delete a category, card or person",
		Long: `Delete a catalog record. The delete is refused while entries, purchases
or goals still reference the record.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := services.ParseEntityKind(strings.ReplaceAll(args[0], "person", "third_party"))
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			ent, err := app.catalog.Lookup(cmd.Context(), kind, app.userID, id)
			if err != nil {
				return err
			}
			if err := app.catalog.Delete(cmd.Context(), kind, app.userID, id); err != nil {
				var ie *core.IntegrityError
				if errors.As(err, &ie) {
					return fmt.Errorf("cannot delete %s: %s", ent.Label, ie.Reason)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Deleted %s %s", ent.Noun, ent.Label)))
			return nil
		},
	}
}
