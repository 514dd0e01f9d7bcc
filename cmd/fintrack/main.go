package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"fintrack/internal/backend"
)

var version = "dev"

func newRootCmd(app *application) *cobra.Command {
	root := &cobra.Command{
		Use:   "fintrack",
		Short: "Household finance tracker",
		Long: `fintrack records income, expenses and credit card purchases, splits
installments across months, carries fixed costs over and tracks budget goals.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  app.setup,
		PersistentPostRunE: app.teardown,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.cfgFile, "config", "", "config file (yaml)")
	flags.Int64("user", 1, "user id the command acts for")
	flags.String("backend", string(backend.SQLiteBackend), fmt.Sprintf("data backend (%s)", strings.Join(backend.GetBackendTypeStrings(), ", ")))
	flags.String("db", "./data/fintrack.db", "SQLite database path")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")

	_ = app.v.BindPFlag("user.id", flags.Lookup("user"))
	_ = app.v.BindPFlag("data.backend", flags.Lookup("backend"))
	_ = app.v.BindPFlag("sqlite.db_path", flags.Lookup("db"))
	_ = app.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = app.v.BindPFlag("logging.format", flags.Lookup("log-format"))

	root.AddCommand(summaryCmd(app))
	root.AddCommand(cardsCmd(app))
	root.AddCommand(peopleCmd(app))
	root.AddCommand(personalCmd(app))
	root.AddCommand(categoryCmd(app))
	root.AddCommand(goalsCmd(app))
	root.AddCommand(purchaseCmd(app))
	root.AddCommand(txCmd(app))
	root.AddCommand(copyFixedCmd(app))
	root.AddCommand(payCmd(app))
	root.AddCommand(importCmd(app))
	root.AddCommand(catalogCmd(app))
	root.AddCommand(versionCmd())

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(newApplication()).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		// no backend needed
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fintrack %s\n", version)
		},
	}
}
