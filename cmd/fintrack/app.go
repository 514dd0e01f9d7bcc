package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// application holds the state shared by every command: configuration, the
// opened backend and the services built on top of it.
type application struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *log.Logger
	clock   core.Clock
	userID  int64
	cleanup backend.CleanupFunc

	store      services.Store
	ledger     *services.Ledger
	engine     *services.InstallmentEngine
	copier     *services.RecurrenceCopier
	aggregator *services.Aggregator
	goals      *services.GoalEngine
	catalog    *services.Catalog
	importer   *services.Importer
}

func newApplication() *application {
	return &application{
		v:     config.NewViper(),
		clock: core.SystemClock{},
	}
}

// wire builds the services over store. events may be nil.
func (a *application) wire(store services.Store, events services.EventPublisher) {
	a.store = store
	a.ledger = services.NewLedger(store, a.clock, events)
	a.engine = services.NewInstallmentEngine(store, events)
	a.copier = services.NewRecurrenceCopier(store, events)
	a.aggregator = services.NewAggregator(store)
	a.goals = services.NewGoalEngine(store, a.clock, events)
	a.catalog = services.NewCatalog(store)
	a.importer = services.NewImporter(a.engine, events)
}

func (a *application) setup(cmd *cobra.Command, _ []string) error {
	// already wired, e.g. by tests
	if a.store != nil {
		return nil
	}
	if err := cli.LoadEnvFile(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	a.cfg = config.FromViper(a.v)
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	a.logger = cli.SetupLoggerOutput(a.cfg, log.ComponentCLI, os.Stderr)
	a.userID = a.cfg.UserID

	bc, err := backend.FromAppConfig(a.cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(a.logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(cmd.Context(), bc)
	if err != nil {
		return fmt.Errorf("initialize backend: %w", err)
	}
	a.cleanup = res.Cleanup
	a.wire(res.Store, res.Events)

	a.logger.DebugContext(cmd.Context(), "Backend ready", "backend", bc.Type, log.FieldUserID, a.userID)
	return nil
}

func (a *application) teardown(*cobra.Command, []string) error {
	if a.cleanup == nil {
		return nil
	}
	err := a.cleanup()
	a.cleanup = nil
	return err
}

func (a *application) today() core.Date {
	return a.clock.Today()
}
