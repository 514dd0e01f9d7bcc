package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
)

// defaultParallelism bounds concurrent user exports during a refresh.
const defaultParallelism = 4

// ExportWorker rebuilds month reports from the ledger and hands them to a
// report writer.
type ExportWorker struct {
	users       services.CatalogStore
	aggregator  *services.Aggregator
	goals       *services.GoalEngine
	writer      sheets.ReportWriter
	clock       core.Clock
	parallelism int
}

func NewExportWorker(store services.Store, writer sheets.ReportWriter, clock core.Clock) *ExportWorker {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &ExportWorker{
		users:       store,
		aggregator:  services.NewAggregator(store),
		goals:       services.NewGoalEngine(store, clock, nil),
		writer:      writer,
		clock:       clock,
		parallelism: defaultParallelism,
	}
}

// SetParallelism changes how many users RefreshAll exports at once.
func (w *ExportWorker) SetParallelism(n int) {
	if n > 0 {
		w.parallelism = n
	}
}

// HandleLedgerEvent processes one ledger change delivered over AMQP.
func (w *ExportWorker) HandleLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"id", ev.ID,
		"user_id", ev.UserID,
		"reason", ev.Reason,
		"year", ev.Year,
		"month", ev.Month)

	if err := w.ExportMonth(ctx, ev.UserID, ev.Year, ev.Month); err != nil {
		return fmt.Errorf("export month report: %w", err)
	}
	return nil
}

// ExportMonth writes the report of one user and month. Goal progress is
// relative to today, so it is only attached to the current month's report.
func (w *ExportWorker) ExportMonth(ctx context.Context, userID int64, year, month int) error {
	summary, err := w.aggregator.MonthSummary(ctx, userID, year, month)
	if err != nil {
		return fmt.Errorf("month summary: %w", err)
	}

	report := sheets.MonthReport{
		UserID:      userID,
		Year:        year,
		Month:       month,
		Summary:     summary,
		GeneratedAt: time.Now().UTC(),
	}

	today := w.clock.Today()
	if today.Year() == year && today.Month() == month {
		if report.Goals, err = w.goals.Report(ctx, userID); err != nil {
			return fmt.Errorf("goal report: %w", err)
		}
	}

	if err := w.writer.WriteMonthReport(ctx, report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	slog.InfoContext(ctx, "Exported month report",
		"user_id", userID,
		"year", year,
		"month", month,
		"goals", len(report.Goals),
		"total_expense_cents", summary.TotalExpense.Cents)
	return nil
}

// RefreshAll exports the current month of every known user. It is the
// backup path for events lost while the worker was down. Every user is
// attempted; the first failure is returned after all have finished.
func (w *ExportWorker) RefreshAll(ctx context.Context) (int, error) {
	users, err := w.users.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		slog.InfoContext(ctx, "No users to refresh")
		return 0, nil
	}

	today := w.clock.Today()
	var exported atomic.Int64

	var g errgroup.Group
	g.SetLimit(w.parallelism)
	for _, userID := range users {
		g.Go(func() error {
			if err := w.ExportMonth(ctx, userID, today.Year(), today.Month()); err != nil {
				slog.ErrorContext(ctx, "Failed to refresh user report",
					"user_id", userID,
					"error", err)
				return fmt.Errorf("user %d: %w", userID, err)
			}
			exported.Add(1)
			return nil
		})
	}
	err = g.Wait()

	slog.InfoContext(ctx, "Report refresh completed",
		"users", len(users),
		"exported", exported.Load(),
		"errors", int64(len(users))-exported.Load())

	return int(exported.Load()), err
}

// RunRefresh calls RefreshAll immediately and then on every interval until
// ctx is cancelled. Refresh failures are logged, never returned.
func (w *ExportWorker) RunRefresh(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid refresh interval: %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := w.RefreshAll(ctx); err != nil {
			slog.WarnContext(ctx, "Report refresh finished with errors", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
