package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fintrack/internal/core"
)

// RecurringProcessorConfig holds configuration for the recurring processor
type RecurringProcessorConfig struct {
	// Interval is how often every user's fixed entries are copied (default: 1h)
	Interval time.Duration
}

// DefaultRecurringProcessorConfig returns sensible defaults
func DefaultRecurringProcessorConfig() RecurringProcessorConfig {
	return RecurringProcessorConfig{
		Interval: time.Hour,
	}
}

// RecurringProcessor periodically carries fixed entries of every user into
// the current month.
type RecurringProcessor struct {
	store  CatalogStore
	copier *RecurrenceCopier
	clock  core.Clock
	config RecurringProcessorConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewRecurringProcessor creates a new recurring processor
func NewRecurringProcessor(store CatalogStore, copier *RecurrenceCopier, clock core.Clock, config RecurringProcessorConfig) *RecurringProcessor {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &RecurringProcessor{
		store:  store,
		copier: copier,
		clock:  clock,
		config: config,
	}
}

// ProcessAll copies fixed income and expenses for every user into the
// clock's current month. A failing user is logged and skipped. Returns the
// number of entries created.
func (p *RecurringProcessor) ProcessAll(ctx context.Context) (int, error) {
	if p.store == nil || p.copier == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	users, err := p.store.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	today := p.clock.Today()
	created := 0
	for _, userID := range users {
		results, err := p.copier.CopyAllFixed(ctx, userID, today)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to copy fixed entries",
				"user_id", userID,
				"error", err)
			continue
		}
		for _, r := range results {
			created += r.Created
		}
	}

	slog.InfoContext(ctx, "Recurring processing complete",
		"users", len(users),
		"created", created,
		"year", today.Year(),
		"month", today.Month())

	return created, nil
}

// Start begins the processing loop. Returns an error if already running.
func (p *RecurringProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("recurring processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Recurring processor started", "interval", p.config.Interval)
	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *RecurringProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Recurring processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Recurring processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running
func (p *RecurringProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *RecurringProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	// Process immediately on startup
	p.tick(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *RecurringProcessor) tick(ctx context.Context) {
	if _, err := p.ProcessAll(ctx); err != nil {
		slog.ErrorContext(ctx, "Recurring processing failed", "error", err)
	}
}
