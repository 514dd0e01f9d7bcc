package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
)

// CopyStatus summarizes a copy run.
type CopyStatus string

const (
	// CopyCreated means at least one entry was copied.
	CopyCreated CopyStatus = "created"
	// CopyNothingToCopy means the source month has no fixed entries.
	CopyNothingToCopy CopyStatus = "nothing_to_copy"
	// CopyUpToDate means every source entry already exists in the target month.
	CopyUpToDate CopyStatus = "up_to_date"
)

// CopyResult reports what a copy run did.
type CopyResult struct {
	Kind    core.CategoryKind
	Source  core.Window
	Target  core.Window
	Found   int
	Created int
	Status  CopyStatus
}

// RecurrenceCopier carries fixed-cost entries over from the previous month.
type RecurrenceCopier struct {
	store  Store
	events EventPublisher
}

func NewRecurrenceCopier(store Store, events EventPublisher) *RecurrenceCopier {
	return &RecurrenceCopier{store: store, events: events}
}

// CopyFixed copies the user's fixed entries of the given kind from the month
// before target into target's month. An entry is skipped when the target
// month already holds one with the same description, amount and kind. The
// copy keeps the day of month, clamped to the target month.
func (c *RecurrenceCopier) CopyFixed(ctx context.Context, userID int64, kind core.CategoryKind, target core.Date) (CopyResult, error) {
	if err := kind.Validate(); err != nil {
		return CopyResult{}, err
	}
	targetStart := target.MonthStart()
	sourceStart := targetStart.AddMonths(-1)
	res := CopyResult{
		Kind:   kind,
		Source: core.MonthWindow(sourceStart.Year(), sourceStart.Month()),
		Target: core.MonthWindow(targetStart.Year(), targetStart.Month()),
	}

	sources, err := c.store.ListTransactions(ctx, core.TransactionQuery{
		UserID:   userID,
		Window:   res.Source,
		Kind:     kind,
		CostType: core.Fixed,
	})
	if err != nil {
		return res, fmt.Errorf("list fixed entries: %w", err)
	}
	res.Found = len(sources)
	if len(sources) == 0 {
		res.Status = CopyNothingToCopy
		return res, nil
	}

	type key struct {
		desc  string
		cents int64
	}
	batched := map[key]struct{}{}
	note := fmt.Sprintf("Copied from %02d/%04d", sourceStart.Month(), sourceStart.Year())

	var copies []core.Transaction
	for _, src := range sources {
		k := key{src.Description, src.Amount.Cents}
		if _, ok := batched[k]; ok {
			continue
		}
		exists, err := c.store.TransactionExists(ctx, core.TransactionMatch{
			UserID:      userID,
			Window:      res.Target,
			Kind:        kind,
			Description: src.Description,
			Amount:      src.Amount,
		})
		if err != nil {
			return res, fmt.Errorf("check duplicate: %w", err)
		}
		if exists {
			continue
		}
		batched[k] = struct{}{}
		copies = append(copies, core.Transaction{
			UserID:      userID,
			CategoryID:  src.CategoryID,
			Kind:        src.Kind,
			Description: src.Description,
			Amount:      src.Amount,
			Date:        core.ClampedDate(targetStart.Year(), targetStart.Month(), src.Date.Day()),
			CostType:    core.Fixed,
			Note:        note,
		})
	}

	if len(copies) == 0 {
		res.Status = CopyUpToDate
		slog.InfoContext(ctx, "Fixed entries already copied",
			"user_id", userID,
			"kind", kind,
			"year", targetStart.Year(),
			"month", targetStart.Month())
		return res, nil
	}

	created, err := c.store.CreateTransactions(ctx, copies)
	if err != nil {
		return res, fmt.Errorf("create copies: %w", err)
	}
	res.Created = len(created)
	res.Status = CopyCreated

	slog.InfoContext(ctx, "Fixed entries copied",
		"user_id", userID,
		"kind", kind,
		"found", res.Found,
		"created", res.Created,
		"year", targetStart.Year(),
		"month", targetStart.Month())

	publishMonths(ctx, c.events, userID, ReasonFixedCopied, targetStart)
	return res, nil
}

// CopyAllFixed runs CopyFixed for expenses and then income.
func (c *RecurrenceCopier) CopyAllFixed(ctx context.Context, userID int64, target core.Date) ([]CopyResult, error) {
	var out []CopyResult
	for _, kind := range []core.CategoryKind{core.Expense, core.Income} {
		res, err := c.CopyFixed(ctx, userID, kind, target)
		if err != nil {
			return out, fmt.Errorf("copy %s: %w", kind, err)
		}
		out = append(out, res)
	}
	return out, nil
}
