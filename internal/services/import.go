package services

import (
	"context"
	"log/slog"

	"fintrack/internal/core"
)

// ImportResult reports a statement import.
type ImportResult struct {
	Imported []core.CardPurchase
	Skipped  int
}

// Importer records statement lines as simple card purchases.
type Importer struct {
	engine *InstallmentEngine
	events EventPublisher
}

func NewImporter(engine *InstallmentEngine, events EventPublisher) *Importer {
	return &Importer{engine: engine, events: events}
}

// Import rebases every line onto year/month and stores the valid ones on the
// card in one batch. Lines with an empty description or a zero amount are
// skipped.
func (i *Importer) Import(ctx context.Context, userID, cardID int64, year, month int, lines []core.StatementLine) (ImportResult, error) {
	if month < 1 || month > 12 {
		return ImportResult{}, &core.ValidationError{Field: "month", Err: core.ErrInvalidMonth}
	}
	var res ImportResult
	var ps []core.CardPurchase
	for _, l := range lines {
		l = l.Normalize().Rebase(year, month)
		p := core.CardPurchase{
			CardID:           cardID,
			Description:      l.Description,
			Amount:           l.Amount,
			Date:             l.Date,
			InstallmentCount: 1,
		}
		if err := p.Validate(); err != nil {
			slog.DebugContext(ctx, "Skipping statement line", "description", l.Description, "error", err)
			res.Skipped++
			continue
		}
		ps = append(ps, p)
	}

	created, err := i.engine.RecordBatch(ctx, userID, cardID, ps)
	if err != nil {
		return ImportResult{}, err
	}
	res.Imported = created

	slog.InfoContext(ctx, "Statement imported",
		"user_id", userID,
		"card_id", cardID,
		"imported", len(created),
		"skipped", res.Skipped,
		"year", year,
		"month", month)
	if len(created) > 0 {
		publishMonths(ctx, i.events, userID, ReasonStatementImported, core.NewDate(year, month, 1))
	}
	return res, nil
}
