package services

import (
	"context"
	"log/slog"

	"fintrack/internal/core"
)

// Reasons attached to ledger change events.
const (
	ReasonPurchaseRecorded   = "purchase_recorded"
	ReasonPurchaseUpdated    = "purchase_updated"
	ReasonPurchaseDeleted    = "purchase_deleted"
	ReasonTransactionSaved   = "transaction_saved"
	ReasonTransactionDeleted = "transaction_deleted"
	ReasonFixedCopied        = "fixed_copied"
	ReasonStatementImported  = "statement_imported"
	ReasonPaymentToggled     = "payment_toggled"
	ReasonGoalChanged        = "goal_changed"
)

// publishMonths announces one event per distinct month in dates. The write
// has already succeeded, so publish failures are logged and dropped.
func publishMonths(ctx context.Context, pub EventPublisher, userID int64, reason string, dates ...core.Date) {
	if pub == nil {
		return
	}
	seen := map[core.Date]struct{}{}
	for _, d := range dates {
		m := d.MonthStart()
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		if err := pub.PublishLedgerChange(ctx, userID, reason, m); err != nil {
			slog.ErrorContext(ctx, "Failed to publish ledger change",
				"user_id", userID,
				"reason", reason,
				"year", m.Year(),
				"month", m.Month(),
				"error", err)
		}
	}
}
