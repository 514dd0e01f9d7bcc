package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fintrack/internal/core"
)

// Ledger records bank-level entries and applies payment toggles.
type Ledger struct {
	store  Store
	clock  core.Clock
	events EventPublisher
}

func NewLedger(store Store, clock core.Clock, events EventPublisher) *Ledger {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &Ledger{store: store, clock: clock, events: events}
}

// Record stores a new entry. A categorized entry takes its kind from the
// category.
func (l *Ledger) Record(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t, err := l.prepare(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}
	created, err := l.store.CreateTransactions(ctx, []core.Transaction{t})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction recorded",
		"user_id", t.UserID,
		"id", created[0].ID,
		"kind", t.Kind,
		"amount_cents", t.Amount.Cents)
	publishMonths(ctx, l.events, t.UserID, ReasonTransactionSaved, t.Date)
	return created[0], nil
}

// Update replaces an entry owned by the user.
func (l *Ledger) Update(ctx context.Context, t core.Transaction) error {
	old, err := l.store.GetTransaction(ctx, t.UserID, t.ID)
	if err != nil {
		return err
	}
	t, err = l.prepare(ctx, t)
	if err != nil {
		return err
	}
	if err := l.store.UpdateTransaction(ctx, t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	publishMonths(ctx, l.events, t.UserID, ReasonTransactionSaved, old.Date, t.Date)
	return nil
}

func (l *Ledger) Get(ctx context.Context, userID, id int64) (core.Transaction, error) {
	return l.store.GetTransaction(ctx, userID, id)
}

func (l *Ledger) Delete(ctx context.Context, userID, id int64) error {
	old, err := l.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := l.store.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	publishMonths(ctx, l.events, userID, ReasonTransactionDeleted, old.Date)
	return nil
}

// List returns the user's entries matching q, oldest first.
func (l *Ledger) List(ctx context.Context, q core.TransactionQuery) ([]core.Transaction, error) {
	return l.store.ListTransactions(ctx, q)
}

func (l *Ledger) prepare(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.Description = strings.TrimSpace(t.Description)
	// uncategorized entries keep the kind given by the caller
	if t.CategoryID != 0 {
		cat, err := l.store.GetCategory(ctx, t.UserID, t.CategoryID)
		if err != nil {
			return core.Transaction{}, err
		}
		t.Kind = cat.Kind
	}
	if t.CostType == "" {
		t.CostType = core.Variable
	}
	if !t.Paid {
		t.PaidOn = core.Date{}
	} else if t.PaidOn.IsEmpty() {
		t.PaidOn = l.clock.Today()
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// SetCategoryPaid marks every entry of a category in one month as paid or
// unpaid in a single bulk update. Paid entries get today as payment date.
func (l *Ledger) SetCategoryPaid(ctx context.Context, userID, categoryID int64, year, month int, paid bool) (int64, error) {
	if month < 1 || month > 12 {
		return 0, &core.ValidationError{Field: "month", Err: core.ErrInvalidMonth}
	}
	if _, err := l.store.GetCategory(ctx, userID, categoryID); err != nil {
		return 0, err
	}
	var paidOn core.Date
	if paid {
		paidOn = l.clock.Today()
	}
	w := core.MonthWindow(year, month)
	n, err := l.store.SetTransactionsPaid(ctx, core.TransactionQuery{UserID: userID, Window: w, CategoryID: categoryID}, paid, paidOn)
	if err != nil {
		return 0, fmt.Errorf("set transactions paid: %w", err)
	}
	slog.InfoContext(ctx, "Category payment toggled",
		"user_id", userID,
		"category_id", categoryID,
		"paid", paid,
		"rows", n)
	publishMonths(ctx, l.events, userID, ReasonPaymentToggled, w.Start)
	return n, nil
}

// SetCardBillPaid marks every purchase of a card in one month as paid or
// unpaid in a single bulk update.
func (l *Ledger) SetCardBillPaid(ctx context.Context, userID, cardID int64, year, month int, paid bool) (int64, error) {
	if month < 1 || month > 12 {
		return 0, &core.ValidationError{Field: "month", Err: core.ErrInvalidMonth}
	}
	if _, err := l.store.GetCard(ctx, userID, cardID); err != nil {
		return 0, err
	}
	w := core.MonthWindow(year, month)
	n, err := l.store.SetPurchasesPaid(ctx, core.PurchaseQuery{UserID: userID, Window: w, CardID: cardID}, paid)
	if err != nil {
		return 0, fmt.Errorf("set purchases paid: %w", err)
	}
	slog.InfoContext(ctx, "Card bill payment toggled",
		"user_id", userID,
		"card_id", cardID,
		"paid", paid,
		"rows", n)
	publishMonths(ctx, l.events, userID, ReasonPaymentToggled, w.Start)
	return n, nil
}
