package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"fintrack/internal/core"
)

// PurchaseRequest is one submitted card purchase before fan-out.
type PurchaseRequest struct {
	UserID        int64
	CardID        int64
	Description   string
	Amount        core.Money
	Date          core.Date
	IsInstallment bool
	Installments  int
	IsThirdParty  bool
	ThirdPartyID  int64
}

func (r PurchaseRequest) purchase() core.CardPurchase {
	return core.CardPurchase{
		CardID:           r.CardID,
		Description:      r.Description,
		Amount:           r.Amount,
		Date:             r.Date,
		IsInstallment:    r.IsInstallment,
		InstallmentCount: r.Installments,
		IsThirdParty:     r.IsThirdParty,
		ThirdPartyID:     r.ThirdPartyID,
	}
}

// InstallmentEngine turns submitted purchases into persisted card purchase rows.
type InstallmentEngine struct {
	store  Store
	events EventPublisher
}

func NewInstallmentEngine(store Store, events EventPublisher) *InstallmentEngine {
	return &InstallmentEngine{store: store, events: events}
}

// Expand materializes the rows for one purchase without touching the store.
//
// A purchase with one installment yields itself. Otherwise installment i
// (1-based) is dated i-1 calendar months after the purchase date, clamped to
// the end of shorter months, and described as "desc (i/n)". Each row gets
// the truncated cent share of the total; the last row absorbs the remainder
// so the rows always sum to the submitted amount.
func Expand(p core.CardPurchase) ([]core.CardPurchase, error) {
	if p.IsInstallment && p.InstallmentCount < 1 {
		return nil, &core.ValidationError{Field: "installments", Err: core.ErrInvalidInstallments}
	}
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	n := p.InstallmentCount
	if n == 1 {
		return []core.CardPurchase{p}, nil
	}

	shares, err := p.Amount.Split(n)
	if err != nil {
		return nil, &core.ValidationError{Field: "installments", Err: err}
	}
	rows := make([]core.CardPurchase, n)
	for i := range rows {
		row := p
		row.Amount = shares[i]
		row.Date = p.Date.AddMonths(i)
		row.Description = installmentDescription(p.Description, i+1, n)
		rows[i] = row
	}
	return rows, nil
}

// installmentDescription appends " (i/n)" to desc, cutting desc so the result
// stays within core.MaxDescriptionLength.
func installmentDescription(desc string, i, n int) string {
	suffix := fmt.Sprintf(" (%d/%d)", i, n)
	base := []rune(desc)
	if limit := core.MaxDescriptionLength - utf8.RuneCountInString(suffix); len(base) > limit {
		base = []rune(strings.TrimRightFunc(string(base[:limit]), unicode.IsSpace))
	}
	return string(base) + suffix
}

// Record validates the request, checks that the card and third party belong
// to the user and inserts every installment in one batch. The first returned
// row is installment 1.
func (e *InstallmentEngine) Record(ctx context.Context, req PurchaseRequest) ([]core.CardPurchase, error) {
	rows, err := Expand(req.purchase())
	if err != nil {
		return nil, err
	}
	if err := e.checkOwnership(ctx, req.UserID, rows[0]); err != nil {
		return nil, err
	}

	created, err := e.store.CreatePurchases(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("create purchases: %w", err)
	}

	slog.InfoContext(ctx, "Card purchase recorded",
		"user_id", req.UserID,
		"card_id", req.CardID,
		"installments", len(created),
		"amount_cents", req.Amount.Cents,
		"third_party", req.IsThirdParty)

	dates := make([]core.Date, len(created))
	for i, p := range created {
		dates[i] = p.Date
	}
	publishMonths(ctx, e.events, req.UserID, ReasonPurchaseRecorded, dates...)
	return created, nil
}

// RecordBatch stores already-simple purchases on one card in one batch.
// Used by statement import.
func (e *InstallmentEngine) RecordBatch(ctx context.Context, userID, cardID int64, ps []core.CardPurchase) ([]core.CardPurchase, error) {
	if _, err := e.store.GetCard(ctx, userID, cardID); err != nil {
		return nil, err
	}
	var rows []core.CardPurchase
	for _, p := range ps {
		p.CardID = cardID
		p.IsInstallment = false
		p.IsThirdParty = false
		expanded, err := Expand(p)
		if err != nil {
			return nil, err
		}
		rows = append(rows, expanded...)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	created, err := e.store.CreatePurchases(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("create purchases: %w", err)
	}
	return created, nil
}

// Update edits one stored purchase in place. The installment and third-party
// invariants are re-applied but the row is never fanned out again.
func (e *InstallmentEngine) Update(ctx context.Context, userID int64, p core.CardPurchase) (core.CardPurchase, error) {
	old, err := e.store.GetPurchase(ctx, userID, p.ID)
	if err != nil {
		return core.CardPurchase{}, err
	}
	if p.IsInstallment && p.InstallmentCount < 1 {
		return core.CardPurchase{}, &core.ValidationError{Field: "installments", Err: core.ErrInvalidInstallments}
	}
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return core.CardPurchase{}, err
	}
	if err := e.checkOwnership(ctx, userID, p); err != nil {
		return core.CardPurchase{}, err
	}
	if err := e.store.UpdatePurchase(ctx, userID, p); err != nil {
		return core.CardPurchase{}, fmt.Errorf("update purchase: %w", err)
	}
	publishMonths(ctx, e.events, userID, ReasonPurchaseUpdated, old.Date, p.Date)
	return p, nil
}

// Delete removes one purchase owned by the user.
func (e *InstallmentEngine) Delete(ctx context.Context, userID, id int64) error {
	old, err := e.store.GetPurchase(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := e.store.DeletePurchase(ctx, userID, id); err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	publishMonths(ctx, e.events, userID, ReasonPurchaseDeleted, old.Date)
	return nil
}

func (e *InstallmentEngine) checkOwnership(ctx context.Context, userID int64, p core.CardPurchase) error {
	if _, err := e.store.GetCard(ctx, userID, p.CardID); err != nil {
		return err
	}
	if p.IsThirdParty {
		if _, err := e.store.GetThirdParty(ctx, userID, p.ThirdPartyID); err != nil {
			return err
		}
	}
	return nil
}
