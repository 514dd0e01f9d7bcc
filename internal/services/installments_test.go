package services

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestExpandThreeInstallments(t *testing.T) {
	rows, err := Expand(core.CardPurchase{
		CardID:           7,
		Description:      "Notebook",
		Amount:           core.Cents(30000),
		Date:             core.NewDate(2024, 1, 15),
		IsInstallment:    true,
		InstallmentCount: 3,
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	wantDates := []core.Date{core.NewDate(2024, 1, 15), core.NewDate(2024, 2, 15), core.NewDate(2024, 3, 15)}
	wantDesc := []string{"Notebook (1/3)", "Notebook (2/3)", "Notebook (3/3)"}
	for i, r := range rows {
		assert.Equal(t, int64(10000), r.Amount.Cents)
		assert.Equal(t, wantDates[i], r.Date)
		assert.Equal(t, wantDesc[i], r.Description)
		assert.Equal(t, int64(7), r.CardID)
		assert.Equal(t, 3, r.InstallmentCount)
	}
}

func TestExpandSingleKeepsDescription(t *testing.T) {
	rows, err := Expand(core.CardPurchase{
		Description:      "Coffee",
		Amount:           core.Cents(850),
		Date:             core.NewDate(2024, 1, 15),
		IsInstallment:    false,
		InstallmentCount: 12,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1, "non-installment purchases are never split")
	assert.Equal(t, "Coffee", rows[0].Description)
	assert.Equal(t, int64(850), rows[0].Amount.Cents)
	assert.Equal(t, 1, rows[0].InstallmentCount)
}

func TestExpandSumAndDates(t *testing.T) {
	start := core.NewDate(2024, 1, 31)
	for _, tc := range []struct {
		cents int64
		n     int
	}{
		{10000, 3}, {1, 7}, {99999, 12}, {12345, 2}, {500, 5},
	} {
		rows, err := Expand(core.CardPurchase{
			Description:      "x",
			Amount:           core.Cents(tc.cents),
			Date:             start,
			IsInstallment:    true,
			InstallmentCount: tc.n,
		})
		require.NoError(t, err)
		require.Len(t, rows, tc.n)

		var sum int64
		for i, r := range rows {
			sum += r.Amount.Cents
			assert.Equal(t, start.AddMonths(i), r.Date)
			assert.LessOrEqual(t, r.Date.Day(), 31)
		}
		assert.Equal(t, tc.cents, sum, "installments must add up to the total")
	}
}

func TestExpandClampsShortMonths(t *testing.T) {
	rows, err := Expand(core.CardPurchase{
		Description:      "Phone",
		Amount:           core.Cents(40000),
		Date:             core.NewDate(2023, 12, 31),
		IsInstallment:    true,
		InstallmentCount: 4,
	})
	require.NoError(t, err)
	want := []core.Date{
		core.NewDate(2023, 12, 31),
		core.NewDate(2024, 1, 31),
		core.NewDate(2024, 2, 29),
		core.NewDate(2024, 3, 31),
	}
	for i, r := range rows {
		assert.Equal(t, want[i], r.Date)
	}
}

func TestExpandRejectsBadInput(t *testing.T) {
	_, err := Expand(core.CardPurchase{
		Description: "x", Amount: core.Cents(100), Date: core.NewDate(2024, 1, 1),
		IsInstallment: true, InstallmentCount: 0,
	})
	assert.ErrorIs(t, err, core.ErrInvalidInstallments)
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = Expand(core.CardPurchase{
		Description: "x", Amount: core.Cents(0), Date: core.NewDate(2024, 1, 1), InstallmentCount: 1,
	})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = Expand(core.CardPurchase{
		Description: "x", Amount: core.Cents(100), Date: core.NewDate(2024, 1, 1), InstallmentCount: 1,
		IsThirdParty: true,
	})
	assert.ErrorIs(t, err, core.ErrThirdPartyRequired)
}

func TestRecordPersistsAllInstallments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	engine := NewInstallmentEngine(f.store, f.events)

	created, err := engine.Record(ctx, PurchaseRequest{
		UserID:        testUser,
		CardID:        f.card.ID,
		Description:   "Sofa",
		Amount:        core.Cents(30000),
		Date:          core.NewDate(2024, 1, 15),
		IsInstallment: true,
		Installments:  3,
		IsThirdParty:  true,
		ThirdPartyID:  f.friend.ID,
	})
	require.NoError(t, err)
	require.Len(t, created, 3)
	assert.Equal(t, "Sofa (1/3)", created[0].Description)
	assert.Equal(t, int64(10000), created[0].Amount.Cents, "caller sees installment 1, not the total")

	stored, err := f.store.ListPurchases(ctx, core.PurchaseQuery{UserID: testUser, ThirdPartyID: f.friend.ID})
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for _, p := range stored {
		assert.True(t, p.IsThirdParty)
		assert.Equal(t, f.friend.ID, p.ThirdPartyID)
	}

	require.Len(t, f.events.events, 3, "one event per affected month")
	assert.Equal(t, ReasonPurchaseRecorded, f.events.events[0].Reason)
}

func TestRecordChecksOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	engine := NewInstallmentEngine(f.store, nil)

	_, err := engine.Record(ctx, PurchaseRequest{
		UserID: 2, CardID: f.card.ID, Description: "x", Amount: core.Cents(100), Date: core.NewDate(2024, 1, 1),
	})
	assert.ErrorIs(t, err, core.ErrNotFound)

	other, err := f.catalog.CreateThirdParty(ctx, core.ThirdParty{UserID: 2, Name: "Bob"})
	require.NoError(t, err)
	_, err = engine.Record(ctx, PurchaseRequest{
		UserID: testUser, CardID: f.card.ID, Description: "x", Amount: core.Cents(100), Date: core.NewDate(2024, 1, 1),
		IsThirdParty: true, ThirdPartyID: other.ID,
	})
	assert.ErrorIs(t, err, core.ErrNotFound)

	ps, err := f.store.ListPurchases(ctx, core.PurchaseQuery{UserID: testUser})
	require.NoError(t, err)
	assert.Empty(t, ps, "nothing is persisted on failure")
}

func TestUpdatePurchaseDoesNotFanOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	engine := NewInstallmentEngine(f.store, nil)
	p := f.addPurchase(t, f.card, "Dinner", 8000, core.NewDate(2024, 3, 3), f.friend.ID)

	p.IsThirdParty = false
	p.IsInstallment = true
	p.InstallmentCount = 4
	updated, err := engine.Update(ctx, testUser, p)
	require.NoError(t, err)
	assert.Zero(t, updated.ThirdPartyID, "personal purchases carry no third party")

	ps, err := f.store.ListPurchases(ctx, core.PurchaseQuery{UserID: testUser})
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, 4, ps[0].InstallmentCount)

	require.NoError(t, engine.Delete(ctx, testUser, p.ID))
	assert.ErrorIs(t, engine.Delete(ctx, testUser, p.ID), core.ErrNotFound)
}

func TestInstallmentDescriptionsFitLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	engine := NewInstallmentEngine(f.store, nil)

	desc := strings.Repeat("x", core.MaxDescriptionLength)
	created, err := engine.Record(ctx, PurchaseRequest{
		UserID:        testUser,
		CardID:        f.card.ID,
		Description:   desc,
		Amount:        core.Cents(30000),
		Date:          core.NewDate(2024, 1, 15),
		IsInstallment: true,
		Installments:  12,
	})
	require.NoError(t, err)
	require.Len(t, created, 12)
	for _, p := range created {
		assert.LessOrEqual(t, utf8.RuneCountInString(p.Description), core.MaxDescriptionLength)
	}
	assert.True(t, strings.HasSuffix(created[11].Description, "x (12/12)"))

	row := created[1]
	row.Paid = true
	updated, err := engine.Update(ctx, testUser, row)
	require.NoError(t, err, "rows created by the engine stay editable")
	assert.True(t, updated.Paid)
	assert.Equal(t, created[1].Description, updated.Description)
}
