package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/storage/memory"
)

const testUser int64 = 1

type publishedEvent struct {
	UserID int64
	Reason string
	Month  core.Date
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) PublishLedgerChange(_ context.Context, userID int64, reason string, month core.Date) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{UserID: userID, Reason: reason, Month: month})
	return nil
}

type fixture struct {
	store   *memory.Store
	events  *recordingPublisher
	salary  core.Category
	rent    core.Category
	food    core.Category
	card    core.CreditCard
	card2   core.CreditCard
	friend  core.ThirdParty
	clock   core.FixedClock
	catalog *Catalog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		store:  memory.New(),
		events: &recordingPublisher{},
		clock:  core.FixedClock{Date: core.NewDate(2024, 5, 20)},
	}
	f.catalog = NewCatalog(f.store)

	var err error
	f.salary, err = f.catalog.CreateCategory(ctx, core.Category{UserID: testUser, Name: "Salary", Kind: core.Income})
	require.NoError(t, err)
	f.rent, err = f.catalog.CreateCategory(ctx, core.Category{UserID: testUser, Name: "Rent", Kind: core.Expense})
	require.NoError(t, err)
	f.food, err = f.catalog.CreateCategory(ctx, core.Category{UserID: testUser, Name: "Food", Kind: core.Expense})
	require.NoError(t, err)
	f.card, err = f.catalog.CreateCard(ctx, core.CreditCard{UserID: testUser, Name: "Nubank", LastDigits: "1234", DueDay: 10, Color: core.ColorPurple})
	require.NoError(t, err)
	f.card2, err = f.catalog.CreateCard(ctx, core.CreditCard{UserID: testUser, Name: "Amex", LastDigits: "9876", DueDay: 25})
	require.NoError(t, err)
	f.friend, err = f.catalog.CreateThirdParty(ctx, core.ThirdParty{UserID: testUser, Name: "Ana", Relationship: "sister"})
	require.NoError(t, err)
	return f
}

func (f *fixture) addTx(t *testing.T, cat core.Category, desc string, cents int64, d core.Date, ct core.CostType) core.Transaction {
	t.Helper()
	created, err := f.store.CreateTransactions(context.Background(), []core.Transaction{{
		UserID:      testUser,
		CategoryID:  cat.ID,
		Kind:        cat.Kind,
		Description: desc,
		Amount:      core.Cents(cents),
		Date:        d,
		CostType:    ct,
	}})
	require.NoError(t, err)
	return created[0]
}

func (f *fixture) addPurchase(t *testing.T, card core.CreditCard, desc string, cents int64, d core.Date, thirdParty int64) core.CardPurchase {
	t.Helper()
	created, err := f.store.CreatePurchases(context.Background(), []core.CardPurchase{{
		CardID:           card.ID,
		Description:      desc,
		Amount:           core.Cents(cents),
		Date:             d,
		InstallmentCount: 1,
		IsThirdParty:     thirdParty != 0,
		ThirdPartyID:     thirdParty,
	}})
	require.NoError(t, err)
	return created[0]
}
