package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

const user int64 = 1

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "fintrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())
}

func TestTransactionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	food, err := repo.CreateCategory(ctx, core.Category{UserID: user, Name: "Food", Kind: core.Expense})
	require.NoError(t, err)
	salary, err := repo.CreateCategory(ctx, core.Category{Name: "Salary", Kind: core.Income})
	require.NoError(t, err)

	created, err := repo.CreateTransactions(ctx, []core.Transaction{
		{UserID: user, CategoryID: food.ID, Kind: core.Expense, Description: "Market", Amount: core.Cents(1250),
			Date: core.NewDate(2024, 5, 3), CostType: core.Variable},
		{UserID: user, CategoryID: salary.ID, Kind: core.Income, Description: "Salary", Amount: core.Cents(500000),
			Date: core.NewDate(2024, 5, 1), CostType: core.Fixed, Paid: true, PaidOn: core.NewDate(2024, 5, 1)},
		{UserID: user, Kind: core.Expense, Description: "Loose", Amount: core.Cents(300),
			Date: core.NewDate(2024, 6, 1), CostType: core.Variable, Note: "no category"},
		{UserID: 2, CategoryID: food.ID, Kind: core.Expense, Description: "Other user", Amount: core.Cents(999),
			Date: core.NewDate(2024, 5, 3), CostType: core.Variable},
	})
	require.NoError(t, err)
	require.Len(t, created, 4)
	assert.NotZero(t, created[0].ID)

	may := core.TransactionQuery{UserID: user, Window: core.MonthWindow(2024, 5)}
	txs, err := repo.ListTransactions(ctx, may)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "Salary", txs[0].Description, "ordered by date")
	assert.Equal(t, core.NewDate(2024, 5, 1), txs[0].PaidOn)
	assert.True(t, txs[1].PaidOn.IsEmpty())

	sum, err := repo.SumTransactions(ctx, core.TransactionQuery{UserID: user, Kind: core.Expense})
	require.NoError(t, err)
	assert.Equal(t, int64(1550), sum.Cents)

	byCat, err := repo.SumTransactionsByCategory(ctx, core.TransactionQuery{UserID: user, Kind: core.Expense})
	require.NoError(t, err)
	require.Len(t, byCat, 2)
	assert.Equal(t, "", byCat[0].Name)
	assert.Equal(t, "Food", byCat[1].Name)
	assert.Equal(t, int64(1250), byCat[1].Total.Cents)

	exists, err := repo.TransactionExists(ctx, core.TransactionMatch{UserID: user, Window: core.MonthWindow(2024, 5),
		Kind: core.Expense, Description: "Market", Amount: core.Cents(1250)})
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.GetTransaction(ctx, 2, created[0].ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	n, err := repo.SetTransactionsPaid(ctx, may, true, core.NewDate(2024, 5, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	got, err := repo.GetTransaction(ctx, user, created[0].ID)
	require.NoError(t, err)
	assert.True(t, got.Paid)
	assert.Equal(t, core.NewDate(2024, 5, 20), got.PaidOn)

	got.Amount = core.Cents(1300)
	require.NoError(t, repo.UpdateTransaction(ctx, got))
	got.UserID = 2
	assert.ErrorIs(t, repo.UpdateTransaction(ctx, got), core.ErrNotFound)

	require.NoError(t, repo.DeleteTransaction(ctx, user, created[0].ID))
	assert.ErrorIs(t, repo.DeleteTransaction(ctx, user, created[0].ID), core.ErrNotFound)
}

func TestCreateTransactionsIsAtomic(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.CreateTransactions(ctx, []core.Transaction{
		{UserID: user, Kind: core.Expense, Description: "ok", Amount: core.Cents(1), Date: core.NewDate(2024, 1, 1), CostType: core.Fixed},
		{UserID: user, CategoryID: 404, Kind: core.Expense, Description: "bad", Amount: core.Cents(1), Date: core.NewDate(2024, 1, 1), CostType: core.Fixed},
	})
	assert.ErrorIs(t, err, core.ErrNotFound)

	txs, err := repo.ListTransactions(ctx, core.TransactionQuery{UserID: user})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestPurchasesScopedByCardOwner(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	card, err := repo.CreateCard(ctx, core.CreditCard{UserID: user, Name: "Nubank", LastDigits: "1234", DueDay: 10, Color: core.ColorPurple})
	require.NoError(t, err)
	other, err := repo.CreateCard(ctx, core.CreditCard{UserID: 2, Name: "Other", LastDigits: "9999", DueDay: 5, Color: core.ColorGray})
	require.NoError(t, err)
	friend, err := repo.CreateThirdParty(ctx, core.ThirdParty{UserID: user, Name: "Ana", Relationship: "sister"})
	require.NoError(t, err)

	ps, err := repo.CreatePurchases(ctx, []core.CardPurchase{
		{CardID: card.ID, Description: "Shoes (1/2)", Amount: core.Cents(5000), Date: core.NewDate(2024, 5, 9), IsInstallment: true, InstallmentCount: 2},
		{CardID: card.ID, Description: "Shoes (2/2)", Amount: core.Cents(5000), Date: core.NewDate(2024, 6, 9), IsInstallment: true, InstallmentCount: 2},
		{CardID: card.ID, Description: "Gift", Amount: core.Cents(2000), Date: core.NewDate(2024, 5, 12), InstallmentCount: 1, IsThirdParty: true, ThirdPartyID: friend.ID},
		{CardID: other.ID, Description: "Not mine", Amount: core.Cents(7000), Date: core.NewDate(2024, 5, 1), InstallmentCount: 1},
	})
	require.NoError(t, err)
	require.Len(t, ps, 4)

	may := core.PurchaseQuery{UserID: user, Window: core.MonthWindow(2024, 5)}
	list, err := repo.ListPurchases(ctx, may)
	require.NoError(t, err)
	require.Len(t, list, 2)

	newest := may
	newest.NewestFirst = true
	list, err = repo.ListPurchases(ctx, newest)
	require.NoError(t, err)
	assert.Equal(t, "Gift", list[0].Description)
	assert.Equal(t, friend.ID, list[0].ThirdPartyID)

	own := may
	own.Scope = core.ScopeOwn
	sum, err := repo.SumPurchases(ctx, own)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), sum.Cents)

	byCard, err := repo.SumPurchasesByCard(ctx, may)
	require.NoError(t, err)
	require.Len(t, byCard, 1)
	assert.Equal(t, int64(7000), byCard[0].Total.Cents)
	assert.Equal(t, 2, byCard[0].Unpaid)
	assert.Equal(t, core.ColorPurple, byCard[0].Card.Color)

	byParty, err := repo.SumPurchasesByThirdParty(ctx, core.PurchaseQuery{UserID: user})
	require.NoError(t, err)
	require.Len(t, byParty, 1)
	assert.Equal(t, "Ana", byParty[0].ThirdParty.Name)
	assert.Equal(t, int64(2000), byParty[0].Total.Cents)

	n, err := repo.SetPurchasesPaid(ctx, core.PurchaseQuery{UserID: user, Window: core.MonthWindow(2024, 5), CardID: card.ID}, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.GetPurchase(ctx, user, ps[3].ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, repo.DeletePurchase(ctx, user, ps[3].ID), core.ErrNotFound)

	moved := ps[0]
	moved.CardID = other.ID
	assert.ErrorIs(t, repo.UpdatePurchase(ctx, user, moved), core.ErrNotFound)

	edited, err := repo.GetPurchase(ctx, user, ps[0].ID)
	require.NoError(t, err)
	edited.Amount = core.Cents(5500)
	require.NoError(t, repo.UpdatePurchase(ctx, user, edited))
	got, err := repo.GetPurchase(ctx, user, edited.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5500), got.Amount.Cents)
	assert.True(t, got.Paid)
}

func TestCatalogIntegrity(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	global, err := repo.CreateCategory(ctx, core.Category{Name: "Taxes", Kind: core.Expense})
	require.NoError(t, err)
	food, err := repo.CreateCategory(ctx, core.Category{UserID: user, Name: "Food", Kind: core.Expense})
	require.NoError(t, err)
	_, err = repo.CreateCategory(ctx, core.Category{UserID: 2, Name: "Hidden", Kind: core.Expense})
	require.NoError(t, err)

	cats, err := repo.ListCategories(ctx, user, core.Expense)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Food", cats[0].Name)
	assert.True(t, cats[1].IsGlobal())

	assert.ErrorIs(t, repo.DeleteCategory(ctx, user, global.ID), core.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateCategory(ctx, core.Category{ID: global.ID, UserID: user, Name: "x", Kind: core.Expense}), core.ErrNotFound)

	_, err = repo.CreateGoal(ctx, core.Goal{UserID: user, Kind: core.GoalCategory, Period: core.Monthly, CategoryID: food.ID, Limit: core.Cents(100)})
	require.NoError(t, err)
	err = repo.DeleteCategory(ctx, user, food.ID)
	var ie *core.IntegrityError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "is used by a goal", ie.Reason)

	card, err := repo.CreateCard(ctx, core.CreditCard{UserID: user, Name: "Visa", LastDigits: "4321", DueDay: 3, Color: core.DefaultCardColor})
	require.NoError(t, err)
	_, err = repo.CreatePurchases(ctx, []core.CardPurchase{{CardID: card.ID, Description: "x", Amount: core.Cents(1), Date: core.NewDate(2024, 1, 1), InstallmentCount: 1}})
	require.NoError(t, err)
	assert.ErrorIs(t, repo.DeleteCard(ctx, user, card.ID), core.ErrIntegrity)
	assert.ErrorIs(t, repo.DeleteCard(ctx, 2, card.ID), core.ErrNotFound)

	friend, err := repo.CreateThirdParty(ctx, core.ThirdParty{UserID: user, Name: "Bo"})
	require.NoError(t, err)
	require.NoError(t, repo.DeleteThirdParty(ctx, user, friend.ID))
	_, err = repo.GetThirdParty(ctx, user, friend.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, users)
}

func TestGoalUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	g := core.Goal{UserID: user, Kind: core.GoalCards, Period: core.Monthly, Limit: core.Cents(100)}
	created, err := repo.CreateGoal(ctx, g)
	require.NoError(t, err)
	_, err = repo.CreateGoal(ctx, g)
	assert.ErrorIs(t, err, core.ErrIntegrity)

	custom := core.Goal{UserID: user, Kind: core.GoalCards, Period: core.Custom, Limit: core.Cents(100),
		Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 2, 15), Label: "Trip"}
	_, err = repo.CreateGoal(ctx, custom)
	require.NoError(t, err)
	_, err = repo.CreateGoal(ctx, custom)
	require.NoError(t, err)

	goals, err := repo.ListGoals(ctx, user)
	require.NoError(t, err)
	require.Len(t, goals, 3)
	assert.Equal(t, core.NewDate(2024, 2, 15), goals[1].End)
	assert.Equal(t, "Trip", goals[1].Label)

	created.Limit = core.Cents(250)
	require.NoError(t, repo.UpdateGoal(ctx, created))
	got, err := repo.GetGoal(ctx, user, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(250), got.Limit.Cents)

	require.NoError(t, repo.DeleteGoal(ctx, user, created.ID))
	assert.ErrorIs(t, repo.DeleteGoal(ctx, user, created.ID), core.ErrNotFound)
}
