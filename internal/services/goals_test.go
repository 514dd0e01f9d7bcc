package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestGoalReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t) // today is 2024-05-20
	engine := NewGoalEngine(f.store, f.clock, f.events)

	f.addTx(t, f.salary, "Salary", 500000, core.NewDate(2024, 5, 1), core.Fixed)
	f.addTx(t, f.food, "Market", 60000, core.NewDate(2024, 5, 3), core.Variable)
	f.addTx(t, f.food, "Market", 40000, core.NewDate(2024, 4, 3), core.Variable)
	f.addTx(t, f.rent, "Rent", 150000, core.NewDate(2024, 5, 5), core.Fixed)
	f.addPurchase(t, f.card, "Shoes", 90000, core.NewDate(2024, 5, 9), 0)

	_, err := engine.Create(ctx, core.Goal{UserID: testUser, Kind: core.GoalCategory, Period: core.Monthly, CategoryID: f.food.ID, Limit: core.Cents(50000)})
	require.NoError(t, err)
	_, err = engine.Create(ctx, core.Goal{UserID: testUser, Kind: core.GoalCategory, Period: core.Quarterly, CategoryID: f.food.ID, Limit: core.Cents(200000), Label: "Food Q2"})
	require.NoError(t, err)
	_, err = engine.Create(ctx, core.Goal{UserID: testUser, Kind: core.GoalCards, Period: core.Monthly, Limit: core.Cents(100000)})
	require.NoError(t, err)
	_, err = engine.Create(ctx, core.Goal{UserID: testUser, Kind: core.GoalSavings, Period: core.Monthly, Limit: core.Cents(100000)})
	require.NoError(t, err)
	_, err = engine.Create(ctx, core.Goal{UserID: testUser, Kind: core.GoalGlobal, Period: core.Annual, Limit: core.Cents(0)})
	require.NoError(t, err)

	report, err := engine.Report(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, report, 5)

	byLabel := map[string]core.GoalProgress{}
	for _, p := range report {
		byLabel[p.Label] = p
	}

	food := byLabel["Food"]
	assert.Equal(t, int64(60000), food.Actual.Cents)
	assert.Equal(t, float64(120), food.Percent)
	assert.Equal(t, float64(100), food.BarPercent)
	assert.True(t, food.Exceeded)

	q2 := byLabel["Food Q2"]
	assert.Equal(t, int64(100000), q2.Actual.Cents, "april and may are both in Q2")
	assert.Equal(t, core.NewDate(2024, 4, 1), q2.Window.Start)
	assert.Equal(t, core.NewDate(2024, 6, 30), q2.Window.End)

	cards := byLabel[core.LabelCards]
	assert.Equal(t, int64(90000), cards.Actual.Cents)
	assert.Equal(t, core.StatusWarning, cards.Status)

	savings := byLabel[core.LabelSavings]
	assert.Equal(t, int64(500000-60000-150000-90000), savings.Actual.Cents)
	assert.Equal(t, core.StatusAchieved, savings.Status)
	assert.False(t, savings.Exceeded)

	global := byLabel[core.LabelGlobal]
	assert.Equal(t, int64(60000+40000+150000+90000), global.Actual.Cents)
	assert.Equal(t, float64(0), global.Percent, "zero limit never divides")

	for i := 1; i < len(report); i++ {
		assert.GreaterOrEqual(t, report[i-1].Percent, report[i].Percent)
	}
	assert.Equal(t, "Savings / Set Aside", report[0].Label)
}

func TestGoalValidationAndOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	engine := NewGoalEngine(f.store, f.clock, nil)

	_, err := engine.Create(ctx, core.Goal{UserID: testUser, Kind: core.GoalCategory, Period: core.Monthly, Limit: core.Cents(1)})
	assert.ErrorIs(t, err, core.ErrCategoryRequired)

	_, err = engine.Create(ctx, core.Goal{UserID: 2, Kind: core.GoalCategory, Period: core.Monthly, CategoryID: f.food.ID, Limit: core.Cents(1)})
	assert.ErrorIs(t, err, core.ErrNotFound)

	g := core.Goal{UserID: testUser, Kind: core.GoalGlobal, Period: core.Monthly, Limit: core.Cents(1)}
	_, err = engine.Create(ctx, g)
	require.NoError(t, err)
	_, err = engine.Create(ctx, g)
	assert.ErrorIs(t, err, core.ErrIntegrity)

	custom := core.Goal{UserID: testUser, Kind: core.GoalGlobal, Period: core.Custom, Limit: core.Cents(1),
		Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 3, 31)}
	_, err = engine.Create(ctx, custom)
	require.NoError(t, err)
	_, err = engine.Create(ctx, custom)
	require.NoError(t, err)
}

func TestGoalNonCustomDropsDates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	engine := NewGoalEngine(f.store, f.clock, nil)

	created, err := engine.Create(ctx, core.Goal{UserID: testUser, Kind: core.GoalCards, Period: core.Monthly,
		Limit: core.Cents(10), Start: core.NewDate(2020, 1, 1)})
	require.NoError(t, err)
	assert.True(t, created.Start.IsEmpty())

	p, err := engine.Evaluate(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, core.MonthWindow(2024, 5), p.Window)

	require.NoError(t, engine.Delete(ctx, testUser, created.ID))
	assert.ErrorIs(t, engine.Delete(ctx, testUser, created.ID), core.ErrNotFound)
}
