package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
)

// GoalMeasure computes the actual value of a goal over its window.
type GoalMeasure func(ctx context.Context, s Store, g core.Goal, w core.Window) (core.Money, error)

var goalMeasures = map[core.GoalKind]GoalMeasure{
	core.GoalCategory: measureCategory,
	core.GoalCards:    measureCards,
	core.GoalSavings:  measureSavings,
	core.GoalGlobal:   measureGlobal,
}

func measureCategory(ctx context.Context, s Store, g core.Goal, w core.Window) (core.Money, error) {
	return s.SumTransactions(ctx, core.TransactionQuery{UserID: g.UserID, Window: w, CategoryID: g.CategoryID})
}

func measureCards(ctx context.Context, s Store, g core.Goal, w core.Window) (core.Money, error) {
	return s.SumPurchases(ctx, core.PurchaseQuery{UserID: g.UserID, Window: w})
}

// measureSavings is income minus account expenses and card purchases. It can
// be negative.
func measureSavings(ctx context.Context, s Store, g core.Goal, w core.Window) (core.Money, error) {
	income, err := s.SumTransactions(ctx, core.TransactionQuery{UserID: g.UserID, Window: w, Kind: core.Income})
	if err != nil {
		return core.Money{}, err
	}
	spent, err := measureGlobal(ctx, s, g, w)
	if err != nil {
		return core.Money{}, err
	}
	return income.Sub(spent), nil
}

func measureGlobal(ctx context.Context, s Store, g core.Goal, w core.Window) (core.Money, error) {
	expense, err := s.SumTransactions(ctx, core.TransactionQuery{UserID: g.UserID, Window: w, Kind: core.Expense})
	if err != nil {
		return core.Money{}, err
	}
	cards, err := measureCards(ctx, s, g, w)
	if err != nil {
		return core.Money{}, err
	}
	return expense.Add(cards), nil
}

// GoalEngine manages goals and evaluates them against the ledger.
type GoalEngine struct {
	store  Store
	clock  core.Clock
	events EventPublisher
}

func NewGoalEngine(store Store, clock core.Clock, events EventPublisher) *GoalEngine {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &GoalEngine{store: store, clock: clock, events: events}
}

// Evaluate resolves the goal window relative to the clock, measures it and
// classifies the result.
func (e *GoalEngine) Evaluate(ctx context.Context, g core.Goal) (core.GoalProgress, error) {
	w, err := ResolveWindow(g, e.clock.Today())
	if err != nil {
		return core.GoalProgress{}, err
	}
	measure, ok := goalMeasures[g.Kind]
	if !ok {
		return core.GoalProgress{}, &core.ValidationError{Field: "kind", Err: core.ErrInvalidKind}
	}
	actual, err := measure(ctx, e.store, g, w)
	if err != nil {
		return core.GoalProgress{}, fmt.Errorf("measure goal %d: %w", g.ID, err)
	}
	label, err := e.label(ctx, g)
	if err != nil {
		return core.GoalProgress{}, err
	}
	return core.EvaluateGoal(g, label, w, actual), nil
}

// Report evaluates every goal of the user, highest percentage first.
func (e *GoalEngine) Report(ctx context.Context, userID int64) ([]core.GoalProgress, error) {
	goals, err := e.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	out := make([]core.GoalProgress, 0, len(goals))
	for _, g := range goals {
		p, err := e.Evaluate(ctx, g)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	core.SortGoalProgress(out)
	return out, nil
}

// Create validates and stores a goal. A category goal must reference a
// category visible to the user.
func (e *GoalEngine) Create(ctx context.Context, g core.Goal) (core.Goal, error) {
	g = normalizeGoal(g)
	if err := e.check(ctx, g); err != nil {
		return core.Goal{}, err
	}
	created, err := e.store.CreateGoal(ctx, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	slog.InfoContext(ctx, "Goal created",
		"user_id", g.UserID,
		"goal_id", created.ID,
		"kind", g.Kind,
		"period", g.Period)
	publishMonths(ctx, e.events, g.UserID, ReasonGoalChanged, e.clock.Today())
	return created, nil
}

func (e *GoalEngine) Update(ctx context.Context, g core.Goal) error {
	if _, err := e.store.GetGoal(ctx, g.UserID, g.ID); err != nil {
		return err
	}
	g = normalizeGoal(g)
	if err := e.check(ctx, g); err != nil {
		return err
	}
	if err := e.store.UpdateGoal(ctx, g); err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	publishMonths(ctx, e.events, g.UserID, ReasonGoalChanged, e.clock.Today())
	return nil
}

func (e *GoalEngine) Delete(ctx context.Context, userID, id int64) error {
	if err := e.store.DeleteGoal(ctx, userID, id); err != nil {
		return err
	}
	publishMonths(ctx, e.events, userID, ReasonGoalChanged, e.clock.Today())
	return nil
}

func (e *GoalEngine) check(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if g.Kind == core.GoalCategory {
		if _, err := e.store.GetCategory(ctx, g.UserID, g.CategoryID); err != nil {
			return err
		}
	}
	return nil
}

func (e *GoalEngine) label(ctx context.Context, g core.Goal) (string, error) {
	if g.Kind != core.GoalCategory || g.Label != "" {
		return g.DisplayLabel(""), nil
	}
	cat, err := e.store.GetCategory(ctx, g.UserID, g.CategoryID)
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Sprintf("Category #%d", g.CategoryID), nil
	}
	if err != nil {
		return "", fmt.Errorf("goal category: %w", err)
	}
	return g.DisplayLabel(cat.Name), nil
}

// normalizeGoal drops dates that only custom periods use.
func normalizeGoal(g core.Goal) core.Goal {
	if g.Period != core.Custom {
		g.Start, g.End = core.Date{}, core.Date{}
	}
	return g
}
