package core

import (
	"sort"
)

// CardsCategoryName labels the synthetic expense row that stands for all
// card purchases in a breakdown.
const CardsCategoryName = "Credit Cards"

// CategoryTotal is one row of a per-category breakdown.
type CategoryTotal struct {
	CategoryID int64 // zero for uncategorized and for the synthetic card row
	Name       string
	Total      Money
	IsCards    bool
}

// CardTotal is the bill of one card over a window.
type CardTotal struct {
	Card   CreditCard
	Total  Money
	Unpaid int
}

// Pending reports whether some purchase on the bill is not yet paid.
func (c CardTotal) Pending() bool { return c.Unpaid > 0 }

// ThirdPartyTotal is the amount one person owes over a window.
type ThirdPartyTotal struct {
	ThirdParty ThirdParty
	Total      Money
}

// SummaryInput carries the raw sums a Summary is derived from.
type SummaryInput struct {
	Window          Window
	Income          Money
	AccountExpense  Money
	CardTotal       Money
	ThirdPartyTotal Money
	IncomeGroups    []CategoryTotal
	ExpenseGroups   []CategoryTotal
	Cards           []CardTotal
	ThirdParties    []ThirdPartyTotal
}

// Summary holds every derived total for one user and window.
type Summary struct {
	Window          Window
	Income          Money
	AccountExpense  Money
	CardTotal       Money
	ThirdPartyTotal Money
	TotalExpense    Money
	BankBalance     Money
	PersonalExpense Money
	PersonalBalance Money

	IncomeByCategory  []CategoryTotal
	ExpenseByCategory []CategoryTotal
	Cards             []CardTotal
	ThirdParties      []ThirdPartyTotal
}

// NewSummary derives the balances and breakdowns from raw sums. The input
// slices are copied, never modified.
func NewSummary(in SummaryInput) Summary {
	total := in.AccountExpense.Add(in.CardTotal)
	personal := total.Sub(in.ThirdPartyTotal)

	expense := append([]CategoryTotal(nil), in.ExpenseGroups...)
	if !in.CardTotal.IsZero() {
		expense = append(expense, CategoryTotal{Name: CardsCategoryName, Total: in.CardTotal, IsCards: true})
	}
	sort.SliceStable(expense, func(i, j int) bool {
		return expense[i].Total.Cents > expense[j].Total.Cents
	})

	parties := append([]ThirdPartyTotal(nil), in.ThirdParties...)
	sort.SliceStable(parties, func(i, j int) bool {
		return parties[i].Total.Cents > parties[j].Total.Cents
	})

	return Summary{
		Window:            in.Window,
		Income:            in.Income,
		AccountExpense:    in.AccountExpense,
		CardTotal:         in.CardTotal,
		ThirdPartyTotal:   in.ThirdPartyTotal,
		TotalExpense:      total,
		BankBalance:       in.Income.Sub(total),
		PersonalExpense:   personal,
		PersonalBalance:   in.Income.Sub(personal),
		IncomeByCategory:  append([]CategoryTotal(nil), in.IncomeGroups...),
		ExpenseByCategory: expense,
		Cards:             append([]CardTotal(nil), in.Cards...),
		ThirdParties:      parties,
	}
}

// GoalStatus classifies the progress of a goal.
type GoalStatus string

const (
	StatusOnTrack  GoalStatus = "on_track"
	StatusWarning  GoalStatus = "warning"
	StatusExceeded GoalStatus = "exceeded"

	StatusAchieved GoalStatus = "achieved"
	StatusPartial  GoalStatus = "partial"
	StatusBehind   GoalStatus = "behind"
)

// WarningPercent is where a spending goal turns from on track to warning.
const WarningPercent = 80

// Favorable reports whether the status is the good end of its scale.
func (s GoalStatus) Favorable() bool {
	return s == StatusOnTrack || s == StatusAchieved
}

// GoalProgress is the evaluated state of one goal.
type GoalProgress struct {
	Goal       Goal
	Label      string
	Window     Window
	Actual     Money
	Percent    float64 // raw, may exceed 100 or be negative
	BarPercent float64 // Percent clamped to [0,100]
	Exceeded   bool    // spending goals only
	Status     GoalStatus
}

// EvaluateGoal classifies actual against the goal limit.
func EvaluateGoal(g Goal, label string, w Window, actual Money) GoalProgress {
	pct := actual.PercentOf(g.Limit)
	p := GoalProgress{
		Goal:       g,
		Label:      label,
		Window:     w,
		Actual:     actual,
		Percent:    pct,
		BarPercent: clampPercent(pct),
	}

	if !g.Kind.IsSpending() {
		switch {
		case actual.Cents >= g.Limit.Cents:
			p.Status = StatusAchieved
		case 2*actual.Cents < g.Limit.Cents:
			p.Status = StatusBehind
		default:
			p.Status = StatusPartial
		}
		return p
	}

	switch {
	case pct > 100:
		p.Exceeded = true
		p.Status = StatusExceeded
	case pct >= WarningPercent:
		p.Status = StatusWarning
	default:
		p.Status = StatusOnTrack
	}
	return p
}

// SortGoalProgress orders goals by raw percentage, highest first. Equal
// percentages keep their input order.
func SortGoalProgress(goals []GoalProgress) {
	sort.SliceStable(goals, func(i, j int) bool {
		return goals[i].Percent > goals[j].Percent
	})
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
