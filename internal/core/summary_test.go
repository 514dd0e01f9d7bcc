package core

import "testing"

func TestNewSummaryScenario(t *testing.T) {
	s := NewSummary(SummaryInput{
		Income:          Cents(500000),
		AccountExpense:  Cents(120000),
		CardTotal:       Cents(80000),
		ThirdPartyTotal: Cents(30000),
	})
	if s.TotalExpense.Cents != 200000 {
		t.Fatalf("total expense = %d", s.TotalExpense.Cents)
	}
	if s.BankBalance.Cents != 300000 {
		t.Fatalf("bank balance = %d", s.BankBalance.Cents)
	}
	if s.PersonalExpense.Cents != 170000 {
		t.Fatalf("personal expense = %d", s.PersonalExpense.Cents)
	}
	if s.PersonalBalance.Cents != 330000 {
		t.Fatalf("personal balance = %d", s.PersonalBalance.Cents)
	}
}

func TestNewSummaryIdentities(t *testing.T) {
	inputs := []SummaryInput{
		{},
		{Income: Cents(1), AccountExpense: Cents(2), CardTotal: Cents(3), ThirdPartyTotal: Cents(1)},
		{Income: Cents(0), AccountExpense: Cents(99999), CardTotal: Cents(0)},
		{Income: Cents(1234567), AccountExpense: Cents(7654), CardTotal: Cents(45000), ThirdPartyTotal: Cents(45000)},
	}
	for i, in := range inputs {
		s := NewSummary(in)
		if s.BankBalance.Cents != in.Income.Cents-(in.AccountExpense.Cents+in.CardTotal.Cents) {
			t.Fatalf("case %d: bank balance identity broken", i)
		}
		if s.PersonalExpense.Cents != s.TotalExpense.Cents-in.ThirdPartyTotal.Cents {
			t.Fatalf("case %d: personal expense identity broken", i)
		}
		if s.PersonalBalance.Cents != in.Income.Cents-s.PersonalExpense.Cents {
			t.Fatalf("case %d: personal balance identity broken", i)
		}
	}
}

func TestNewSummaryEmpty(t *testing.T) {
	s := NewSummary(SummaryInput{})
	for name, m := range map[string]Money{
		"income":           s.Income,
		"account expense":  s.AccountExpense,
		"card total":       s.CardTotal,
		"third party":      s.ThirdPartyTotal,
		"total expense":    s.TotalExpense,
		"bank balance":     s.BankBalance,
		"personal expense": s.PersonalExpense,
		"personal balance": s.PersonalBalance,
	} {
		if !m.IsZero() {
			t.Fatalf("%s should be zero, got %d", name, m.Cents)
		}
	}
	if len(s.ExpenseByCategory) != 0 {
		t.Fatalf("no card row expected without card total, got %v", s.ExpenseByCategory)
	}
}

func TestNewSummaryExpenseBreakdown(t *testing.T) {
	groups := []CategoryTotal{
		{CategoryID: 1, Name: "Food", Total: Cents(30000)},
		{CategoryID: 2, Name: "Rent", Total: Cents(100000)},
		{CategoryID: 3, Name: "Gym", Total: Cents(30000)},
	}
	s := NewSummary(SummaryInput{ExpenseGroups: groups, CardTotal: Cents(50000)})

	want := []string{"Rent", CardsCategoryName, "Food", "Gym"}
	if len(s.ExpenseByCategory) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(s.ExpenseByCategory))
	}
	for i, name := range want {
		if s.ExpenseByCategory[i].Name != name {
			t.Fatalf("row %d: expected %s, got %s", i, name, s.ExpenseByCategory[i].Name)
		}
	}
	if !s.ExpenseByCategory[1].IsCards {
		t.Fatalf("card row must be flagged")
	}
	if groups[0].Name != "Food" {
		t.Fatalf("input slice was reordered")
	}
}

func TestEvaluateGoalPercent(t *testing.T) {
	p := EvaluateGoal(Goal{Kind: GoalGlobal, Limit: Cents(0)}, "g", Window{}, Cents(5000))
	if p.Percent != 0 || p.Exceeded {
		t.Fatalf("zero limit: expected 0%% and not exceeded, got %v/%v", p.Percent, p.Exceeded)
	}

	p = EvaluateGoal(Goal{Kind: GoalCards, Limit: Cents(100000)}, "g", Window{}, Cents(125000))
	if p.Percent != 125 || p.BarPercent != 100 || !p.Exceeded || p.Status != StatusExceeded {
		t.Fatalf("unexpected progress %+v", p)
	}

	p = EvaluateGoal(Goal{Kind: GoalCategory, Limit: Cents(100000)}, "g", Window{}, Cents(100000))
	if p.Exceeded || p.Status != StatusWarning {
		t.Fatalf("exactly 100%% is not exceeded, got %+v", p)
	}

	p = EvaluateGoal(Goal{Kind: GoalCategory, Limit: Cents(100000)}, "g", Window{}, Cents(79999))
	if p.Status != StatusOnTrack {
		t.Fatalf("expected on track, got %s", p.Status)
	}
}

func TestEvaluateGoalSavings(t *testing.T) {
	cases := []struct {
		limit, actual int64
		want          GoalStatus
	}{
		{100000, 100000, StatusAchieved},
		{100000, 150000, StatusAchieved},
		{100000, 50000, StatusPartial},
		{100000, 49999, StatusBehind},
		{100000, -20000, StatusBehind},
		{0, 0, StatusAchieved},
		{0, -1, StatusBehind},
	}
	for _, tc := range cases {
		p := EvaluateGoal(Goal{Kind: GoalSavings, Limit: Cents(tc.limit)}, LabelSavings, Window{}, Cents(tc.actual))
		if p.Status != tc.want {
			t.Fatalf("limit %d actual %d: expected %s, got %s", tc.limit, tc.actual, tc.want, p.Status)
		}
		if p.Exceeded {
			t.Fatalf("savings goals are never exceeded")
		}
		if p.BarPercent < 0 || p.BarPercent > 100 {
			t.Fatalf("bar percent out of range: %v", p.BarPercent)
		}
	}
}

func TestSortGoalProgress(t *testing.T) {
	goals := []GoalProgress{
		{Label: "a", Percent: 20},
		{Label: "b", Percent: 140},
		{Label: "c", Percent: 20},
		{Label: "d", Percent: 95},
	}
	SortGoalProgress(goals)
	want := "bdac"
	got := ""
	for _, g := range goals {
		got += g.Label
	}
	if got != want {
		t.Fatalf("expected order %s, got %s", want, got)
	}
}

func TestGoalStatusFavorable(t *testing.T) {
	tests := map[GoalStatus]bool{
		StatusOnTrack:  true,
		StatusAchieved: true,
		StatusWarning:  false,
		StatusPartial:  false,
		StatusExceeded: false,
		StatusBehind:   false,
	}
	for status, want := range tests {
		if got := status.Favorable(); got != want {
			t.Errorf("%s.Favorable() = %v, want %v", status, got, want)
		}
	}
}
