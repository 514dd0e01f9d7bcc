package core

import (
	"errors"
	"strings"
	"testing"
)

func TestTransactionValidate(t *testing.T) {
	base := Transaction{
		UserID:      1,
		Kind:        Expense,
		Description: "Rent",
		Amount:      Cents(120000),
		Date:        NewDate(2024, 5, 10),
		CostType:    Fixed,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid transaction, got %v", err)
	}

	cases := []struct {
		name string
		mut  func(*Transaction)
		want error
	}{
		{"empty description", func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("x", 101) }, ErrDescriptionTooLong},
		{"zero amount", func(tx *Transaction) { tx.Amount = Cents(0) }, ErrInvalidAmount},
		{"bad kind", func(tx *Transaction) { tx.Kind = "transfer" }, ErrInvalidKind},
		{"bad cost type", func(tx *Transaction) { tx.CostType = "" }, ErrInvalidCostType},
	}
	for _, tc := range cases {
		tx := base
		tc.mut(&tx)
		err := tx.Validate()
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected a validation error, got %v", tc.name, err)
		}
	}
}

func TestCreditCardValidate(t *testing.T) {
	good := CreditCard{Name: "Nubank", LastDigits: "1234", DueDay: 10, Color: ColorPurple}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected valid card, got %v", err)
	}
	cases := []struct {
		card CreditCard
		want error
	}{
		{CreditCard{Name: "", LastDigits: "1234", DueDay: 10, Color: ColorPurple}, ErrEmptyName},
		{CreditCard{Name: "X", LastDigits: "12a4", DueDay: 10, Color: ColorPurple}, ErrInvalidLastDigits},
		{CreditCard{Name: "X", LastDigits: "123", DueDay: 10, Color: ColorPurple}, ErrInvalidLastDigits},
		{CreditCard{Name: "X", LastDigits: "1234", DueDay: 0, Color: ColorPurple}, ErrInvalidDueDay},
		{CreditCard{Name: "X", LastDigits: "1234", DueDay: 32, Color: ColorPurple}, ErrInvalidDueDay},
		{CreditCard{Name: "X", LastDigits: "1234", DueDay: 5, Color: "#123456"}, ErrInvalidColor},
	}
	for i, tc := range cases {
		if err := tc.card.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestCardPurchaseNormalize(t *testing.T) {
	p := CardPurchase{
		Description:      "TV",
		Amount:           Cents(100000),
		Date:             NewDate(2024, 1, 1),
		IsInstallment:    false,
		InstallmentCount: 10,
		IsThirdParty:     false,
		ThirdPartyID:     7,
	}.Normalize()
	if p.InstallmentCount != 1 {
		t.Fatalf("expected count coerced to 1, got %d", p.InstallmentCount)
	}
	if p.ThirdPartyID != 0 {
		t.Fatalf("expected third party cleared, got %d", p.ThirdPartyID)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("normalized purchase should be valid: %v", err)
	}
}

func TestCardPurchaseThirdPartyInvariant(t *testing.T) {
	p := CardPurchase{
		Description:      "Dinner",
		Amount:           Cents(5000),
		Date:             NewDate(2024, 1, 1),
		InstallmentCount: 1,
		IsThirdParty:     true,
	}
	if err := p.Validate(); !errors.Is(err, ErrThirdPartyRequired) {
		t.Fatalf("expected ErrThirdPartyRequired, got %v", err)
	}
	p.IsThirdParty = false
	p.ThirdPartyID = 3
	if err := p.Validate(); !errors.Is(err, ErrThirdPartyForbidden) {
		t.Fatalf("expected ErrThirdPartyForbidden, got %v", err)
	}
}

func TestGoalValidate(t *testing.T) {
	cases := []struct {
		goal Goal
		want error
	}{
		{Goal{Kind: GoalCategory, Period: Monthly, Limit: Cents(100)}, ErrCategoryRequired},
		{Goal{Kind: GoalCards, Period: Monthly, CategoryID: 4, Limit: Cents(100)}, ErrCategoryForbidden},
		{Goal{Kind: "weekly", Period: Monthly}, ErrInvalidKind},
		{Goal{Kind: GoalGlobal, Period: "fortnight"}, ErrInvalidPeriod},
		{Goal{Kind: GoalGlobal, Period: Custom, Start: NewDate(2024, 3, 1), End: NewDate(2024, 2, 1)}, ErrInvalidWindow},
		{Goal{Kind: GoalGlobal, Period: Annual, Limit: Cents(-1)}, ErrInvalidAmount},
	}
	for i, tc := range cases {
		if err := tc.goal.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, err)
		}
	}
	ok := Goal{Kind: GoalCategory, Period: Quarterly, CategoryID: 9, Limit: Cents(50000)}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid goal, got %v", err)
	}
}

func TestGoalDisplayLabel(t *testing.T) {
	cases := []struct {
		goal Goal
		want string
	}{
		{Goal{Kind: GoalCards}, LabelCards},
		{Goal{Kind: GoalSavings}, LabelSavings},
		{Goal{Kind: GoalGlobal}, LabelGlobal},
		{Goal{Kind: GoalCategory, CategoryID: 1}, "Groceries"},
		{Goal{Kind: GoalGlobal, Label: "House budget"}, "House budget"},
	}
	for _, tc := range cases {
		if got := tc.goal.DisplayLabel("Groceries"); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestTruncateDescription(t *testing.T) {
	long := strings.Repeat("é", 150)
	got := TruncateDescription(long)
	if n := len([]rune(got)); n != MaxDescriptionLength {
		t.Fatalf("expected %d runes, got %d", MaxDescriptionLength, n)
	}
	if TruncateDescription("  padaria  ") != "padaria" {
		t.Fatalf("expected surrounding spaces trimmed")
	}
}
