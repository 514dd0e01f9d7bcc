package core

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxDescriptionLength bounds descriptions of entries and purchases.
const MaxDescriptionLength = 100

// CategoryKind tells whether a category collects income or expenses.
type CategoryKind string

const (
	Income  CategoryKind = "income"
	Expense CategoryKind = "expense"
)

func (k CategoryKind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	}
	return invalid("kind", fmt.Errorf("%w: %q", ErrInvalidKind, string(k)))
}

// CostType separates recurring fixed costs from variable ones.
type CostType string

const (
	Fixed    CostType = "fixed"
	Variable CostType = "variable"
)

func (c CostType) Validate() error {
	switch c {
	case Fixed, Variable:
		return nil
	}
	return invalid("cost_type", fmt.Errorf("%w: %q", ErrInvalidCostType, string(c)))
}

// CardColor is the display color of a credit card.
type CardColor string

const (
	ColorPurple CardColor = "#820AD1"
	ColorOrange CardColor = "#FF8700"
	ColorRed    CardColor = "#CC092F"
	ColorYellow CardColor = "#FFD700"
	ColorBlue   CardColor = "#005CAA"
	ColorBlack  CardColor = "#000000"
	ColorGreen  CardColor = "#28a745"
	ColorGray   CardColor = "#6c757d"
)

// DefaultCardColor is used when a card is created without a color.
const DefaultCardColor = ColorGreen

var cardColorNames = map[CardColor]string{
	ColorPurple: "Purple",
	ColorOrange: "Orange",
	ColorRed:    "Red",
	ColorYellow: "Yellow",
	ColorBlue:   "Blue",
	ColorBlack:  "Black",
	ColorGreen:  "Green",
	ColorGray:   "Gray",
}

// Name returns the human name of the color.
func (c CardColor) Name() string {
	return cardColorNames[c]
}

func (c CardColor) Validate() error {
	if _, ok := cardColorNames[c]; !ok {
		return invalid("color", fmt.Errorf("%w: %q", ErrInvalidColor, string(c)))
	}
	return nil
}

// Category groups transactions. UserID zero marks a global category shared
// by every user.
type Category struct {
	ID     int64
	UserID int64
	Name   string
	Kind   CategoryKind
}

func (c Category) IsGlobal() bool { return c.UserID == 0 }

// VisibleTo reports whether the category can be used by the given user.
func (c Category) VisibleTo(userID int64) bool {
	return c.IsGlobal() || c.UserID == userID
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", ErrEmptyName)
	}
	return c.Kind.Validate()
}

// Transaction is a dated bank-level income or expense entry.
type Transaction struct {
	ID          int64
	UserID      int64
	CategoryID  int64 // zero when uncategorized
	Kind        CategoryKind
	Description string
	Amount      Money
	Date        Date
	CostType    CostType
	Note        string
	Paid        bool
	PaidOn      Date // empty unless Paid
}

func (t Transaction) Validate() error {
	if err := validateDescription(t.Description); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	if err := t.Date.Validate(); err != nil {
		return invalid("date", err)
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	return t.CostType.Validate()
}

// CreditCard belongs to one user.
type CreditCard struct {
	ID         int64
	UserID     int64
	Name       string
	LastDigits string
	DueDay     int
	Color      CardColor
}

func (c CreditCard) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", ErrEmptyName)
	}
	if len(c.LastDigits) != 4 {
		return invalid("last_digits", ErrInvalidLastDigits)
	}
	for _, r := range c.LastDigits {
		if !unicode.IsDigit(r) {
			return invalid("last_digits", ErrInvalidLastDigits)
		}
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return invalid("due_day", ErrInvalidDueDay)
	}
	return c.Color.Validate()
}

// Label is the name shown next to the card totals.
func (c CreditCard) Label() string {
	return fmt.Sprintf("%s (*%s)", c.Name, c.LastDigits)
}

// ThirdParty is a person who owes the user for purchases made on their behalf.
type ThirdParty struct {
	ID           int64
	UserID       int64
	Name         string
	Relationship string
}

func (p ThirdParty) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name", ErrEmptyName)
	}
	return nil
}

// Label returns the name with the relationship when one is set.
func (p ThirdParty) Label() string {
	if p.Relationship == "" {
		return p.Name
	}
	return fmt.Sprintf("%s (%s)", p.Name, p.Relationship)
}

// CardPurchase is one charge on a credit card. Ownership derives from the card.
type CardPurchase struct {
	ID               int64
	CardID           int64
	Description      string
	Amount           Money
	Date             Date
	IsInstallment    bool
	InstallmentCount int
	IsThirdParty     bool
	ThirdPartyID     int64 // zero unless IsThirdParty
	Paid             bool
}

// Normalize applies the flag invariants: a non-installment purchase has a
// count of one and a personal purchase carries no third party.
func (p CardPurchase) Normalize() CardPurchase {
	if !p.IsInstallment {
		p.InstallmentCount = 1
	}
	if !p.IsThirdParty {
		p.ThirdPartyID = 0
	}
	return p
}

func (p CardPurchase) Validate() error {
	if err := validateDescription(p.Description); err != nil {
		return err
	}
	if err := p.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	if err := p.Date.Validate(); err != nil {
		return invalid("date", err)
	}
	if p.InstallmentCount < 1 {
		return invalid("installments", ErrInvalidInstallments)
	}
	if p.IsThirdParty && p.ThirdPartyID == 0 {
		return invalid("third_party", ErrThirdPartyRequired)
	}
	if !p.IsThirdParty && p.ThirdPartyID != 0 {
		return invalid("third_party", ErrThirdPartyForbidden)
	}
	return nil
}

func validateDescription(desc string) error {
	if strings.TrimSpace(desc) == "" {
		return invalid("description", ErrEmptyDescription)
	}
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return invalid("description", ErrDescriptionTooLong)
	}
	return nil
}

// TruncateDescription cuts s to MaxDescriptionLength runes.
func TruncateDescription(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= MaxDescriptionLength {
		return s
	}
	return string([]rune(s)[:MaxDescriptionLength])
}
