package core

import (
	"fmt"
	"strings"
)

// GoalKind selects what a goal measures.
type GoalKind string

const (
	GoalCategory GoalKind = "category"
	GoalCards    GoalKind = "cards"
	GoalSavings  GoalKind = "savings"
	GoalGlobal   GoalKind = "global"
)

func (k GoalKind) Validate() error {
	switch k {
	case GoalCategory, GoalCards, GoalSavings, GoalGlobal:
		return nil
	}
	return invalid("kind", fmt.Errorf("%w: %q", ErrInvalidKind, string(k)))
}

// IsSpending reports whether exceeding the limit is the unfavorable outcome.
// Savings goals are the only inverted kind.
func (k GoalKind) IsSpending() bool {
	return k != GoalSavings
}

// PeriodType is the window a goal is evaluated over.
type PeriodType string

const (
	Monthly    PeriodType = "monthly"
	Quarterly  PeriodType = "quarterly"
	Semiannual PeriodType = "semiannual"
	Annual     PeriodType = "annual"
	Custom     PeriodType = "custom"
)

func (p PeriodType) Validate() error {
	switch p {
	case Monthly, Quarterly, Semiannual, Annual, Custom:
		return nil
	}
	return invalid("period", fmt.Errorf("%w: %q", ErrInvalidPeriod, string(p)))
}

// Goal is a budget ceiling or savings target.
type Goal struct {
	ID         int64
	UserID     int64
	Kind       GoalKind
	Period     PeriodType
	CategoryID int64 // set iff Kind == GoalCategory
	Limit      Money
	Start      Date // custom periods only
	End        Date // custom periods only
	Label      string
}

func (g Goal) Validate() error {
	if err := g.Kind.Validate(); err != nil {
		return err
	}
	if err := g.Period.Validate(); err != nil {
		return err
	}
	if g.Kind == GoalCategory && g.CategoryID == 0 {
		return invalid("category", ErrCategoryRequired)
	}
	if g.Kind != GoalCategory && g.CategoryID != 0 {
		return invalid("category", ErrCategoryForbidden)
	}
	if g.Limit.Cents < 0 {
		return invalid("limit", ErrInvalidAmount)
	}
	if g.Period == Custom {
		if err := (Window{Start: g.Start, End: g.End}).Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Default labels for goals without an explicit label.
const (
	LabelCards   = "Total Cards"
	LabelSavings = "Savings / Set Aside"
	LabelGlobal  = "Global Budget"
)

// DisplayLabel returns the explicit label when set, otherwise a label derived
// from the kind. categoryName is used for category goals.
func (g Goal) DisplayLabel(categoryName string) string {
	if l := strings.TrimSpace(g.Label); l != "" {
		return l
	}
	switch g.Kind {
	case GoalCards:
		return LabelCards
	case GoalSavings:
		return LabelSavings
	case GoalGlobal:
		return LabelGlobal
	}
	return categoryName
}
