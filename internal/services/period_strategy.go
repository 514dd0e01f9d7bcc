// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for goal period resolution.
// Each period type (monthly, quarterly, semiannual, annual, custom) has its
// own resolver that maps a goal and a reference date to an inclusive window.

package services

import (
	"fmt"

	"fintrack/internal/core"
)

// WindowResolver is the strategy interface for resolving a goal's window.
type WindowResolver interface {
	// Resolve returns the window the goal is evaluated over when today is
	// the reference date.
	Resolve(g core.Goal, today core.Date) core.Window
}

// MonthlyResolver covers the current calendar month.
type MonthlyResolver struct{}

func (MonthlyResolver) Resolve(_ core.Goal, today core.Date) core.Window {
	return core.MonthWindow(today.Year(), today.Month())
}

// QuarterlyResolver covers the current calendar quarter.
type QuarterlyResolver struct{}

func (QuarterlyResolver) Resolve(_ core.Goal, today core.Date) core.Window {
	quarter := (today.Month()-1)/3 + 1
	first := (quarter-1)*3 + 1
	return core.Window{
		Start: core.NewDate(today.Year(), first, 1),
		End:   core.NewDate(today.Year(), first+2, 1).MonthEnd(),
	}
}

// SemiannualResolver covers January-June or July-December.
type SemiannualResolver struct{}

func (SemiannualResolver) Resolve(_ core.Goal, today core.Date) core.Window {
	if today.Month() <= 6 {
		return core.Window{Start: core.NewDate(today.Year(), 1, 1), End: core.NewDate(today.Year(), 6, 30)}
	}
	return core.Window{Start: core.NewDate(today.Year(), 7, 1), End: core.NewDate(today.Year(), 12, 31)}
}

// AnnualResolver covers the current calendar year.
type AnnualResolver struct{}

func (AnnualResolver) Resolve(_ core.Goal, today core.Date) core.Window {
	return core.Window{Start: core.NewDate(today.Year(), 1, 1), End: core.NewDate(today.Year(), 12, 31)}
}

// CustomResolver uses the goal's own dates. A missing start falls back to the
// first day of the current month and a missing end to its last day.
type CustomResolver struct{}

func (CustomResolver) Resolve(g core.Goal, today core.Date) core.Window {
	w := core.Window{Start: g.Start, End: g.End}
	if w.Start.IsEmpty() {
		w.Start = today.MonthStart()
	}
	if w.End.IsEmpty() {
		w.End = today.MonthEnd()
	}
	return w
}

// windowResolvers maps period types to their resolvers.
var windowResolvers = map[core.PeriodType]WindowResolver{
	core.Monthly:    MonthlyResolver{},
	core.Quarterly:  QuarterlyResolver{},
	core.Semiannual: SemiannualResolver{},
	core.Annual:     AnnualResolver{},
	core.Custom:     CustomResolver{},
}

// GetWindowResolver returns the resolver for a period type.
// Returns an error if the period type is not supported.
func GetWindowResolver(period core.PeriodType) (WindowResolver, error) {
	r, ok := windowResolvers[period]
	if !ok {
		return nil, fmt.Errorf("unknown period type: %s", period)
	}
	return r, nil
}

// RegisterWindowResolver registers a resolver for a new period type.
func RegisterWindowResolver(period core.PeriodType, r WindowResolver) {
	windowResolvers[period] = r
}

// ResolveWindow maps a goal and a reference date to its evaluation window.
func ResolveWindow(g core.Goal, today core.Date) (core.Window, error) {
	r, err := GetWindowResolver(g.Period)
	if err != nil {
		return core.Window{}, err
	}
	return r.Resolve(g, today), nil
}
