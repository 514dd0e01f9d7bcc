// Package sheets defines the outbound report export port. Adapters live in
// the google and memory subpackages.
package sheets

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// MonthReport is everything exported for one user and calendar month.
type MonthReport struct {
	UserID      int64
	Year        int
	Month       int
	Summary     core.Summary
	Goals       []core.GoalProgress
	GeneratedAt time.Time
}

// Ports for outbound adapters.
type (
	// ReportWriter replaces the stored report for the report's user and month.
	ReportWriter interface {
		WriteMonthReport(ctx context.Context, r MonthReport) error
	}
)
