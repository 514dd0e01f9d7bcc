// Package memory keeps exported month reports in process, for tests and for
// running the worker without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	ports "fintrack/internal/sheets"
)

type key struct {
	userID      int64
	year, month int
}

type Store struct {
	mu      sync.Mutex
	reports map[key]ports.MonthReport
	writes  int
}

var _ ports.ReportWriter = (*Store)(nil)

func New() *Store {
	return &Store{reports: map[key]ports.MonthReport{}}
}

// WriteMonthReport overwrites any report for the same user and month.
func (s *Store) WriteMonthReport(_ context.Context, r ports.MonthReport) error {
	if r.Month < 1 || r.Month > 12 {
		return fmt.Errorf("invalid report month: %d", r.Month)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[key{r.UserID, r.Year, r.Month}] = r
	s.writes++
	return nil
}

// Report returns the last report written for the user and month.
func (s *Store) Report(userID int64, year, month int) (ports.MonthReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[key{userID, year, month}]
	return r, ok
}

// Reports lists stored reports ordered by user, year and month.
func (s *Store) Reports() []ports.MonthReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ports.MonthReport, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.UserID != b.UserID {
			return a.UserID < b.UserID
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})
	return out
}

// Writes counts every successful write, including overwrites.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
