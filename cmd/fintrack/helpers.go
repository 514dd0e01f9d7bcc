package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"fintrack/internal/core"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dangerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var cardColors = []core.CardColor{
	core.ColorPurple, core.ColorOrange, core.ColorRed, core.ColorYellow,
	core.ColorBlue, core.ColorBlack, core.ColorGreen, core.ColorGray,
}

// parseMonth accepts YYYY-MM or MM/YYYY. An empty value is the month of today.
func parseMonth(s string, today core.Date) (year, month int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return today.Year(), today.Month(), nil
	}
	for _, layout := range []string{"2006-01", "01/2006", "1/2006"} {
		if t, perr := time.Parse(layout, s); perr == nil {
			return t.Year(), int(t.Month()), nil
		}
	}
	return 0, 0, &core.ValidationError{Field: "month", Err: fmt.Errorf("%w: %q (use YYYY-MM)", core.ErrInvalidMonth, s)}
}

// parseDate accepts YYYY-MM-DD. An empty value is today.
func parseDate(s string, today core.Date) (core.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return today, nil
	}
	return core.ParseDate(s)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 1 {
		return 0, &core.ValidationError{Field: "id", Err: fmt.Errorf("invalid id %q", s)}
	}
	return id, nil
}

// parseColor accepts a color name (case-insensitive) or its hex code.
func parseColor(s string) (core.CardColor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.DefaultCardColor, nil
	}
	for _, c := range cardColors {
		if strings.EqualFold(c.Name(), s) || strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", &core.ValidationError{Field: "color", Err: fmt.Errorf("%w: %q", core.ErrInvalidColor, s)}
}

func parseKind(s string) (core.CategoryKind, error) {
	k := core.CategoryKind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.Validate()
}

// monthWindow reads the --month flag of cmd.
func (a *application) monthWindow(cmd *cobra.Command) (core.Window, error) {
	y, m, err := a.month(cmd)
	if err != nil {
		return core.Window{}, err
	}
	return core.MonthWindow(y, m), nil
}

func (a *application) month(cmd *cobra.Command) (int, int, error) {
	s, _ := cmd.Flags().GetString("month")
	return parseMonth(s, a.today())
}

func addMonthFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("month", "m", "", "month as YYYY-MM (default: current month)")
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// writeHeader prints styled column names followed by a dashed rule.
func writeHeader(w io.Writer, cols ...string) {
	styled := make([]string, len(cols))
	rule := make([]string, len(cols))
	for i, c := range cols {
		styled[i] = headerStyle.Render(c)
		rule[i] = strings.Repeat("-", max(len(c), 4))
	}
	fmt.Fprintln(w, strings.Join(styled, "\t"))
	fmt.Fprintln(w, strings.Join(rule, "\t"))
}

func writeTitle(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf(format, args...)))
}

func money(m core.Money) string {
	if m.Cents < 0 {
		return dangerStyle.Render(m.String())
	}
	return m.String()
}

func paidMark(paid bool) string {
	if paid {
		return successStyle.Render("paid")
	}
	return mutedStyle.Render("open")
}

func statusText(s core.GoalStatus) string {
	switch {
	case s.Favorable():
		return successStyle.Render(string(s))
	case s == core.StatusWarning, s == core.StatusPartial:
		return warnStyle.Render(string(s))
	}
	return dangerStyle.Render(string(s))
}

func monthLabel(w core.Window) string {
	return w.Start.Time.Format("01/2006")
}
