package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const defaultReportSheet = "Report"

// Config selects the spreadsheet and credentials. Credentials are taken from
// CredentialsJSON, then CredentialsFile, then GOOGLE_APPLICATION_CREDENTIALS.
type Config struct {
	SpreadsheetID   string
	ReportSheet     string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	reportBase    string

	mu     sync.Mutex
	titles map[string]struct{} // tabs known to exist
}

// Ensure interface conformance
var _ ports.ReportWriter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	var (
		svc *gsheet.Service
		err error
	)
	if len(opts) > 0 {
		svc, err = gsheet.NewService(ctx, opts...)
	} else {
		svc, err = newSheetsService(ctx, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	base := strings.TrimSpace(cfg.ReportSheet)
	if base == "" {
		base = defaultReportSheet
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		reportBase:    base,
		titles:        map[string]struct{}{},
	}, nil
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	credentialsJSON := []byte(strings.TrimSpace(cfg.CredentialsJSON))
	file := strings.TrimSpace(cfg.CredentialsFile)
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case len(credentialsJSON) > 0:
		slog.InfoContext(ctx, "Using inline service account credentials")
	case file != "":
		var err error
		credentialsJSON, err = os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.InfoContext(ctx, "Read service account credentials", "path", file, "size", len(credentialsJSON))
	default:
		return nil, errors.New("missing service account credentials (set google.credentials_json, google.credentials_file or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// WriteMonthReport rewrites the report tab of r's user and month, creating
// the tab on first use.
func (c *Client) WriteMonthReport(ctx context.Context, r ports.MonthReport) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if r.Month < 1 || r.Month > 12 {
		return fmt.Errorf("invalid month: %d", r.Month)
	}

	title := reportSheetName(c.reportBase, r.UserID, r.Year, r.Month)
	if err := c.ensureSheet(ctx, title); err != nil {
		return err
	}

	rng := quoteSheet(title)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", title, err)
	}

	rows := reportRows(r)
	vr := &gsheet.ValueRange{Values: rows}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng+"!A1", vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %s: %w", title, err)
	}

	slog.InfoContext(ctx, "Month report exported",
		"sheet", title,
		"user_id", r.UserID,
		"rows", len(rows))
	return nil
}

func (c *Client) ensureSheet(ctx context.Context, title string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.titles[title]; ok {
		return nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			c.titles[sh.Properties.Title] = struct{}{}
		}
	}
	if _, ok := c.titles[title]; ok {
		return nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", title, err)
	}
	c.titles[title] = struct{}{}
	slog.InfoContext(ctx, "Created report sheet", "sheet", title)
	return nil
}

// reportSheetName returns "<yyyy>-<mm> <base> #<user>".
func reportSheetName(base string, userID int64, year, month int) string {
	return fmt.Sprintf("%04d-%02d %s #%d", year, month, strings.TrimSpace(base), userID)
}

// quoteSheet quotes a tab title for A1 notation.
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// reportRows lays out the summary, breakdowns and goals as sheet rows.
// Amounts are written in currency units so the sheet can format them.
func reportRows(r ports.MonthReport) [][]any {
	s := r.Summary
	rows := [][]any{
		{"Report", fmt.Sprintf("%02d/%04d", r.Month, r.Year)},
		{"Generated", r.GeneratedAt.UTC().Format("2006-01-02 15:04:05")},
		{},
		{"Summary", "Amount"},
		{"Income", s.Income.Units()},
		{"Account expenses", s.AccountExpense.Units()},
		{"Card purchases", s.CardTotal.Units()},
		{"Total expenses", s.TotalExpense.Units()},
		{"Bank balance", s.BankBalance.Units()},
		{"Third-party share", s.ThirdPartyTotal.Units()},
		{"Personal expenses", s.PersonalExpense.Units()},
		{"Personal balance", s.PersonalBalance.Units()},
	}

	rows = append(rows, []any{}, []any{"Expenses by category", "Amount"})
	for _, ct := range s.ExpenseByCategory {
		rows = append(rows, []any{categoryName(ct), ct.Total.Units()})
	}

	rows = append(rows, []any{}, []any{"Income by category", "Amount"})
	for _, ct := range s.IncomeByCategory {
		rows = append(rows, []any{categoryName(ct), ct.Total.Units()})
	}

	if len(s.Cards) > 0 {
		rows = append(rows, []any{}, []any{"Card", "Due day", "Amount", "Status"})
		for _, ct := range s.Cards {
			status := "paid"
			if ct.Pending() {
				status = fmt.Sprintf("%d unpaid", ct.Unpaid)
			}
			rows = append(rows, []any{ct.Card.Label(), ct.Card.DueDay, ct.Total.Units(), status})
		}
	}

	if len(s.ThirdParties) > 0 {
		rows = append(rows, []any{}, []any{"Third party", "Amount"})
		for _, pt := range s.ThirdParties {
			rows = append(rows, []any{pt.ThirdParty.Label(), pt.Total.Units()})
		}
	}

	if len(r.Goals) > 0 {
		rows = append(rows, []any{}, []any{"Goal", "Period", "From", "To", "Actual", "Limit", "Percent", "Status"})
		for _, g := range r.Goals {
			rows = append(rows, []any{
				g.Label,
				string(g.Goal.Period),
				g.Window.Start.String(),
				g.Window.End.String(),
				g.Actual.Units(),
				g.Goal.Limit.Units(),
				fmt.Sprintf("%.1f%%", g.Percent),
				string(g.Status),
			})
		}
	}
	return rows
}

func categoryName(ct core.CategoryTotal) string {
	if ct.Name == "" {
		return "(uncategorized)"
	}
	return ct.Name
}
