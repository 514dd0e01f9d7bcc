package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"

	goption "google.golang.org/api/option"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "  "})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing spreadsheet id" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewSheetsService_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := newSheetsService(context.Background(), Config{SpreadsheetID: "id"})
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewSheetsService_UnreadableFile(t *testing.T) {
	_, err := newSheetsService(context.Background(), Config{CredentialsFile: t.TempDir() + "/nope.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestWriteMonthReport_Guards(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	if err := c.WriteMonthReport(context.Background(), ports.MonthReport{Year: 2024, Month: 5}); err == nil {
		t.Fatal("expected error with nil service")
	}
}

func TestReportSheetName(t *testing.T) {
	tests := []struct {
		base   string
		user   int64
		year   int
		month  int
		expect string
	}{
		{"Report", 1, 2024, 5, "2024-05 Report #1"},
		{" Fintrack ", 12, 2023, 12, "2023-12 Fintrack #12"},
	}
	for _, tt := range tests {
		if got := reportSheetName(tt.base, tt.user, tt.year, tt.month); got != tt.expect {
			t.Errorf("reportSheetName(%q) = %q, want %q", tt.base, got, tt.expect)
		}
	}
	if got := quoteSheet("Ana's 2024"); got != "'Ana''s 2024'" {
		t.Errorf("quoteSheet() = %q", got)
	}
}

func sampleReport() ports.MonthReport {
	card := core.CreditCard{ID: 1, Name: "Nubank", LastDigits: "1234", DueDay: 10}
	s := core.NewSummary(core.SummaryInput{
		Window:          core.MonthWindow(2024, 5),
		Income:          core.Cents(500000),
		AccountExpense:  core.Cents(150000),
		CardTotal:       core.Cents(90000),
		ThirdPartyTotal: core.Cents(20000),
		ExpenseGroups:   []core.CategoryTotal{{CategoryID: 3, Name: "Rent", Total: core.Cents(150000)}},
		IncomeGroups:    []core.CategoryTotal{{CategoryID: 1, Name: "Salary", Total: core.Cents(500000)}},
		Cards:           []core.CardTotal{{Card: card, Total: core.Cents(90000), Unpaid: 2}},
		ThirdParties:    []core.ThirdPartyTotal{{ThirdParty: core.ThirdParty{Name: "Ana", Relationship: "sister"}, Total: core.Cents(20000)}},
	})
	goal := core.Goal{Kind: core.GoalCards, Period: core.Monthly, Limit: core.Cents(100000)}
	return ports.MonthReport{
		UserID:      1,
		Year:        2024,
		Month:       5,
		Summary:     s,
		Goals:       []core.GoalProgress{core.EvaluateGoal(goal, core.LabelCards, core.MonthWindow(2024, 5), core.Cents(90000))},
		GeneratedAt: time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC),
	}
}

func findRow(rows [][]any, first string) []any {
	for _, r := range rows {
		if len(r) > 0 && r[0] == first {
			return r
		}
	}
	return nil
}

func TestReportRows(t *testing.T) {
	rows := reportRows(sampleReport())

	if rows[0][1] != "05/2024" {
		t.Errorf("title row = %v", rows[0])
	}
	checks := map[string]float64{
		"Income":               5000,
		"Total expenses":       2400,
		"Bank balance":         2600,
		"Personal expenses":    2200,
		"Personal balance":     2800,
		"Rent":                 1500,
		"Salary":               5000,
		core.CardsCategoryName: 900,
		"Ana (sister)":         200,
	}
	for label, want := range checks {
		row := findRow(rows, label)
		if row == nil {
			t.Errorf("missing row %q", label)
			continue
		}
		if got, ok := row[1].(float64); !ok || got != want {
			t.Errorf("row %q amount = %v, want %v", label, row[1], want)
		}
	}

	card := findRow(rows, "Nubank (*1234)")
	if card == nil || card[3] != "2 unpaid" {
		t.Errorf("card row = %v", card)
	}
	goal := findRow(rows, core.LabelCards)
	if goal == nil || goal[6] != "90.0%" || goal[7] != string(core.StatusWarning) {
		t.Errorf("goal row = %v", goal)
	}
}

type fakeSheetsAPI struct {
	mu       sync.Mutex
	existing []string
	calls    []string
	written  [][]any
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet:
		f.calls = append(f.calls, "get")
		sheets := make([]map[string]any, 0, len(f.existing))
		for _, title := range f.existing {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": title}})
		}
		json.NewEncoder(w).Encode(map[string]any{"sheets": sheets})
	case strings.HasSuffix(path, ":batchUpdate"):
		f.calls = append(f.calls, "add")
		io.WriteString(w, `{}`)
	case strings.HasSuffix(path, ":clear"):
		f.calls = append(f.calls, "clear")
		io.WriteString(w, `{}`)
	case r.Method == http.MethodPut:
		f.calls = append(f.calls, "update")
		var body struct {
			Values [][]any `json:"values"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.written = body.Values
		io.WriteString(w, `{}`)
	default:
		http.Error(w, "unexpected "+r.Method+" "+path, http.StatusNotFound)
	}
}

func TestWriteMonthReport_FakeAPI(t *testing.T) {
	api := &fakeSheetsAPI{existing: []string{"Sheet1"}}
	srv := httptest.NewServer(api)
	defer srv.Close()

	ctx := context.Background()
	c, err := New(ctx, Config{SpreadsheetID: "abc"},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := c.WriteMonthReport(ctx, sampleReport()); err != nil {
		t.Fatalf("WriteMonthReport() error = %v", err)
	}
	if err := c.WriteMonthReport(ctx, sampleReport()); err != nil {
		t.Fatalf("second WriteMonthReport() error = %v", err)
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	want := []string{"get", "add", "clear", "update", "clear", "update"}
	if strings.Join(api.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", api.calls, want)
	}
	if len(api.written) == 0 || api.written[0][0] != "Report" {
		t.Errorf("written rows = %v", api.written)
	}
}
