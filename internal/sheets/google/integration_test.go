//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	ports "fintrack/internal/sheets"
)

// Integration tests require a real spreadsheet shared with a service account.
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_WriteMonthReport(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	spreadsheetID := os.Getenv("FINTRACK_GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("FINTRACK_GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	credentialsFile := os.Getenv("FINTRACK_GOOGLE_CREDENTIALS_FILE")
	if credentialsFile == "" && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		t.Skip("service account credentials not configured, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := New(ctx, Config{
		SpreadsheetID:   spreadsheetID,
		ReportSheet:     "Integration",
		CredentialsFile: credentialsFile,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	report := sampleReport()
	report.UserID = 999999
	report.GeneratedAt = time.Now()

	// Twice: the first call may create the tab, the second must overwrite it.
	for i := 0; i < 2; i++ {
		if err := client.WriteMonthReport(ctx, report); err != nil {
			t.Fatalf("WriteMonthReport() attempt %d error = %v", i+1, err)
		}
	}

	rng := quoteSheet(reportSheetName("Integration", report.UserID, report.Year, report.Month)) + "!A1:B2"
	vr, err := client.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(vr.Values) == 0 || vr.Values[0][0] != "Report" {
		t.Errorf("unexpected header rows: %v", vr.Values)
	}

	if err := client.WriteMonthReport(ctx, ports.MonthReport{UserID: 1, Year: 2024, Month: 0}); err == nil {
		t.Error("expected invalid month to be rejected before any API call")
	}
}
