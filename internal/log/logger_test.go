package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"fintrack/internal/core"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Format: "json", Component: ComponentWorker, Output: &buf})

	logger.With(FieldUserID, int64(3)).InfoContext(context.Background(), "Exported", FieldCount, 2)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not json: %v (%s)", err, buf.String())
	}
	if rec[FieldComponent] != ComponentWorker {
		t.Errorf("component = %v, want %s", rec[FieldComponent], ComponentWorker)
	}
	if rec[FieldUserID] != float64(3) || rec[FieldCount] != float64(2) {
		t.Errorf("unexpected record: %v", rec)
	}

	buf.Reset()
	logger.WithComponent(ComponentSheets).Debug("debug line")
	if !bytes.Contains(buf.Bytes(), []byte(`"component":"sheets"`)) {
		t.Errorf("WithComponent output = %s", buf.String())
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Output: &buf})
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %s", buf.String())
	}
	logger.Warn("shown")
	if !bytes.Contains(buf.Bytes(), []byte("component=app")) {
		t.Errorf("text output missing component: %s", buf.String())
	}
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&core.ValidationError{Field: "amount", Err: core.ErrInvalidAmount}, ErrorTypeValidation},
		{fmt.Errorf("wrap: %w", &core.NotFoundError{Entity: "card", ID: 9}), ErrorTypeNotFound},
		{&core.IntegrityError{Entity: "category", Name: "Rent", Reason: "has transactions"}, ErrorTypeConflict},
		{errors.New("disk full"), ErrorTypeInternal},
	}
	for _, tt := range tests {
		if got := ErrorType(tt.err); got != tt.want {
			t.Errorf("ErrorType(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestLogFields(t *testing.T) {
	fields := NewFields().
		WithOperation(OpImport).
		WithUser(1).
		WithMonth(2024, 5).
		WithPurchase("TV", core.Cents(30000), 4, 3).
		WithError(&core.NotFoundError{Entity: "card", ID: 4})

	if fields[FieldErrorType] != ErrorTypeNotFound {
		t.Errorf("error type = %v", fields[FieldErrorType])
	}
	if fields[FieldAmountCents] != int64(30000) || fields[FieldInstallments] != 3 {
		t.Errorf("purchase fields = %v", fields)
	}
	if got := len(fields.ToSlice()); got != 2*len(fields) {
		t.Errorf("ToSlice() len = %d, want %d", got, 2*len(fields))
	}
	if _, ok := NewFields().WithError(nil)[FieldError]; ok {
		t.Error("nil error should not be recorded")
	}
}
