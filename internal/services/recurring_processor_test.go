package services

import (
	"context"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestDefaultRecurringProcessorConfig(t *testing.T) {
	config := DefaultRecurringProcessorConfig()
	if config.Interval != time.Hour {
		t.Errorf("expected Interval 1h, got %v", config.Interval)
	}
}

func TestRecurringProcessor_IsRunning(t *testing.T) {
	processor := NewRecurringProcessor(nil, nil, nil, DefaultRecurringProcessorConfig())
	if processor.IsRunning() {
		t.Error("processor should not be running initially")
	}
}

func TestRecurringProcessor_StartTwice(t *testing.T) {
	processor := NewRecurringProcessor(nil, nil, nil, DefaultRecurringProcessorConfig())

	processor.mu.Lock()
	processor.running = true
	processor.mu.Unlock()

	if err := processor.Start(context.Background()); err == nil {
		t.Error("expected error when starting already running processor")
	}
}

func TestRecurringProcessor_StopNotRunning(t *testing.T) {
	processor := NewRecurringProcessor(nil, nil, nil, DefaultRecurringProcessorConfig())
	if err := processor.Stop(context.Background()); err != nil {
		t.Errorf("Stop should not error when not running: %v", err)
	}
}

func TestRecurringProcessor_NotInitialized(t *testing.T) {
	processor := NewRecurringProcessor(nil, nil, nil, DefaultRecurringProcessorConfig())
	if _, err := processor.ProcessAll(context.Background()); err == nil {
		t.Error("expected error from uninitialized processor")
	}
}

func TestRecurringProcessor_ProcessAll(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addTx(t, f.rent, "Rent", 150000, core.NewDate(2024, 4, 5), core.Fixed)
	f.addTx(t, f.salary, "Salary", 500000, core.NewDate(2024, 4, 1), core.Fixed)

	processor := NewRecurringProcessor(f.store, NewRecurrenceCopier(f.store, nil), f.clock, DefaultRecurringProcessorConfig())

	created, err := processor.ProcessAll(ctx)
	if err != nil {
		t.Fatalf("ProcessAll() error = %v", err)
	}
	if created != 2 {
		t.Errorf("expected 2 entries created, got %d", created)
	}

	created, err = processor.ProcessAll(ctx)
	if err != nil {
		t.Fatalf("ProcessAll() error = %v", err)
	}
	if created != 0 {
		t.Errorf("second run must not create entries, got %d", created)
	}
}

func TestRecurringProcessor_StartStop(t *testing.T) {
	f := newFixture(t)
	config := RecurringProcessorConfig{Interval: 50 * time.Millisecond}
	processor := NewRecurringProcessor(f.store, NewRecurrenceCopier(f.store, nil), f.clock, config)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := processor.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !processor.IsRunning() {
		t.Error("processor should be running after Start")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	if err := processor.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if processor.IsRunning() {
		t.Error("processor should not be running after Stop")
	}
}
