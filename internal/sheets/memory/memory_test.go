package memory

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/amqp"
)

func TestExportRecordsEvents(t *testing.T) {
	e := New()
	ev := amqp.NewLedgerEvent(amqp.ActionCreated, amqp.EntityIncome, 1, 2)

	ref, err := e.Export(context.Background(), ev)
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected export: ref=%q err=%v", ref, err)
	}
	ref, err = e.Export(context.Background(), ev)
	if err != nil || ref != "mem:2" {
		t.Fatalf("unexpected export: ref=%q err=%v", ref, err)
	}

	got := e.Events()
	if len(got) != 2 || got[0].EventID != ev.EventID {
		t.Fatalf("unexpected events: %+v", got)
	}
	got[0].EventID = "changed"
	if e.Events()[0].EventID != ev.EventID {
		t.Fatal("Events must return a copy")
	}
}

func TestExportFailure(t *testing.T) {
	e := New()
	boom := errors.New("boom")
	e.FailWith(boom)

	ev := amqp.NewLedgerEvent(amqp.ActionDeleted, amqp.EntityExpense, 1, 2)
	if _, err := e.Export(context.Background(), ev); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(e.Events()) != 0 {
		t.Fatal("failed export must not be recorded")
	}

	e.FailWith(nil)
	if _, err := e.Export(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error after recovery: %v", err)
	}
}

func TestExportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ev := amqp.NewLedgerEvent(amqp.ActionCreated, amqp.EntityIncome, 1, 2)
	if _, err := New().Export(ctx, ev); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
