// Package memory provides an in-process exporter used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/amqp"
	ports "fintrack/internal/sheets"
)

// Exporter keeps exported events in memory.
type Exporter struct {
	mu     sync.Mutex
	events []amqp.LedgerEvent
	fail   error
}

var _ ports.EventExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

// FailWith makes subsequent exports return err. Pass nil to recover.
func (e *Exporter) FailWith(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fail = err
}

func (e *Exporter) Export(ctx context.Context, ev *amqp.LedgerEvent) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail != nil {
		return "", e.fail
	}
	e.events = append(e.events, *ev)
	return fmt.Sprintf("mem:%d", len(e.events)), nil
}

// Events returns a copy of everything exported so far, oldest first.
func (e *Exporter) Events() []amqp.LedgerEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]amqp.LedgerEvent, len(e.events))
	copy(out, e.events)
	return out
}
