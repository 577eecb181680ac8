// Package sheets defines the export target for committed ledger events.
package sheets

import (
	"context"

	"fintrack/internal/amqp"
)

// EventExporter appends one ledger event to an external log and returns a
// reference to where it was written.
type EventExporter interface {
	Export(ctx context.Context, ev *amqp.LedgerEvent) (string, error)
}
