// Package worker turns ledger events consumed from AMQP into spreadsheet rows.
package worker

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
)

const (
	seenCacheSize = 10000
	seenCacheTTL  = 24 * time.Hour
)

// ExportWorker appends every ledger event to an exporter once. Event ids
// already exported by this process are skipped, so a message redelivered
// after a lost ack does not produce a second row.
type ExportWorker struct {
	exporter sheets.EventExporter
	seen     *cache.LRUCache[string]
	logger   *log.Logger
}

func NewExportWorker(exporter sheets.EventExporter, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.NewDefault()
	}
	return &ExportWorker{
		exporter: exporter,
		seen:     cache.NewLRUCache[string](seenCacheSize, seenCacheTTL),
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Seen exposes the dedupe cache so the caller can register it for cleanup.
func (w *ExportWorker) Seen() cache.Cleaner {
	return w.seen
}

// HandleEvent is an amqp.Handler. A returned error requeues the message.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	if ref, ok := w.seen.Get(ev.EventID); ok {
		w.logger.InfoContext(ctx, "Skipping already exported event",
			log.FieldEventID, ev.EventID,
			log.FieldSheetsRef, ref)
		return nil
	}

	ref, err := w.exporter.Export(ctx, ev)
	if err != nil {
		return fmt.Errorf("export event %s: %w", ev.EventID, err)
	}
	w.seen.Set(ev.EventID, ref)

	w.logger.InfoContext(ctx, "Exported ledger event",
		log.FieldOperation, log.OpAppend,
		log.FieldEventID, ev.EventID,
		log.FieldAction, string(ev.Action),
		log.FieldEntity, string(ev.Entity),
		log.FieldEntityID, ev.ID,
		log.FieldUserID, ev.UserID,
		log.FieldSheetsRef, ref)
	return nil
}
