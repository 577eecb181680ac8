package services

import (
	"context"

	"fintrack/internal/amqp"
	"fintrack/internal/storage"
)

// Store is the persistence the services need. *storage.SQLiteRepository
// implements it.
type Store interface {
	storage.Querier
	InTx(ctx context.Context, fn func(storage.Querier) error) error
}

// EventPublisher receives ledger events after their transaction committed.
// *amqp.Client implements it.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}
