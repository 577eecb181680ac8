// Package backend selects and builds the export target used by the ledger
// worker.
package backend

import (
	"context"

	"fintrack/internal/sheets"
)

// Factory creates exporters based on configuration
type Factory interface {
	CreateExporter(ctx context.Context, config Config) (sheets.EventExporter, error)
}

// Config holds what exporter creation needs.
type Config struct {
	Type ExporterType

	// Google Sheets specific
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type ExporterType string

const (
	SheetsExporter ExporterType = "sheets"
	MemoryExporter ExporterType = "memory"
)

func (t ExporterType) String() string {
	return string(t)
}

func (t ExporterType) IsValid() bool {
	switch t {
	case SheetsExporter, MemoryExporter:
		return true
	default:
		return false
	}
}
