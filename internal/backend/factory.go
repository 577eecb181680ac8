package backend

import (
	"context"
	"fmt"

	"fintrack/internal/log"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/sheets/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.NewDefault()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentSheets)}
}

func (f *DefaultFactory) CreateExporter(ctx context.Context, config Config) (sheets.EventExporter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch config.Type {
	case SheetsExporter:
		return f.createSheetsExporter(ctx, config)
	default:
		f.logger.Info("No spreadsheet configured, keeping exported events in memory")
		return memory.New(), nil
	}
}

func (f *DefaultFactory) createSheetsExporter(ctx context.Context, config Config) (sheets.EventExporter, error) {
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   config.SpreadsheetID,
		SheetName:       config.SheetName,
		CredentialsJSON: config.CredentialsJSON,
		CredentialsFile: config.CredentialsFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	if err := client.EnsureHeader(ctx); err != nil {
		return nil, err
	}
	f.logger.Info("Exporting ledger events to Google Sheets",
		"spreadsheet_id", config.SpreadsheetID,
		"sheet", config.SheetName)
	return client, nil
}
