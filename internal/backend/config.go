package backend

import (
	"errors"
	"fmt"

	"fintrack/internal/config"
)

// FromAppConfig picks the Sheets exporter when a spreadsheet is configured
// and the in-memory one otherwise.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	if !appConfig.SheetsEnabled() {
		return Config{Type: MemoryExporter}, nil
	}
	return Config{
		Type:            SheetsExporter,
		SpreadsheetID:   appConfig.GoogleSpreadsheetID,
		SheetName:       appConfig.GoogleSheetName,
		CredentialsJSON: appConfig.GoogleServiceAccountJSON,
		CredentialsFile: appConfig.GoogleServiceAccountFile,
	}, nil
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid exporter type: %s", c.Type)
	}
	if c.Type == SheetsExporter {
		if c.SpreadsheetID == "" {
			return errors.New("spreadsheet id is required for the sheets exporter")
		}
		if c.SheetName == "" {
			return errors.New("sheet name is required for the sheets exporter")
		}
		if c.CredentialsJSON == "" && c.CredentialsFile == "" {
			return errors.New("service account credentials are required for the sheets exporter")
		}
	}
	return nil
}
