// Package google mirrors the record list into a Google Sheets tab so the
// data can be browsed and charted outside the dashboard.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"acessorios/internal/core"
	"acessorios/internal/export"
	applog "acessorios/internal/log"
)

// Mirror rewrites one sheet with the full record list.
type Mirror struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *applog.Logger
}

// NewMirror authenticates with the service account key at credentialsFile.
func NewMirror(ctx context.Context, spreadsheetID, sheetName, credentialsFile string) (*Mirror, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newMirror(svc, spreadsheetID, sheetName), nil
}

func newMirror(svc *gsheet.Service, spreadsheetID, sheetName string) *Mirror {
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Registros"
	}
	return &Mirror{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        applog.Default(applog.ComponentSheets),
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// GOOGLE_SERVICE_ACCOUNT_JSON takes precedence over the key file.
func newSheetsService(ctx context.Context, credentialsFile string) (*gsheet.Service, error) {
	logger := applog.Default(applog.ComponentSheets)

	var credentialsJSON []byte
	switch inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); {
	case inline != "":
		logger.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(inline)
	case strings.TrimSpace(credentialsFile) != "":
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		logger.InfoContext(ctx, "Read credentials file", "path", credentialsFile, "size", len(data))
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Replace clears the mirror columns and writes the header plus one row per
// record, in store order.
func (m *Mirror) Replace(ctx context.Context, records []core.Record) error {
	if m.svc == nil {
		return errors.New("sheets service not initialized")
	}

	clearRange := sheetRange(m.sheetName, "A:G")
	_, err := m.svc.Spreadsheets.Values.Clear(m.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	values := Rows(records)
	writeRange := sheetRange(m.sheetName, fmt.Sprintf("A1:G%d", len(values)))
	vr := &gsheet.ValueRange{Range: writeRange, Values: values}
	_, err = m.svc.Spreadsheets.Values.Update(m.spreadsheetID, writeRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", writeRange, err)
	}

	m.logger.InfoContext(ctx, "Mirrored records to sheet",
		"sheet", m.sheetName,
		applog.FieldCount, len(records))
	return nil
}

// Rows renders the header and records as a Sheets value matrix. Numbers
// stay numbers so the sheet can sum them.
func Rows(records []core.Record) [][]any {
	out := make([][]any, 0, len(records)+1)
	header := make([]any, len(export.Columns))
	for i, c := range export.Columns {
		header[i] = c
	}
	out = append(out, header)
	for _, r := range records {
		out = append(out, []any{
			r.ID,
			r.ProductID,
			r.Name,
			r.Sector,
			r.Quantity,
			r.UnitPrice.Reais(),
			r.Total.Reais(),
		})
	}
	return out
}

// sheetRange builds an A1 range, quoting names that need it.
func sheetRange(sheet, cells string) string {
	if strings.ContainsAny(sheet, " '!") {
		sheet = "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	return sheet + "!" + cells
}
