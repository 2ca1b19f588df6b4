package sheets

import (
	"context"
	"fmt"
	"time"

	"sheetqa/internal/domain"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Config selects the spreadsheet tab to read and how to authenticate.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	HeaderRows      int
	APIKey          string
	CredentialsFile string
	// Endpoint overrides the API base URL. Empty means the public endpoint.
	Endpoint string
	// Timeout bounds each values read. Zero means no limit beyond the caller's context.
	Timeout time.Duration
}

type rowSource struct {
	values        *gsheets.SpreadsheetsValuesService
	spreadsheetID string
	readRange     string
	timeout       time.Duration
}

// NewService builds a Sheets API client from cfg.
func NewService(ctx context.Context, cfg Config, opts ...option.ClientOption) (*gsheets.Service, error) {
	switch {
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	srv, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return srv, nil
}

// NewRowSource reads columns A (title) and B (body) of the configured tab,
// starting after the header rows.
func NewRowSource(srv *gsheets.Service, cfg Config) domain.RowSource {
	return &rowSource{
		values:        srv.Spreadsheets.Values,
		spreadsheetID: cfg.SpreadsheetID,
		readRange:     ReadRange(cfg.SheetName, cfg.HeaderRows),
		timeout:       cfg.Timeout,
	}
}

// ReadRange returns the A1 range covering the title and body columns below the header.
func ReadRange(sheetName string, headerRows int) string {
	if headerRows < 0 {
		headerRows = 0
	}
	return fmt.Sprintf("%s!A%d:B", sheetName, headerRows+1)
}

func (s *rowSource) Rows(ctx context.Context) ([]domain.Document, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", s.readRange, err)
	}

	docs := make([]domain.Document, 0, len(resp.Values))
	for _, row := range resp.Values {
		docs = append(docs, domain.Document{
			Title: cell(row, 0),
			Body:  cell(row, 1),
		})
	}
	return docs, nil
}

// cell returns the string form of row[i]. The API omits trailing empty cells.
func cell(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	if s, ok := row[i].(string); ok {
		return s
	}
	return fmt.Sprint(row[i])
}

func (s *rowSource) Name() string {
	return "sheets"
}
