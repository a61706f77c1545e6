// Package google implements the snapshot store on a Google Sheets
// spreadsheet, one worksheet per table. The Sheets API has no overwrite
// primitive, so Write clears the sheet and re-uploads the grid; the two
// calls are not atomic, which is within the snapshot store's stated
// guarantees (none).
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lushlawncarepros/petersen-budget/internal/tabular"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// worksheet name per logical table
	sheets map[string]string
}

var _ tabular.SnapshotStore = (*Client)(nil)

// NewFromEnv creates a Sheets-backed store using environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional worksheet names: GOOGLE_TRANSACTIONS_SHEET (default
// "transactions"), GOOGLE_CATEGORIES_SHEET (default "categories").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	txSheet := strings.TrimSpace(os.Getenv("GOOGLE_TRANSACTIONS_SHEET"))
	if txSheet == "" {
		txSheet = tabular.TransactionsTable
	}
	catSheet := strings.TrimSpace(os.Getenv("GOOGLE_CATEGORIES_SHEET"))
	if catSheet == "" {
		catSheet = tabular.CategoriesTable
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheets: map[string]string{
			tabular.TransactionsTable: txSheet,
			tabular.CategoriesTable:   catSheet,
		},
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) worksheet(table string) (string, error) {
	name, ok := c.sheets[table]
	if !ok {
		return "", fmt.Errorf("unknown table %q", table)
	}
	return name, nil
}

// Read fetches the full worksheet, header row included.
func (c *Client) Read(ctx context.Context, table string) ([][]any, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	name, err := c.worksheet(table)
	if err != nil {
		return nil, err
	}
	rng := fmt.Sprintf("%s!A:Z", name)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	out := make([][]any, len(resp.Values))
	for i, row := range resp.Values {
		out[i] = append([]any(nil), row...)
	}
	return out, nil
}

// Write clears the worksheet and uploads the grid in its place.
func (c *Client) Write(ctx context.Context, table string, grid [][]any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	name, err := c.worksheet(table)
	if err != nil {
		return err
	}
	rng := fmt.Sprintf("%s!A:Z", name)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	vr := &gsheet.ValueRange{Values: grid}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, fmt.Sprintf("%s!A1", name), vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update %s: %w", name, err)
	}
	slog.DebugContext(ctx, "Wrote worksheet snapshot", "table", table, "worksheet", name, "rows", len(grid))
	return nil
}
