package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/frigelar/esteira/internal/config"
)

// ErrCellNotFound is returned by Worksheet.Find when no cell matches.
var ErrCellNotFound = errors.New("cell not found")

// Client is a handle to one spreadsheet in the remote store.
type Client interface {
	// Worksheets lists all worksheets in tab order.
	Worksheets(ctx context.Context) ([]Worksheet, error)
	// Worksheet resolves a single worksheet by tab name.
	Worksheet(ctx context.Context, name string) (Worksheet, error)
}

// Worksheet exposes the cell-level operations the claim protocol needs.
// Rows and columns are 1-based, matching the A1 grid.
type Worksheet interface {
	Title() string
	// Rows returns every populated row, header included.
	Rows(ctx context.Context) ([][]string, error)
	// ColValues returns the populated cells of one column, top to bottom.
	ColValues(ctx context.Context, col int) ([]string, error)
	// Find locates the first cell whose value equals the given string,
	// scanning row-major. Returns ErrCellNotFound when absent.
	Find(ctx context.Context, value string) (row, col int, err error)
	// UpdateCell writes a single cell.
	UpdateCell(ctx context.Context, row, col int, value string) error
}

// GoogleClient talks to the Google Sheets API.
type GoogleClient struct {
	svc           *gsheets.Service
	spreadsheetID string
}

// NewGoogleClient builds a client from the configured credentials. The
// environment-provided service account JSON wins over the credentials file.
func NewGoogleClient(ctx context.Context, cfg config.SheetsConfig) (*GoogleClient, error) {
	data, err := credentialBytes(cfg)
	if err != nil {
		return nil, err
	}
	creds, err := google.CredentialsFromJSON(ctx, data, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	svc, err := gsheets.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("init sheets service: %w", err)
	}
	return &GoogleClient{svc: svc, spreadsheetID: cfg.SpreadsheetID}, nil
}

func credentialBytes(cfg config.SheetsConfig) ([]byte, error) {
	if cfg.CredentialsJSON != "" {
		return []byte(cfg.CredentialsJSON), nil
	}
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("no GOOGLE_SERVICE_ACCOUNT_JSON set and credentials file unreadable: %w", err)
	}
	return data, nil
}

// Worksheets lists the spreadsheet's worksheets in tab order.
func (c *GoogleClient) Worksheets(ctx context.Context) ([]Worksheet, error) {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	out := make([]Worksheet, 0, len(meta.Sheets))
	for _, sh := range meta.Sheets {
		if sh.Properties == nil {
			continue
		}
		out = append(out, &googleWorksheet{client: c, title: sh.Properties.Title})
	}
	return out, nil
}

// Worksheet resolves a worksheet by tab name.
func (c *GoogleClient) Worksheet(ctx context.Context, name string) (Worksheet, error) {
	all, err := c.Worksheets(ctx)
	if err != nil {
		return nil, err
	}
	for _, ws := range all {
		if ws.Title() == name {
			return ws, nil
		}
	}
	return nil, fmt.Errorf("worksheet %q not found", name)
}

type googleWorksheet struct {
	client *GoogleClient
	title  string
}

func (w *googleWorksheet) Title() string { return w.title }

func (w *googleWorksheet) Rows(ctx context.Context) ([][]string, error) {
	resp, err := w.client.svc.Spreadsheets.Values.Get(w.client.spreadsheetID, w.rangeRef("")).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (w *googleWorksheet) ColValues(ctx context.Context, col int) ([]string, error) {
	letter := colLetter(col)
	resp, err := w.client.svc.Spreadsheets.Values.Get(
		w.client.spreadsheetID, w.rangeRef(letter+":"+letter)).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		if len(raw) == 0 {
			values = append(values, "")
			continue
		}
		values = append(values, fmt.Sprint(raw[0]))
	}
	return values, nil
}

func (w *googleWorksheet) Find(ctx context.Context, value string) (int, int, error) {
	rows, err := w.Rows(ctx)
	if err != nil {
		return 0, 0, err
	}
	for r, row := range rows {
		for c, cell := range row {
			if cell == value {
				return r + 1, c + 1, nil
			}
		}
	}
	return 0, 0, ErrCellNotFound
}

func (w *googleWorksheet) UpdateCell(ctx context.Context, row, col int, value string) error {
	ref := w.rangeRef(fmt.Sprintf("%s%d", colLetter(col), row))
	body := &gsheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := w.client.svc.Spreadsheets.Values.Update(w.client.spreadsheetID, ref, body).
		ValueInputOption("RAW").Context(ctx).Do()
	return err
}

func (w *googleWorksheet) rangeRef(a1 string) string {
	if a1 == "" {
		return "'" + w.title + "'"
	}
	return "'" + w.title + "'!" + a1
}

func colLetter(col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}
	return letters
}
