// Package sheet loads the two-column contact dataset (required columns
// "Number" and "Message") from a published Google Sheet, a CSV file or an
// XLSX workbook.
package sheet

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmehdipour/wasend/internal/model"
	"github.com/xuri/excelize/v2"
)

var requiredColumns = []string{"Number", "Message"}

type Loader struct {
	client *http.Client
}

func NewLoader(client *http.Client) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Loader{client: client}
}

// FromURL fetches a published spreadsheet's CSV export. A Google Sheets
// /edit URL is rewritten to the export endpoint first.
func (l *Loader) FromURL(ctx context.Context, rawURL string) ([]model.Contact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ExportURL(rawURL), nil)
	if err != nil {
		return nil, err
	}

	res, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sheet: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return nil, fmt.Errorf("fetch sheet: status=%d", res.StatusCode)
	}

	return ParseCSV(res.Body)
}

// FromFile reads a local dataset, dispatching on the file extension.
func (l *Loader) FromFile(path string) ([]model.Contact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return ParseXLSX(f)
	default:
		return ParseCSV(f)
	}
}

// ExportURL rewrites a Google Sheets /edit URL into its CSV export endpoint.
// Anything else passes through unchanged.
func ExportURL(raw string) string {
	if !strings.Contains(raw, "docs.google.com/spreadsheets") || strings.Contains(raw, "export") {
		return raw
	}

	_, rest, ok := strings.Cut(raw, "/d/")
	if !ok {
		return raw
	}
	id := rest
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		id = rest[:i]
	}

	return "https://docs.google.com/spreadsheets/d/" + id + "/export?format=csv"
}

func ParseCSV(r io.Reader) ([]model.Contact, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	return fromRows(rows)
}

func ParseXLSX(r io.Reader) ([]model.Contact, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("parse xlsx: workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("parse xlsx: %w", err)
	}

	return fromRows(rows)
}

// fromRows validates the header and converts data rows to contacts. Rows
// whose cells are both empty are skipped.
func fromRows(rows [][]string) ([]model.Contact, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}

	idx := map[string]int{}
	for i, name := range rows[0] {
		idx[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	numberIdx, messageIdx := idx["Number"], idx["Message"]

	contacts := make([]model.Contact, 0, len(rows)-1)
	for _, row := range rows[1:] {
		c := model.Contact{
			Number:  cell(row, numberIdx),
			Message: cell(row, messageIdx),
		}
		if c.Number == "" && c.Message == "" {
			continue
		}
		contacts = append(contacts, c)
	}

	return contacts, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
