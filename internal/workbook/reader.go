package workbook

import (
	"fmt"
	"io"
	"strings"

	"github.com/SAP-F-2025/refdata-service/internal/sheets"
	"github.com/xuri/excelize/v2"
)

// Sheet is one parsed worksheet. Header keeps the titles as written and Keys holds the
// camelCase field key for the column at the same index.
type Sheet struct {
	Title  string
	Header []string
	Keys   []string
	Rows   []Row
}

// Row is one data row. Number is 1-based with the header row excluded.
type Row struct {
	Number int
	Values map[string]interface{}
}

// Read parses every worksheet of an xlsx workbook. Cells are returned as trimmed strings;
// a column present in the header but blank in a row maps to "".
func Read(r io.Reader) ([]Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var out []Sheet
	for _, title := range f.GetSheetList() {
		rows, err := f.GetRows(title)
		if err != nil {
			return nil, fmt.Errorf("failed to read rows of sheet %q: %w", title, err)
		}
		out = append(out, parseSheet(title, rows))
	}
	return out, nil
}

func parseSheet(title string, rows [][]string) Sheet {
	sheet := Sheet{Title: strings.TrimSpace(title)}
	if len(rows) == 0 {
		return sheet
	}

	for _, h := range rows[0] {
		h = strings.TrimSpace(h)
		sheet.Header = append(sheet.Header, h)
		sheet.Keys = append(sheet.Keys, headerKey(h))
	}

	for i, cells := range rows[1:] {
		if isBlank(cells) {
			continue
		}
		values := make(map[string]interface{}, len(sheet.Keys))
		for col, key := range sheet.Keys {
			if key == "" {
				continue
			}
			value := ""
			if col < len(cells) {
				value = strings.TrimSpace(cells[col])
			}
			values[key] = value
		}
		sheet.Rows = append(sheet.Rows, Row{Number: i + 1, Values: values})
	}
	return sheet
}

// headerKey camelCases a header title. Titles that are already identifiers ("objectId",
// "stringId") come through unchanged.
func headerKey(h string) string {
	if h == "" {
		return ""
	}
	return sheets.ToCamel(h)
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
