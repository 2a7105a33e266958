package menu

import (
	"fmt"
	"io"
	"strings"

	"resto-backend/internal/apperr"

	"github.com/xuri/excelize/v2"
)

// Spreadsheet columns, in order. The first row is skipped when its first
// cell reads "name".
var spreadsheetColumns = []string{"name", "description", "price", "category", "image_url", "dietary_info", "available"}

type SpreadsheetRow struct {
	Line  int // 1-based row number in the sheet
	Input Input
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "", "1", "true", "yes", "y":
		return true, nil
	case "0", "false", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("available: %q is not a yes/no value", raw)
}

// ParseSpreadsheet reads menu rows from the first sheet of an .xlsx file.
func ParseSpreadsheet(r io.Reader) ([]SpreadsheetRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.Validation("file", "could not read spreadsheet: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.Validation("file", "spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.Validation("file", "could not read sheet %q: %v", sheets[0], err)
	}

	start := 0
	if len(rows) > 0 && strings.EqualFold(cell(rows[0], 0), spreadsheetColumns[0]) {
		start = 1
	}

	out := make([]SpreadsheetRow, 0, len(rows))
	for i := start; i < len(rows); i++ {
		row := rows[i]
		line := i + 1
		if cell(row, 0) == "" && cell(row, 2) == "" {
			continue // blank line
		}

		available, err := parseBool(cell(row, 6))
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("row %d", line), "%s", err.Error())
		}
		name := cell(row, 0)
		desc := cell(row, 1)
		price := cell(row, 2)
		category := cell(row, 3)
		image := cell(row, 4)

		out = append(out, SpreadsheetRow{
			Line: line,
			Input: Input{
				Name:        &name,
				Description: &desc,
				Price:       &price,
				Category:    &category,
				ImageURL:    &image,
				DietaryInfo: []string{cell(row, 5)},
				Available:   &available,
			},
		})
	}
	if len(out) == 0 {
		return nil, apperr.Validation("file", "spreadsheet contains no menu rows")
	}
	return out, nil
}
