package workbook

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// maxSheetNameLength is the longest worksheet title Excel accepts
const maxSheetNameLength = 31

// ExportSheet is one worksheet of an export. Data[0] is the header row when Data is not empty.
type ExportSheet struct {
	Name string          `json:"name"`
	Data [][]interface{} `json:"data"`
}

// Write serialises export sheets into an xlsx workbook, in the order given
func Write(w io.Writer, exportSheets []ExportSheet) error {
	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	keepDefault := false

	for i, s := range exportSheets {
		name := sheetName(s.Name)
		if name == defaultSheet {
			keepDefault = true
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
		if i == 0 {
			idx, err := f.GetSheetIndex(name)
			if err == nil {
				f.SetActiveSheet(idx)
			}
		}

		for r, row := range s.Data {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			values := row
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return fmt.Errorf("failed to write row %d of sheet %q: %w", r+1, name, err)
			}
		}
	}

	if !keepDefault && len(exportSheets) > 0 {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("failed to remove default sheet: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func sheetName(name string) string {
	r := []rune(name)
	if len(r) > maxSheetNameLength {
		return string(r[:maxSheetNameLength])
	}
	if name == "" {
		return "Sheet"
	}
	return name
}
