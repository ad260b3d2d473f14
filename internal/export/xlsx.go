package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX writes every sheet of r into one workbook.
func WriteXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range r.Sheets {
		idx, err := f.NewSheet(sheet.Name)
		if err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet.Name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		header := make([]any, len(sheet.Header))
		for j, h := range sheet.Header {
			header[j] = h
		}
		if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
			return fmt.Errorf("write %s header: %w", sheet.Name, err)
		}
		for j, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
				return fmt.Errorf("write %s row %d: %w", sheet.Name, j+1, err)
			}
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("remove default sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
