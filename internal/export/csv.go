package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes every sheet of r as a section: a line with the sheet name,
// the header, the rows, then a blank line.
func WriteCSV(w io.Writer, r Report) error {
	writer := csv.NewWriter(w)
	for _, sheet := range r.Sheets {
		if err := writer.Write([]string{sheet.Name}); err != nil {
			return fmt.Errorf("failed to write CSV section: %w", err)
		}
		if err := writer.Write(sheet.Header); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		for _, row := range sheet.Rows {
			record := make([]string, len(row))
			for i, v := range row {
				record[i] = cellString(v)
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		if err := writer.Write(nil); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func cellString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}
