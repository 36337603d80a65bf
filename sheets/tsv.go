package sheets

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// MakeTSV writes the rows as tab separated values. Cells are formatted with %v and trimmed,
// rows are written as-is without padding.
func MakeTSV(f io.Writer, rows [][]any) error {
	if len(rows) == 0 {
		return fmt.Errorf("empty sheet")
	}

	w := csv.NewWriter(f)
	w.Comma = '\t'

	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = clean(v)
		}

		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}

func clean(v any) string {
	if v == nil {
		return ""
	}

	return strings.TrimSpace(fmt.Sprintf("%v", v))
}
