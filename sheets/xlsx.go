package sheets

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// MakeXLSX writes the rows to a single worksheet Excel workbook. The worksheet is named after the
// spreadsheet tab, falling back to the excelize default if the name is not a valid worksheet name.
func MakeXLSX(f io.Writer, sheet string, rows [][]any) error {
	if len(rows) == 0 {
		return fmt.Errorf("empty sheet")
	}

	workbook := excelize.NewFile()
	defer workbook.Close()

	name := workbook.GetSheetName(0)
	if sheet != "" && workbook.SetSheetName(name, sheet) == nil {
		name = sheet
	}

	for i, row := range rows {
		record := make([]any, len(row))
		for j, v := range row {
			record[j] = clean(v)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}

		if err := workbook.SetSheetRow(name, cell, &record); err != nil {
			return err
		}
	}

	return workbook.Write(f)
}
