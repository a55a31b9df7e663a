package dataset

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook writes rows to a new workbook at path using the srcdata layout Load expects.
func WriteWorkbook(path string, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c.name
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range rows {
		r := rows[i]
		cells := make([]interface{}, len(columns))
		for ci, c := range columns {
			if c.text != nil {
				cells[ci] = *c.text(&r)
			} else {
				cells[ci] = *c.value(&r)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
