package table

import (
	"bytes"

	"github.com/xuri/excelize/v2"
)

// exportSheetName is the worksheet name used for spreadsheet export.
const exportSheetName = "Sheet1"

// WriteXLSX renders the table as a spreadsheet with the header in the
// first row. Used by the export endpoint to serve the current (possibly
// redacted or extracted) table for download.
func WriteXLSX(t *Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(exportSheetName)
	if err != nil {
		return nil, err
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Name
	}
	cell, err := excelize.CoordinatesToCellName(1, 1)
	if err != nil {
		return nil, err
	}
	if err := sw.SetRow(cell, header); err != nil {
		return nil, err
	}

	for i := 0; i < t.RowCount(); i++ {
		row := t.Row(i)
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return nil, err
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
