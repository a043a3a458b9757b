package table

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

// FillMode selects which rows the visual-extraction mode keeps, based on
// the fill formatting of each row's reference cell.
type FillMode string

const (
	FillAll      FillMode = "all"
	FilledOnly   FillMode = "filled"
	UnfilledOnly FillMode = "unfilled"
)

// ExtractedColumnName is the fixed name of the single output column
// produced by ExtractByFill.
const ExtractedColumnName = "提取值"

// noFillColors are fill color values that count as "no fill" even when a
// pattern is set. Spreadsheet editors write these for cells the user
// never highlighted.
var noFillColors = map[string]bool{
	"":         true,
	"FFFFFF":   true,
	"FFFFFFFF": true,
	"00000000": true,
}

// ExtractByFill reads the first worksheet and returns a single-column
// Table holding the values of the reference column (zero-based colIndex)
// whose cells match mode. Rows whose reference cell is empty are
// skipped. An empty workbook yields an empty Table, not an error.
func ExtractByFill(data []byte, colIndex int, mode FillMode) (*Table, error) {
	if colIndex < 0 {
		return nil, parseErrorf("workbook", "column index %d out of range", colIndex)
	}
	switch mode {
	case FillAll, FilledOnly, UnfilledOnly:
	default:
		return nil, parseErrorf("workbook", "unknown fill mode %q", mode)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Name: "workbook", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, parseErrorf("workbook", "workbook has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Name: "workbook", Err: err}
	}

	out := &Table{Columns: []Column{{Name: ExtractedColumnName, Cells: []string{}}}}

	for rowIdx, row := range rows {
		if colIndex >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[colIndex])
		if value == "" {
			continue
		}

		keep := true
		if mode != FillAll {
			filled, err := cellHasFill(f, sheet, colIndex, rowIdx)
			if err != nil {
				// Style lookup failures classify the cell as unfilled
				// rather than aborting the extraction.
				filled = false
			}
			if mode == FilledOnly {
				keep = filled
			} else {
				keep = !filled
			}
		}

		if keep {
			out.Columns[0].Cells = append(out.Columns[0].Cells, value)
		}
	}

	return out, nil
}

// cellHasFill reports whether the cell at (colIndex, rowIdx), both
// zero-based, carries a visible background fill.
func cellHasFill(f *excelize.File, sheet string, colIndex, rowIdx int) (bool, error) {
	axis, err := excelize.CoordinatesToCellName(colIndex+1, rowIdx+1)
	if err != nil {
		return false, err
	}

	styleID, err := f.GetCellStyle(sheet, axis)
	if err != nil {
		return false, err
	}
	if styleID == 0 {
		return false, nil
	}

	style, err := f.GetStyle(styleID)
	if err != nil {
		return false, err
	}
	if style == nil || style.Fill.Pattern == 0 {
		return false, nil
	}

	for _, c := range style.Fill.Color {
		if !noFillColors[normalizeFillColor(c)] {
			return true, nil
		}
	}
	return false, nil
}

func normalizeFillColor(c string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(c), "#"))
}
