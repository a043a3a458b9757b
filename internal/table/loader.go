package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// MaxFileSize is the maximum accepted input file size (50MB).
var MaxFileSize int64 = 50 * 1024 * 1024

// ParseError indicates a malformed or unsupported input file. A load
// that fails with ParseError leaves any previously loaded dataset
// untouched; only the load operation itself is aborted.
type ParseError struct {
	Name string // source file name
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErrorf(name, format string, args ...any) *ParseError {
	return &ParseError{Name: name, Err: fmt.Errorf(format, args...)}
}

// Load parses raw bytes into a canonical Table. The format is chosen by
// the file name extension: .csv is parsed as comma-delimited text, .xlsx
// as a spreadsheet (first worksheet), .pdf as per-page document text.
// For tabular formats, columns are taken verbatim from the header row;
// the first data row starts the body.
func Load(data []byte, name string) (*Table, error) {
	if int64(len(data)) > MaxFileSize {
		return nil, parseErrorf(name, "file exceeds %dMB limit", MaxFileSize/(1024*1024))
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return loadCSV(data, name)
	case ".xlsx":
		return loadXLSX(data, name)
	case ".pdf":
		return loadPDF(data, name)
	default:
		return nil, parseErrorf(name, "unsupported file type %q", filepath.Ext(name))
	}
}

// loadCSV parses comma-delimited text. The reader tolerates ragged rows
// (short rows are padded to header width) and files written by Windows
// tools (BOM, stray invalid UTF-8).
func loadCSV(data []byte, name string) (*Table, error) {
	r := csv.NewReader(WrapForReading(bytes.NewReader(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}
	return fromRecords(records, name)
}

// loadXLSX parses the first worksheet of a spreadsheet.
func loadXLSX(data []byte, name string) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, parseErrorf(name, "workbook has no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}
	return fromRecords(records, name)
}

// fromRecords builds a Table from header+body records. Duplicate header
// names are disambiguated with a positional suffix so the unique-name
// invariant holds without rejecting the file.
func fromRecords(records [][]string, name string) (*Table, error) {
	for len(records) > 0 && isEmptyRow(records[0]) {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, parseErrorf(name, "empty file")
	}

	header := records[0]
	if len(header) == 0 {
		return nil, parseErrorf(name, "zero columns in header row")
	}

	t := &Table{Columns: make([]Column, len(header))}
	seen := make(map[string]int, len(header))
	taken := make(map[string]bool, len(header))
	for i, h := range header {
		colName := strings.TrimSpace(h)
		if colName == "" {
			colName = fmt.Sprintf("column_%d", i+1)
		}
		// The positional suffix itself can collide with a literal
		// header ("name,name,name_2"), so bump until unique.
		base := colName
		for taken[colName] {
			seen[base]++
			colName = fmt.Sprintf("%s_%d", base, seen[base]+1)
		}
		taken[colName] = true
		t.Columns[i] = Column{Name: colName}
	}

	for _, row := range records[1:] {
		if isEmptyRow(row) {
			continue
		}
		for i := range t.Columns {
			v := ""
			if i < len(row) {
				v = strings.TrimSpace(row[i])
			}
			t.Columns[i].Cells = append(t.Columns[i].Cells, v)
		}
	}

	if err := t.validate(); err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}
	return t, nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ReadAllLimited reads everything from r, failing if the stream exceeds
// MaxFileSize. Handlers use it to bound multipart uploads before Load.
func ReadAllLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > MaxFileSize {
		return nil, fmt.Errorf("file exceeds %dMB limit", MaxFileSize/(1024*1024))
	}
	return data, nil
}
