package table

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DocumentColumnName is the fixed column name of the single-column table
// produced by document-text ingestion: one row per page of extracted
// text. Document tables flow through the same pipeline as tabular ones;
// audit and redaction rules simply find no matching columns.
const DocumentColumnName = "文档内容"

// loadPDF extracts the plain text of every page into a document table.
// A document with no extractable text yields an empty table, not an
// error. The pdf package panics on some malformed inputs, so the
// recover converts those into ParseError.
func loadPDF(data []byte, name string) (t *Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			t, err = nil, parseErrorf(name, "malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Pages that fail extraction are skipped, not fatal.
			continue
		}
		pages = append(pages, text)
	}
	return pagesToTable(pages), nil
}

// pagesToTable builds the document table, dropping blank pages.
func pagesToTable(pages []string) *Table {
	col := Column{Name: DocumentColumnName, Cells: []string{}}
	for _, p := range pages {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		col.Cells = append(col.Cells, p)
	}
	return &Table{Columns: []Column{col}}
}
