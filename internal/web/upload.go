package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"

	"tabsentry/internal/table"
)

// readUploadedFile pulls the "file" part from a multipart request and
// returns its contents with the client-supplied filename.
func readUploadedFile(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(table.MaxFileSize); err != nil {
		return nil, "", fmt.Errorf("parsing multipart form: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("missing file field: %w", err)
	}
	defer file.Close()

	data, err := table.ReadAllLimited(file)
	if err != nil {
		return nil, "", err
	}
	return data, filepath.Base(header.Filename), nil
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

// sampleSourceName labels the built-in demo dataset so a real upload of
// any file never collides with it.
const sampleSourceName = "示例数据.csv"

// sampleCSV is a small dataset that trips every audit rule at least
// once, so the demo path shows the full alert surface.
const sampleCSV = `姓名,联系电话,到期日期,金额
张伟,13800138000,2025-01-15,1200
李娜,1391234,2027-06-30,860
王强,13911112222,2024-11-02,430
张伟,13800138000,2025-01-15,1200
陈晨,13655556666,2026-12-31,990
`
