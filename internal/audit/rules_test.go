package audit

import (
	"reflect"
	"testing"
	"time"

	"tabsentry/internal/table"
)

// fixedNow pins the staleness clock to 2025-06-15.
func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func newTestEngine() *Engine {
	cfg := DefaultConfig()
	cfg.Now = fixedNow
	return NewEngine(cfg)
}

func col(name string, cells ...string) table.Column {
	return table.Column{Name: name, Cells: cells}
}

func TestAudit_PhoneFormat(t *testing.T) {
	tests := []struct {
		name    string
		cells   []string
		wantBad int
	}{
		{"one short value", []string{"13800138000", "1391234"}, 1},
		{"all well formed", []string{"13800138000", "13911112222"}, 0},
		{"empty cells ignored", []string{"", "13800138000", ""}, 0},
		{"too long counts", []string{"138001380001"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := &table.Table{Columns: []table.Column{col("联系电话", tt.cells...)}}
			alerts := newTestEngine().Audit(tbl)

			if tt.wantBad == 0 {
				if len(alerts) != 0 {
					t.Fatalf("Audit() = %v, want no alerts", alerts)
				}
				return
			}
			if len(alerts) != 1 {
				t.Fatalf("Audit() returned %d alerts, want 1", len(alerts))
			}
			if alerts[0].Category != CategoryFormat {
				t.Errorf("Category = %q, want %q", alerts[0].Category, CategoryFormat)
			}
			want := "联系电话：1 条记录的长度不是 11 位"
			if alerts[0].Message != want {
				t.Errorf("Message = %q, want %q", alerts[0].Message, want)
			}
		})
	}
}

func TestAudit_Staleness(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		col("到期日期", "2025-06-14", "2025-06-15", "2026-01-01", ""),
	}}

	alerts := newTestEngine().Audit(tbl)
	if len(alerts) != 1 {
		t.Fatalf("Audit() returned %d alerts, want 1", len(alerts))
	}
	if alerts[0].Category != CategoryStale {
		t.Errorf("Category = %q, want %q", alerts[0].Category, CategoryStale)
	}
	// Only the day before the pinned clock is stale; today is not.
	if want := "到期日期：1 条记录已过期"; alerts[0].Message != want {
		t.Errorf("Message = %q, want %q", alerts[0].Message, want)
	}
}

func TestAudit_StalenessSkipsOnMalformedDate(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
	}{
		{"slash format", []string{"2024/01/01", "2024-01-02"}},
		{"free text", []string{"明天", "2024-01-02"}},
		{"short year", []string{"24-01-02"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := &table.Table{Columns: []table.Column{col("到期日期", tt.cells...)}}
			if alerts := newTestEngine().Audit(tbl); len(alerts) != 0 {
				t.Errorf("Audit() = %v, want rule skipped", alerts)
			}
		})
	}
}

func TestAudit_Duplicates(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want int // duplicate count in the message, 0 = no alert
	}{
		{"one duplicated pair", [][]string{{"a", "1"}, {"a", "1"}, {"b", "2"}}, 1},
		{"triplicate counts twice", [][]string{{"a", "1"}, {"a", "1"}, {"a", "1"}}, 2},
		{"all distinct", [][]string{{"a", "1"}, {"a", "2"}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := &table.Table{Columns: []table.Column{
				col("k"), col("v"),
			}}
			for _, row := range tt.rows {
				tbl.Columns[0].Cells = append(tbl.Columns[0].Cells, row[0])
				tbl.Columns[1].Cells = append(tbl.Columns[1].Cells, row[1])
			}

			alerts := newTestEngine().Audit(tbl)
			if tt.want == 0 {
				if len(alerts) != 0 {
					t.Fatalf("Audit() = %v, want no alerts", alerts)
				}
				return
			}
			if len(alerts) != 1 || alerts[0].Category != CategoryDuplicate {
				t.Fatalf("Audit() = %v, want one duplication alert", alerts)
			}
		})
	}
}

func TestAudit_Deterministic(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		col("姓名", "张伟", "张伟", "李娜"),
		col("联系电话", "1391234", "1391234", "13800138000"),
		col("到期日期", "2024-01-01", "2024-01-01", "2026-01-01"),
	}}

	engine := newTestEngine()
	first := engine.Audit(tbl)
	second := engine.Audit(tbl)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated audits differ: %v vs %v", first, second)
	}
	wantCategories := []Category{CategoryFormat, CategoryStale, CategoryDuplicate}
	if len(first) != len(wantCategories) {
		t.Fatalf("Audit() returned %d alerts, want %d", len(first), len(wantCategories))
	}
	for i, c := range wantCategories {
		if first[i].Category != c {
			t.Errorf("alert %d category = %q, want %q", i, first[i].Category, c)
		}
	}
}

func TestAudit_NoMatchingColumns(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{col("金额", "1", "2")}}
	if alerts := newTestEngine().Audit(tbl); len(alerts) != 0 {
		t.Errorf("Audit() = %v, want no alerts", alerts)
	}
}

func TestAudit_EmptyTable(t *testing.T) {
	if alerts := newTestEngine().Audit(nil); alerts != nil {
		t.Errorf("Audit(nil) = %v, want nil", alerts)
	}
	empty := &table.Table{Columns: []table.Column{col("联系电话")}}
	if alerts := newTestEngine().Audit(empty); alerts != nil {
		t.Errorf("Audit(empty) = %v, want nil", alerts)
	}
}
