package table

import (
	"reflect"
	"testing"
)

func sampleTable() *Table {
	return &Table{Columns: []Column{
		{Name: "姓名", Cells: []string{"张伟", "李娜", ""}},
		{Name: "金额", Cells: []string{"100", "", "300"}},
	}}
}

func TestTable_RowAccess(t *testing.T) {
	tbl := sampleTable()

	if got := tbl.RowCount(); got != 3 {
		t.Errorf("RowCount() = %d, want 3", got)
	}
	if got := tbl.Row(1); !reflect.DeepEqual(got, []string{"李娜", ""}) {
		t.Errorf("Row(1) = %v, want [李娜 ]", got)
	}
	if _, ok := tbl.Column("missing"); ok {
		t.Error("Column(missing) = ok, want false")
	}
}

func TestTable_Clone(t *testing.T) {
	tbl := sampleTable()
	clone := tbl.Clone()

	clone.Columns[0].Cells[0] = "mutated"
	if tbl.Columns[0].Cells[0] != "张伟" {
		t.Error("Clone() shares cell storage with the original")
	}
}

func TestTable_NullCounts(t *testing.T) {
	got := sampleTable().NullCounts()
	want := map[string]int{"姓名": 1, "金额": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NullCounts() = %v, want %v", got, want)
	}
}

func TestTable_NilReceiver(t *testing.T) {
	var tbl *Table
	if got := tbl.RowCount(); got != 0 {
		t.Errorf("nil RowCount() = %d, want 0", got)
	}
	if got := tbl.ColumnCount(); got != 0 {
		t.Errorf("nil ColumnCount() = %d, want 0", got)
	}
	if got := tbl.Clone(); got != nil {
		t.Errorf("nil Clone() = %v, want nil", got)
	}
}
