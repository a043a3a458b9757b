package chat

import (
	"strings"
	"testing"
	"unicode/utf8"

	"tabsentry/internal/audit"
	"tabsentry/internal/session"
	"tabsentry/internal/table"
)

func previewTable() *table.Table {
	return &table.Table{Columns: []table.Column{
		{Name: "姓名", Cells: []string{"张*", "李*", "王*"}},
		{Name: "金额", Cells: []string{"100", "", "300"}},
	}}
}

func TestBuildMessages_Shape(t *testing.T) {
	b := NewBuilder(BuilderConfig{})
	history := []session.Turn{
		{Role: session.RoleUser, Content: "之前的问题"},
		{Role: session.RoleAssistant, Content: "之前的回答"},
	}

	messages := b.BuildMessages(previewTable(), nil, history, "当前问题")

	if len(messages) != 4 {
		t.Fatalf("len(messages) = %d, want 4", len(messages))
	}
	if messages[0].Role != "system" {
		t.Errorf("messages[0].Role = %q, want system", messages[0].Role)
	}
	if messages[1].Content != "之前的问题" || messages[2].Content != "之前的回答" {
		t.Error("history not carried in order")
	}
	last := messages[len(messages)-1]
	if last.Role != "user" || last.Content != "当前问题" {
		t.Errorf("last message = %+v, want current user question", last)
	}
}

func TestDataBlock_Sections(t *testing.T) {
	b := NewBuilder(BuilderConfig{HeadRows: 2})
	alerts := []audit.Alert{{Category: audit.CategoryFormat, Message: "联系电话：1 条记录的长度不是 11 位"}}

	block := b.DataBlock(previewTable(), alerts)

	for _, want := range []string{"数据预览：", "数据摘要：", "风险提示：", "行数：3，列数：2", "张*"} {
		if !strings.Contains(block, want) {
			t.Errorf("DataBlock() missing %q", want)
		}
	}
	// Only HeadRows rows appear, with the elision marker.
	if strings.Contains(block, "王*") {
		t.Error("DataBlock() contains rows past HeadRows")
	}
	if !strings.Contains(block, "仅展示前 2 行") {
		t.Error("DataBlock() missing elision marker")
	}
}

func TestDataBlock_TruncationBound(t *testing.T) {
	const max = 100
	b := NewBuilder(BuilderConfig{MaxContextChars: max})

	// A wide multi-byte table that far exceeds the budget.
	wide := &table.Table{Columns: []table.Column{{Name: "备注"}}}
	for i := 0; i < 50; i++ {
		wide.Columns[0].Cells = append(wide.Columns[0].Cells, strings.Repeat("很长的中文内容", 10))
	}

	block := b.DataBlock(wide, nil)
	if got := utf8.RuneCountInString(block); got > max {
		t.Errorf("DataBlock() length = %d runes, want <= %d", got, max)
	}
	if !utf8.ValidString(block) {
		t.Error("DataBlock() truncation split a multi-byte rune")
	}
}

func TestDataBlock_EmptyTable(t *testing.T) {
	b := NewBuilder(BuilderConfig{})
	block := b.DataBlock(nil, nil)
	if !strings.Contains(block, "(无数据)") {
		t.Errorf("DataBlock(nil) = %q, want empty-data marker", block)
	}
}
