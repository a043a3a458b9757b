// Package chat assembles the bounded context window for each model call
// and drives the streaming question/answer cycle against the session
// store. The builder only ever sees the redacted table; unredacted
// sensitive columns never reach the outgoing payload.
package chat

import (
	"fmt"
	"strings"

	"tabsentry/internal/audit"
	"tabsentry/internal/llm"
	"tabsentry/internal/session"
	"tabsentry/internal/table"
)

// BuilderConfig holds the context-window bounds. Truncation to these
// bounds is silent and lossy, not an error.
type BuilderConfig struct {
	// HeadRows bounds how many data rows the system message embeds.
	HeadRows int

	// MaxContextChars hard-caps the embedded data block, measured in
	// runes so multi-byte text is never split.
	MaxContextChars int
}

// DefaultBuilderConfig returns the standard window bounds.
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{HeadRows: 20, MaxContextChars: 8000}
}

// Builder constructs the outgoing message sequence.
type Builder struct {
	cfg BuilderConfig
}

// NewBuilder creates a builder; zero-value config fields fall back to
// defaults.
func NewBuilder(cfg BuilderConfig) *Builder {
	def := DefaultBuilderConfig()
	if cfg.HeadRows <= 0 {
		cfg.HeadRows = def.HeadRows
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = def.MaxContextChars
	}
	return &Builder{cfg: cfg}
}

const systemPreamble = "你是一个数据安全分析专家。以下是当前数据集的概览、摘要与风险提示，请基于这些内容回答用户问题。\n\n"

// BuildMessages assembles the system message (redacted head rows,
// compact summary, and alert list, truncated to the configured bound),
// followed by the conversation history and the current question.
func (b *Builder) BuildMessages(redacted *table.Table, alerts []audit.Alert, history []session.Turn, question string) []llm.Message {
	block := b.DataBlock(redacted, alerts)

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemPreamble + block})
	for _, turn := range history {
		messages = append(messages, llm.Message{Role: string(turn.Role), Content: turn.Content})
	}
	messages = append(messages, llm.Message{Role: string(session.RoleUser), Content: question})
	return messages
}

// DataBlock renders the embedded data block: head rows, summary, and
// alert descriptions, hard-truncated to MaxContextChars runes.
func (b *Builder) DataBlock(redacted *table.Table, alerts []audit.Alert) string {
	var sb strings.Builder

	sb.WriteString("数据预览：\n")
	sb.WriteString(renderHead(redacted, b.cfg.HeadRows))

	sb.WriteString("\n数据摘要：\n")
	sb.WriteString(renderSummary(redacted))

	if len(alerts) > 0 {
		sb.WriteString("\n风险提示：\n")
		for _, a := range alerts {
			fmt.Fprintf(&sb, "- [%s] %s\n", a.Category, a.Message)
		}
	}

	return truncateRunes(sb.String(), b.cfg.MaxContextChars)
}

// renderHead renders the first n rows as a pipe-delimited text table.
func renderHead(t *table.Table, n int) string {
	if t == nil || t.ColumnCount() == 0 {
		return "(无数据)\n"
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(t.ColumnNames(), " | "))
	sb.WriteByte('\n')

	rows := t.RowCount()
	if rows > n {
		rows = n
	}
	for i := 0; i < rows; i++ {
		sb.WriteString(strings.Join(t.Row(i), " | "))
		sb.WriteByte('\n')
	}
	if t.RowCount() > n {
		fmt.Fprintf(&sb, "... 共 %d 行，仅展示前 %d 行\n", t.RowCount(), n)
	}
	return sb.String()
}

// renderSummary renders column names, row count, and per-column null
// counts.
func renderSummary(t *table.Table) string {
	if t == nil {
		return "(无数据)\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "行数：%d，列数：%d\n", t.RowCount(), t.ColumnCount())
	nulls := t.NullCounts()
	for _, c := range t.Columns {
		fmt.Fprintf(&sb, "- %s（空值 %d）\n", c.Name, nulls[c.Name])
	}
	return sb.String()
}

// truncateRunes cuts s to at most max runes.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
