// Package report renders the downloadable plain-text audit report:
// basic info, risk list, and the model-generated narrative.
package report

import (
	"fmt"
	"strings"
	"time"

	"tabsentry/internal/audit"
	"tabsentry/internal/table"
)

// Build renders the report. narrative may be empty when the
// conversational feature is disabled; the section is marked unavailable
// rather than omitted so the report layout stays stable.
func Build(source string, t *table.Table, alerts []audit.Alert, narrative string, now time.Time) string {
	var sb strings.Builder

	sb.WriteString("数据安全审计报告\n")
	sb.WriteString("================\n\n")

	sb.WriteString("一、基本信息\n")
	fmt.Fprintf(&sb, "数据来源：%s\n", source)
	fmt.Fprintf(&sb, "生成时间：%s\n", now.Format("2006-01-02 15:04:05"))
	if t != nil {
		fmt.Fprintf(&sb, "行数：%d\n", t.RowCount())
		fmt.Fprintf(&sb, "列数：%d\n", t.ColumnCount())
		fmt.Fprintf(&sb, "列名：%s\n", strings.Join(t.ColumnNames(), "、"))
	}
	sb.WriteString("\n")

	sb.WriteString("二、风险清单\n")
	if len(alerts) == 0 {
		sb.WriteString("未发现风险。\n")
	} else {
		for i, a := range alerts {
			fmt.Fprintf(&sb, "%d. [%s] %s\n", i+1, a.Category, a.Message)
		}
	}
	sb.WriteString("\n")

	sb.WriteString("三、分析结论\n")
	if narrative == "" {
		sb.WriteString("（AI 分析不可用）\n")
	} else {
		sb.WriteString(narrative)
		sb.WriteString("\n")
	}

	return sb.String()
}
