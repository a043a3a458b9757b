package audit

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"tabsentry/internal/table"
)

// isoDatePattern is the fixed-width ISO date shape required by the
// staleness rule. Lexical comparison of date strings is valid only when
// every value has this shape, so the rule disables itself otherwise.
var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Audit evaluates every rule independently and returns the triggered
// alerts in rule order. An empty or nil table yields no alerts.
func (e *Engine) Audit(t *table.Table) []Alert {
	if t == nil || t.RowCount() == 0 {
		return nil
	}

	var alerts []Alert
	if a, ok := e.checkPhoneFormat(t); ok {
		alerts = append(alerts, a)
	}
	if a, ok := e.checkStaleness(t); ok {
		alerts = append(alerts, a)
	}
	if a, ok := e.checkDuplicates(t); ok {
		alerts = append(alerts, a)
	}
	return alerts
}

// checkPhoneFormat counts values in the phone column whose textual
// representation does not have the expected rune count.
func (e *Engine) checkPhoneFormat(t *table.Table) (Alert, bool) {
	col, ok := findColumn(t, e.cfg.PhoneColumns)
	if !ok {
		e.logger.Debug("audit rule skipped: no phone column", "vocabulary", e.cfg.PhoneColumns)
		return Alert{}, false
	}

	bad := 0
	for _, v := range col.Cells {
		if v == "" {
			continue
		}
		if utf8.RuneCountInString(v) != e.cfg.PhoneLength {
			bad++
		}
	}
	if bad == 0 {
		return Alert{}, false
	}
	return Alert{
		Category: CategoryFormat,
		Message:  fmt.Sprintf("%s：%d 条记录的长度不是 %d 位", col.Name, bad, e.cfg.PhoneLength),
	}, true
}

// checkStaleness counts rows whose date value is lexically before today.
// The rule disables itself when any non-empty value is not fixed-width
// ISO, since lexical order is only meaningful for uniform ISO dates.
func (e *Engine) checkStaleness(t *table.Table) (Alert, bool) {
	col, ok := findColumn(t, e.cfg.DateColumns)
	if !ok {
		e.logger.Debug("audit rule skipped: no date column", "vocabulary", e.cfg.DateColumns)
		return Alert{}, false
	}

	today := e.now().Format("2006-01-02")
	stale := 0
	for _, v := range col.Cells {
		if v == "" {
			continue
		}
		if !isoDatePattern.MatchString(v) {
			e.logger.Debug("audit rule skipped: malformed date value", "column", col.Name, "value", v)
			return Alert{}, false
		}
		if v < today {
			stale++
		}
	}
	if stale == 0 {
		return Alert{}, false
	}
	return Alert{
		Category: CategoryStale,
		Message:  fmt.Sprintf("%s：%d 条记录已过期", col.Name, stale),
	}, true
}

// checkDuplicates counts rows that are exact duplicates across all
// columns. The first-seen row is the canonical copy, so one duplicated
// pair counts as 1.
func (e *Engine) checkDuplicates(t *table.Table) (Alert, bool) {
	seen := make(map[string]bool, t.RowCount())
	dups := 0
	for i := 0; i < t.RowCount(); i++ {
		key := strings.Join(t.Row(i), "\x1f")
		if seen[key] {
			dups++
		} else {
			seen[key] = true
		}
	}
	if dups == 0 {
		return Alert{}, false
	}
	return Alert{
		Category: CategoryDuplicate,
		Message:  fmt.Sprintf("发现 %d 条完全重复的记录", dups),
	}, true
}

// findColumn returns the first column whose name contains any of the
// vocabulary substrings (case-insensitive for ASCII vocabulary).
func findColumn(t *table.Table, vocabulary []string) (table.Column, bool) {
	for _, c := range t.Columns {
		name := strings.ToLower(c.Name)
		for _, term := range vocabulary {
			if strings.Contains(name, strings.ToLower(term)) {
				return c, true
			}
		}
	}
	return table.Column{}, false
}
