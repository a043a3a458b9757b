// Package redact produces display/transmission copies of a table with
// sensitive columns masked. Masking is lossy and one-way (redaction,
// not encryption) and never mutates the input table.
package redact

import (
	"strings"

	"tabsentry/internal/table"
)

// MaskRune is the character used to replace masked-out runes.
const MaskRune = '*'

// Rule pairs a column-name predicate with the masking function applied
// to every value of a matching column.
type Rule struct {
	// Terms are name substrings; a column qualifies when its name
	// contains any of them.
	Terms []string

	// Mask transforms one cell value.
	Mask func(string) string
}

// Policy is an ordered set of rules. The first matching rule wins, so a
// column class always gets one consistent masking scheme.
type Policy struct {
	Rules []Rule
}

// DefaultPolicy masks phone-like columns with a prefix/suffix scheme
// (first 3 + fixed mask + last 4) and name-like columns with a
// first/last scheme. Phone rules are listed first so a column matching
// both vocabularies gets the phone scheme.
func DefaultPolicy() Policy {
	return Policy{
		Rules: []Rule{
			{Terms: []string{"电话", "手机", "phone", "contact"}, Mask: MaskPhone},
			{Terms: []string{"姓名", "联系人", "name"}, Mask: MaskMiddle},
		},
	}
}

// Redact returns a new table with every qualifying column's values
// masked. Non-qualifying columns are shared with the input unchanged;
// the input table is never modified.
func (p Policy) Redact(t *table.Table) *table.Table {
	if t == nil {
		return nil
	}

	out := &table.Table{Columns: make([]table.Column, len(t.Columns))}
	for i, c := range t.Columns {
		rule, ok := p.match(c.Name)
		if !ok {
			out.Columns[i] = c
			continue
		}
		masked := make([]string, len(c.Cells))
		for j, v := range c.Cells {
			masked[j] = rule.Mask(v)
		}
		out.Columns[i] = table.Column{Name: c.Name, Cells: masked}
	}
	return out
}

// Qualifies reports whether a column name matches any rule. Used by the
// context builder to assert the hard no-leak contract in tests.
func (p Policy) Qualifies(columnName string) bool {
	_, ok := p.match(columnName)
	return ok
}

func (p Policy) match(columnName string) (Rule, bool) {
	name := strings.ToLower(columnName)
	for _, r := range p.Rules {
		for _, term := range r.Terms {
			if strings.Contains(name, strings.ToLower(term)) {
				return r, true
			}
		}
	}
	return Rule{}, false
}

// MaskMiddle keeps the first and last rune and masks everything in
// between. A two-rune value collapses to first + mask; values of length
// 0 or 1 are returned unchanged.
func MaskMiddle(v string) string {
	runes := []rune(v)
	if len(runes) <= 1 {
		return v
	}
	var b strings.Builder
	b.WriteRune(runes[0])
	for i := 1; i < len(runes)-1; i++ {
		b.WriteRune(MaskRune)
	}
	if len(runes) == 2 {
		b.WriteRune(MaskRune)
	} else {
		b.WriteRune(runes[len(runes)-1])
	}
	return b.String()
}

// MaskPhone keeps the first 3 and last 4 runes with a fixed-width mask
// between them. Values shorter than 8 runes fall back to MaskMiddle so
// short fragments still get masked consistently.
func MaskPhone(v string) string {
	runes := []rune(v)
	if len(runes) < 8 {
		return MaskMiddle(v)
	}
	return string(runes[:3]) + "****" + string(runes[len(runes)-4:])
}
