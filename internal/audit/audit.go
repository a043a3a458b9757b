// Package audit runs a fixed battery of deterministic, column-name-driven
// rule checks over a canonical table. Alerts are derived values generated
// fresh on every run; nothing here is persisted and no rule ever fails
// the audit. A rule whose preconditions are not met is skipped.
package audit

import (
	"log/slog"
	"time"
)

// Category classifies an alert. There is no severity axis.
type Category string

const (
	CategoryFormat    Category = "format-violation"
	CategoryStale     Category = "staleness"
	CategoryDuplicate Category = "duplication"
)

// Alert is a single detected data-quality risk.
type Alert struct {
	Category Category `json:"category"`
	Message  string   `json:"message"`
}

// Config holds the rule vocabulary and heuristics constants. The
// defaults match the domestic locale the rules were designed for; a
// stricter deployment can swap the predicates without touching the
// engine.
type Config struct {
	// PhoneColumns are name substrings identifying a phone/contact
	// column.
	PhoneColumns []string

	// PhoneLength is the expected rune count of a well-formed phone
	// value. The rule counts runes of the textual representation, not
	// digits.
	PhoneLength int

	// DateColumns are name substrings identifying a due/expiry date
	// column.
	DateColumns []string

	// Now supplies the clock; nil means time.Now. Injected so the
	// staleness rule is testable.
	Now func() time.Time
}

// DefaultConfig returns the standard rule vocabulary.
func DefaultConfig() Config {
	return Config{
		PhoneColumns: []string{"联系电话", "电话", "手机", "phone"},
		PhoneLength:  11,
		DateColumns:  []string{"到期", "日期", "due", "date"},
	}
}

// Engine evaluates the rule battery. It is stateless and reentrant; the
// same table always yields the same alerts.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// NewEngine creates an engine with the given config. Zero-value config
// fields fall back to defaults.
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if len(cfg.PhoneColumns) == 0 {
		cfg.PhoneColumns = def.PhoneColumns
	}
	if cfg.PhoneLength == 0 {
		cfg.PhoneLength = def.PhoneLength
	}
	if len(cfg.DateColumns) == 0 {
		cfg.DateColumns = def.DateColumns
	}
	return &Engine{cfg: cfg, logger: slog.Default()}
}

func (e *Engine) now() time.Time {
	if e.cfg.Now != nil {
		return e.cfg.Now()
	}
	return time.Now()
}
