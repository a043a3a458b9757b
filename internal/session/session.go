// Package session holds the per-session state machine: authentication
// state, the active dataset with its provenance and generation marker,
// and the conversation history. Replacing the dataset atomically clears
// the history and cached audit results, the central invariant that
// keeps stale Q&A context from leaking across unrelated datasets.
package session

import (
	"crypto/subtle"
	"errors"
	"sync"

	"github.com/google/uuid"

	"tabsentry/internal/audit"
	"tabsentry/internal/table"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one conversation message. The history is append-only during a
// session and cleared wholesale on logout or dataset replacement.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ErrNotAuthenticated is returned by operations that require a login.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrNoDataset is returned by operations that require an active table.
var ErrNoDataset = errors.New("no dataset loaded")

// ErrStaleGeneration is returned when a history commit refers to a
// dataset generation that has since been replaced. The in-flight result
// is discarded rather than mixed into the new dataset's session.
var ErrStaleGeneration = errors.New("dataset replaced while operation was in flight")

// Store owns the state of exactly one logical session. The usage model
// is a single actor issuing serialized operations, but the HTTP layer
// serves concurrently, so every transition runs under one mutex.
type Store struct {
	secret string

	mu            sync.Mutex
	id            string
	authenticated bool
	tbl           *table.Table
	source        string
	generation    uint64
	history       []Turn
	alerts        []audit.Alert
}

// NewStore creates an empty, logged-out session gated by the given
// shared secret.
func NewStore(secret string) *Store {
	return &Store{secret: secret, id: uuid.NewString()}
}

// Login compares the presented secret against the configured one using
// a constant-time comparison and transitions to logged-in on match.
func (s *Store) Login(secret string) bool {
	ok := subtle.ConstantTimeCompare([]byte(secret), []byte(s.secret)) == 1
	if ok {
		s.mu.Lock()
		s.authenticated = true
		s.mu.Unlock()
	}
	return ok
}

// Authenticated reports whether the session is logged in.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Logout clears the entire session back to its initial empty values.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
	s.tbl = nil
	s.source = ""
	s.history = nil
	s.alerts = nil
	s.generation++
}

// ReplaceTable installs a new active dataset. When the source differs
// from the current one the table, cached alerts, and provenance are
// swapped, the conversation history is cleared, and the generation is
// bumped, all inside one critical section so callers can never observe
// a new table alongside stale history. Reloading the same source only
// refreshes the table and alerts.
func (s *Store) ReplaceTable(t *table.Table, source string, alerts []audit.Alert) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source != source || s.tbl == nil {
		s.history = nil
		s.generation++
	}
	s.tbl = t
	s.source = source
	s.alerts = alerts
	return s.generation
}

// Snapshot is a read-only view of the dataset state.
type Snapshot struct {
	Table      *table.Table
	Source     string
	Generation uint64
	Alerts     []audit.Alert
	History    []Turn
}

// Snapshot returns the current dataset state. The history slice is
// copied; the table pointer is shared but treated as immutable by all
// consumers.
func (s *Store) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tbl == nil {
		return Snapshot{}, ErrNoDataset
	}
	history := make([]Turn, len(s.history))
	copy(history, s.history)
	return Snapshot{
		Table:      s.tbl,
		Source:     s.source,
		Generation: s.generation,
		Alerts:     s.alerts,
		History:    history,
	}, nil
}

// AppendTurns appends turns to the history if the dataset generation
// still matches. A mismatch means the dataset was replaced while the
// producing operation was in flight; the turns are discarded and
// ErrStaleGeneration returned.
func (s *Store) AppendTurns(generation uint64, turns ...Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		return ErrStaleGeneration
	}
	s.history = append(s.history, turns...)
	return nil
}

// ID returns the stable identifier of this session.
func (s *Store) ID() string {
	return s.id
}

// Source returns the provenance label of the active dataset, or "" when
// no dataset is loaded.
func (s *Store) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Generation returns the current generation marker.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// HistoryLen returns the number of turns in the conversation history.
func (s *Store) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}
