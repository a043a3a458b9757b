package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"tabsentry/internal/audit"
	"tabsentry/internal/logging"
	"tabsentry/internal/report"
	"tabsentry/internal/store"
	"tabsentry/internal/table"
)

// loginRequest is the body of POST /api/login.
type loginRequest struct {
	Secret string `json:"secret"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErrorStatus(w, r, err, http.StatusBadRequest, "BAD_REQUEST")
		return
	}

	if !s.sessions.Login(req.Secret) {
		s.respondErrorStatus(w, r, fmt.Errorf("access secret mismatch"), http.StatusUnauthorized, "AUTH_FAILED")
		return
	}

	logging.FromContext(r.Context()).Info("session authenticated", "session", s.sessions.ID())
	s.writeJSON(w, r, map[string]any{"ok": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout()
	logging.FromContext(r.Context()).Info("session cleared", "session", s.sessions.ID())
	s.writeJSON(w, r, map[string]any{"ok": true})
}

// loadSummary is the response to all ingestion endpoints.
type loadSummary struct {
	Source     string      `json:"source"`
	Rows       int         `json:"rows"`
	Cols       int         `json:"cols"`
	Generation uint64      `json:"generation"`
	Alerts     []alertView `json:"alerts"`
	LLMEnabled bool        `json:"llmEnabled"`
	Columns    []string    `json:"columns"`
}

type alertView struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	data, name, err := readUploadedFile(r)
	if err != nil {
		s.respondErrorStatus(w, r, err, http.StatusBadRequest, "BAD_REQUEST")
		return
	}

	t, err := table.Load(data, name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.installDataset(w, r, t, name)
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	t, err := table.Load([]byte(sampleCSV), sampleSourceName)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.installDataset(w, r, t, sampleSourceName)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	data, name, err := readUploadedFile(r)
	if err != nil {
		s.respondErrorStatus(w, r, err, http.StatusBadRequest, "BAD_REQUEST")
		return
	}

	colIndex := 0
	if v := r.FormValue("column"); v != "" {
		colIndex, err = strconv.Atoi(v)
		if err != nil {
			s.respondErrorStatus(w, r, fmt.Errorf("invalid column index %q", v), http.StatusBadRequest, "BAD_REQUEST")
			return
		}
	}
	mode := table.FillMode(r.FormValue("mode"))
	if mode == "" {
		mode = table.FillAll
	}

	t, err := table.ExtractByFill(data, colIndex, mode)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.installDataset(w, r, t, fmt.Sprintf("%s#%s", name, mode))
}

// installDataset audits the table, replaces the session dataset
// atomically, journals the load, and writes the summary response.
func (s *Server) installDataset(w http.ResponseWriter, r *http.Request, t *table.Table, source string) {
	alerts := s.engine.Audit(t)
	generation := s.sessions.ReplaceTable(t, source, alerts)

	// Journal failures are logged, never surfaced: export and audit
	// must keep working when the journal is down.
	entry := store.Entry{
		ID:         uuid.NewString(),
		Source:     source,
		Rows:       t.RowCount(),
		Cols:       t.ColumnCount(),
		AlertCount: len(alerts),
		Generation: generation,
		CreatedAt:  time.Now(),
	}
	if err := s.journal.Record(r.Context(), entry); err != nil {
		logging.FromContext(r.Context()).Warn("journal record failed", "error", err)
	}

	logging.FromContext(r.Context()).Info("dataset loaded",
		"source", source,
		"rows", t.RowCount(),
		"cols", t.ColumnCount(),
		"alerts", len(alerts),
		"generation", generation,
	)

	s.writeJSON(w, r, loadSummary{
		Source:     source,
		Rows:       t.RowCount(),
		Cols:       t.ColumnCount(),
		Generation: generation,
		Alerts:     alertViews(alerts),
		LLMEnabled: s.controller.Enabled(),
		Columns:    t.ColumnNames(),
	})
}

// tableView is the redacted preview returned by GET /api/table.
type tableView struct {
	Source     string         `json:"source"`
	Columns    []string       `json:"columns"`
	Rows       int            `json:"rows"`
	Head       [][]string     `json:"head"`
	NullCounts map[string]int `json:"nullCounts"`
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.Snapshot()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	redacted := s.policy.Redact(snap.Table)
	head := make([][]string, 0, s.cfg.Context.HeadRows)
	for i := 0; i < redacted.RowCount() && i < s.cfg.Context.HeadRows; i++ {
		head = append(head, redacted.Row(i))
	}

	s.writeJSON(w, r, tableView{
		Source:     snap.Source,
		Columns:    redacted.ColumnNames(),
		Rows:       redacted.RowCount(),
		Head:       head,
		NullCounts: redacted.NullCounts(),
	})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.Snapshot()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, r, alertViews(snap.Alerts))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.Snapshot()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	data, err := table.WriteXLSX(s.policy.Redact(snap.Table))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="export.xlsx"`)
	w.Write(data)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.Snapshot()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	// The narrative is best-effort: a disabled or failing model call
	// still yields a complete report with the section marked
	// unavailable.
	narrative := ""
	if s.controller.Enabled() {
		narrative, err = s.controller.Narrative(r.Context())
		if err != nil {
			logging.FromContext(r.Context()).Warn("report narrative unavailable", "error", err)
			narrative = ""
		}
	}

	text := report.Build(snap.Source, s.policy.Redact(snap.Table), snap.Alerts, narrative, time.Now())

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-report.txt"`)
	w.Write([]byte(text))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.journal.Recent(r.Context(), 50)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []store.Entry{}
	}
	s.writeJSON(w, r, entries)
}

func alertViews(alerts []audit.Alert) []alertView {
	views := make([]alertView, 0, len(alerts))
	for _, a := range alerts {
		views = append(views, alertView{Category: string(a.Category), Message: a.Message})
	}
	return views
}
