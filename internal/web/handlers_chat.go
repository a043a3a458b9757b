package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"tabsentry/internal/logging"
)

type chatRequest struct {
	Question string `json:"question"`
}

// handleChat streams the model answer as server-sent events. Each
// token arrives as a "data:" frame carrying a JSON string; the stream
// ends with an "event: done" frame, or "event: error" when the model
// call fails after headers have been sent.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErrorStatus(w, r, err, http.StatusBadRequest, "BAD_REQUEST")
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		s.respondErrorStatus(w, r, fmt.Errorf("empty question"), http.StatusBadRequest, "BAD_REQUEST")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondErrorStatus(w, r, fmt.Errorf("streaming unsupported"), http.StatusInternalServerError, "INTERNAL")
		return
	}

	// Errors before the first token still map to proper status codes;
	// once streaming starts they degrade to an SSE error event.
	streaming := false
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	onToken := func(fragment string) {
		if !streaming {
			streaming = true
			w.WriteHeader(http.StatusOK)
		}
		writeSSEData(w, fragment)
		flusher.Flush()
	}

	_, err := s.controller.Ask(r.Context(), question, onToken)
	if err != nil {
		if !streaming {
			w.Header().Del("Content-Type")
			w.Header().Del("Cache-Control")
			w.Header().Del("Connection")
			s.respondError(w, r, err)
			return
		}
		logging.FromContext(r.Context()).Warn("chat stream aborted", "error", err)
		writeSSEEvent(w, "error", err.Error())
		flusher.Flush()
		return
	}

	if !streaming {
		w.WriteHeader(http.StatusOK)
	}
	writeSSEEvent(w, "done", "")
	flusher.Flush()
}

// writeSSEData emits one data frame. The payload is JSON-encoded so
// fragments containing newlines survive the frame format.
func writeSSEData(w http.ResponseWriter, payload string) {
	encoded, _ := json.Marshal(payload)
	fmt.Fprintf(w, "data: %s\n\n", encoded)
}

func writeSSEEvent(w http.ResponseWriter, event, payload string) {
	encoded, _ := json.Marshal(payload)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, encoded)
}
