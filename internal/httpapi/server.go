// Package httpapi exposes the navigator pipeline over a small JSON API
// for the chat UI: session lifecycle, chat turns, profile updates, and
// report rendering.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/joelkehle/trial-navigator/internal/navigator"
	"github.com/joelkehle/trial-navigator/internal/session"
)

// Runner is the pipeline boundary the server drives. It mutates the
// given state in place and returns it.
type Runner interface {
	Run(ctx context.Context, state *navigator.State) *navigator.State
}

type Server struct {
	runner   Runner
	sessions *session.Store
	markdown goldmark.Markdown
}

func NewServer(runner Runner, sessions *session.Store) http.Handler {
	s := &Server{
		runner:   runner,
		sessions: sessions,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/sessions", s.handleSessions)
	mux.HandleFunc("/v1/sessions/", s.handleSessionSubresource)
	mux.HandleFunc("/v1/health", s.handleHealth)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"ok": false,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return []byte("{}"), nil
	}
	blob, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		blob = []byte("{}")
	}
	return blob, nil
}

func methodOnly(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		sess := s.sessions.Create()
		log.Printf("httpapi session_created id=%s", sess.ID)
		writeJSON(w, 200, map[string]any{
			"ok":         true,
			"session_id": sess.ID,
			"created_at": sess.CreatedAt,
		})
	case http.MethodGet:
		writeJSON(w, 200, map[string]any{"sessions": s.sessions.List()})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleSessionSubresource dispatches /v1/sessions/{id}[/chat|/profile|/report].
func (s *Server) handleSessionSubresource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/sessions/")
	id, sub, _ := strings.Cut(strings.TrimSuffix(path, "/"), "/")
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, 404, "not_found", fmt.Sprintf("session %s not found", id))
			return
		}
		writeError(w, 500, "internal", err.Error())
		return
	}

	switch sub {
	case "":
		s.handleSessionRoot(w, r, sess)
	case "chat":
		s.handleChat(w, r, sess)
	case "profile":
		s.handleProfile(w, r, sess)
	case "report":
		s.handleReport(w, r, sess)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *Server) handleSessionRoot(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	switch r.Method {
	case http.MethodGet:
		sess.Lock()
		defer sess.Unlock()
		writeJSON(w, 200, map[string]any{
			"session_id": sess.ID,
			"created_at": sess.CreatedAt,
			"state":      sess.State,
		})
	case http.MethodDelete:
		s.sessions.Delete(sess.ID)
		writeJSON(w, 200, map[string]any{"ok": true})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleChat runs one pipeline turn. The message is the disease query;
// an optional inline profile replaces the session profile before the run.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	blob, err := readBody(r)
	if err != nil {
		writeError(w, 400, "validation", err.Error())
		return
	}
	var req struct {
		Message string                 `json:"message"`
		Profile *navigator.UserProfile `json:"profile"`
	}
	if err := json.Unmarshal(blob, &req); err != nil {
		writeError(w, 400, "validation", "invalid json: "+err.Error())
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, 400, "validation", "message is required")
		return
	}

	sess.Lock()
	defer sess.Unlock()
	if req.Profile != nil {
		sess.State.Profile = req.Profile
	}
	sess.State.AppendUser(req.Message)
	sess.State.Disease = req.Message
	s.runner.Run(r.Context(), sess.State)
	log.Printf("httpapi chat_turn session=%s disease=%q studies=%d", sess.ID, sess.State.Disease, len(sess.State.Studies))

	writeJSON(w, 200, map[string]any{
		"ok":         true,
		"session_id": sess.ID,
		"state":      sess.State,
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if !methodOnly(w, r, http.MethodPut) {
		return
	}
	blob, err := readBody(r)
	if err != nil {
		writeError(w, 400, "validation", err.Error())
		return
	}
	var profile navigator.UserProfile
	if err := json.Unmarshal(blob, &profile); err != nil {
		writeError(w, 400, "validation", "invalid json: "+err.Error())
		return
	}
	if profile.Age < 0 {
		writeError(w, 400, "validation", "age must not be negative")
		return
	}

	sess.Lock()
	defer sess.Unlock()
	sess.State.Profile = &profile
	writeJSON(w, 200, map[string]any{"ok": true, "profile": sess.State.Profile})
}

// handleReport renders the session's last run as markdown, or as HTML
// when format=html is requested.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	sess.Lock()
	md := navigator.BuildReportMarkdown(sess.State)
	sess.Unlock()

	if r.URL.Query().Get("format") != "html" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, md)
		return
	}

	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(md), &buf); err != nil {
		writeError(w, 500, "internal", "render report: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, 200, map[string]any{
		"ok":       true,
		"sessions": s.sessions.Len(),
	})
}
