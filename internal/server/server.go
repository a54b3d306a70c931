// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server serves read-only HTML previews of stored conversation
// transcripts on localhost.
package server

import (
	"context"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/sia-console/internal/model"
	"github.com/jeranaias/sia-console/internal/render"
	"github.com/jeranaias/sia-console/internal/storage"
)

// =============================================================================
// RECORD SOURCE
// =============================================================================

// RecordSource supplies the conversations to preview.
// *session.Manager satisfies this.
type RecordSource interface {
	Records() map[string]*model.Record
}

// StoreSource adapts a bare storage.Store into a RecordSource for
// serving without a live session.
type StoreSource struct {
	Store *storage.Store
}

// Records loads the document fresh on each request.
func (s StoreSource) Records() map[string]*model.Record {
	return s.Store.Load()
}

// =============================================================================
// SERVER
// =============================================================================

// Config holds preview server settings.
type Config struct {
	// Addr is the listen address (default: 127.0.0.1:8765).
	Addr string
	// Source supplies the conversations. Required.
	Source RecordSource
	// RateLimit is requests per second per client (default: 10).
	RateLimit float64
	// RateBurst is the limiter burst size (default: 20).
	RateBurst int
}

// Server renders stored transcripts as safe HTML pages.
type Server struct {
	addr     string
	source   RecordSource
	renderer *render.HTMLRenderer
	limiter  *RateLimiter
	httpSrv  *http.Server
}

// NewServer creates a preview server.
func NewServer(cfg Config) *Server {
	addr := cfg.Addr
	if addr == "" {
		addr = "127.0.0.1:8765"
	}
	perSecond := cfg.RateLimit
	if perSecond <= 0 {
		perSecond = 10
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 20
	}

	s := &Server{
		addr:     addr,
		source:   cfg.Source,
		renderer: render.NewHTMLRenderer(),
		limiter:  NewRateLimiter(perSecond, burst),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleList)
	mux.HandleFunc("/conversations/", s.handleTranscript)
	mux.HandleFunc("/healthz", s.handleHealth)

	chain := Chain(
		RecoveryMiddleware(),
		LoggingMiddleware(),
		SecurityHeadersMiddleware(),
		RateLimitMiddleware(s.limiter),
	)

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           chain(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// ListenAndServe blocks serving requests until Shutdown.
func (s *Server) ListenAndServe() error {
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler exposes the full middleware-wrapped handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// =============================================================================
// TEMPLATES
// =============================================================================

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; }
.turn { margin: 1rem 0; padding: 0.75rem 1rem; border-radius: 8px; }
.turn.user { background: #eef2ff; }
.turn.assistant { background: #f5f5f4; }
.role { font-size: 0.8rem; color: #666; margin-bottom: 0.25rem; }
.meta { color: #888; font-size: 0.85rem; }
pre { overflow-x: auto; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{.Body}}
</body>
</html>
`))

type pageData struct {
	Title string
	Body  template.HTML
}

// =============================================================================
// HANDLERS
// =============================================================================

// handleList renders the conversation index, newest first.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	records := storage.ListRecent(s.source.Records(), 0)

	var sb strings.Builder
	if len(records) == 0 {
		sb.WriteString("<p class=\"meta\">No stored conversations.</p>")
	}
	sb.WriteString("<ul>")
	for _, rec := range records {
		sb.WriteString("<li><a href=\"/conversations/")
		sb.WriteString(template.URLQueryEscaper(rec.Key()))
		sb.WriteString("\">")
		sb.WriteString(template.HTMLEscapeString(rec.GetTitle()))
		sb.WriteString("</a> <span class=\"meta\">")
		sb.WriteString(template.HTMLEscapeString(rec.AgentID))
		sb.WriteString(" · ")
		sb.WriteString(rec.UpdatedAt.Format("2006-01-02 15:04"))
		sb.WriteString("</span></li>")
	}
	sb.WriteString("</ul>")

	s.writePage(w, "Conversations", sb.String())
}

// handleTranscript renders one conversation.
func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/conversations/")
	rec, ok := s.source.Records()[key]
	if !ok {
		http.NotFound(w, r)
		return
	}

	var sb strings.Builder
	for _, turn := range rec.Turns {
		if turn.Content == "" {
			continue
		}
		role := string(turn.Role)
		sb.WriteString("<div class=\"turn ")
		sb.WriteString(template.HTMLEscapeString(role))
		sb.WriteString("\"><div class=\"role\">")
		sb.WriteString(template.HTMLEscapeString(role))
		sb.WriteString(" · ")
		sb.WriteString(turn.Timestamp.Format("15:04:05"))
		sb.WriteString("</div>")
		// Render escapes first and sanitizes after markdown conversion,
		// so stored hostile content stays inert here too.
		sb.WriteString(s.renderer.Render(turn.Content))
		sb.WriteString("</div>")
	}

	s.writePage(w, rec.GetTitle(), sb.String())
}

// handleHealth answers the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// writePage wraps a body in the page template.
func (s *Server) writePage(w http.ResponseWriter, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	pageTmpl.Execute(w, pageData{Title: title, Body: template.HTML(body)})
}
