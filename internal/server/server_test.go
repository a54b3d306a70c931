// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server serves read-only HTML previews of stored conversation
// transcripts on localhost.
package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sia-console/internal/model"
)

// mapSource serves a fixed record map.
type mapSource map[string]*model.Record

func (m mapSource) Records() map[string]*model.Record { return m }

func testRecord(agentID string, turns ...string) *model.Record {
	r := model.NewRecord(agentID)
	for i, text := range turns {
		if i%2 == 0 {
			r.AppendTurn(model.NewUserTurn(text))
		} else {
			idx := r.AppendTurn(model.NewAssistantTurn())
			r.SetTurnContent(idx, text)
			r.FinalizeTurn(idx)
		}
	}
	return r
}

func newTestServer(records ...*model.Record) *Server {
	src := mapSource{}
	for _, r := range records {
		src[r.Key()] = r
	}
	return NewServer(Config{Source: src})
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "127.0.0.1:54321"
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestList(t *testing.T) {
	r1 := testRecord("support-bot", "how do I reset my password?")
	r2 := testRecord("research-bot", "summarize the report")
	s := newTestServer(r1, r2)

	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "how do I reset my password?")
	assert.Contains(t, body, "support-bot")
	assert.Contains(t, body, "/conversations/"+r2.Key())
}

func TestList_Empty(t *testing.T) {
	rec := get(t, newTestServer(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No stored conversations")
}

func TestTranscript_RendersMarkdown(t *testing.T) {
	r := testRecord("bot", "hello", "Here is **bold** and *italic* text.")
	s := newTestServer(r)

	rec := get(t, s, "/conversations/"+r.Key())
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<strong>bold</strong>")
	assert.Contains(t, body, "<em>italic</em>")
	assert.Contains(t, body, "class=\"turn user\"")
	assert.Contains(t, body, "class=\"turn assistant\"")
}

func TestTranscript_HostileContentStaysInert(t *testing.T) {
	r := testRecord("bot",
		`<script>alert("stored")</script> question`,
		`reply with <img src=x onerror=alert(1)> and [link](javascript:alert(2))`)
	s := newTestServer(r)

	rec := get(t, s, "/conversations/"+r.Key())
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "<script>")
	assert.NotContains(t, body, "onerror")
	assert.NotContains(t, body, "javascript:")
	// The page CSP forbids scripts outright as a second layer.
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "script-src 'none'")
}

func TestTranscript_NotFound(t *testing.T) {
	rec := get(t, newTestServer(), "/conversations/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownPath(t *testing.T) {
	rec := get(t, newTestServer(), "/private/../etc/passwd")
	assert.NotEqual(t, http.StatusOK, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	rec := get(t, newTestServer(), "/")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRateLimit(t *testing.T) {
	s := NewServer(Config{Source: mapSource{}, RateLimit: 1, RateBurst: 2})

	codes := make(map[int]int)
	for i := 0; i < 5; i++ {
		codes[get(t, s, "/healthz").Code]++
	}
	assert.Positive(t, codes[http.StatusTooManyRequests], "burst exceeded requests must be limited")
	assert.Positive(t, codes[http.StatusOK])
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "127.0.0.1:54321"
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
