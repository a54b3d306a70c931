// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render converts accumulated chat text into safe output.
package render

import (
	"strings"
	"testing"

	"github.com/jeranaias/sia-console/internal/sanitize"
)

// =============================================================================
// PRIMARY (GOLDMARK) PATH
// =============================================================================

func TestHTMLRenderer_BoldAndItalic(t *testing.T) {
	r := NewHTMLRenderer()
	out := r.Render("**bold** and *italic*")

	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Errorf("missing <strong>: %q", out)
	}
	if !strings.Contains(out, "<em>italic</em>") {
		t.Errorf("missing <em>: %q", out)
	}
	if strings.Contains(out, "<script") {
		t.Errorf("unexpected script markup: %q", out)
	}
}

func TestHTMLRenderer_SanitizedScriptInputRendersTextOnly(t *testing.T) {
	r := NewHTMLRenderer()
	// The sanitizer removes the block; the renderer displays exactly the rest.
	out := r.Render(sanitize.Delta("<script>alert(1)</script>Hello"))

	if !strings.Contains(out, "Hello") {
		t.Errorf("expected Hello in output: %q", out)
	}
	if strings.Contains(strings.ToLower(out), "<script") ||
		strings.Contains(strings.ToLower(out), "alert(1)") {
		t.Errorf("executable markup survived: %q", out)
	}
}

func TestHTMLRenderer_RawTagsAreEscapedNotRendered(t *testing.T) {
	r := NewHTMLRenderer()
	out := r.Render("literal <b>tag</b> here")

	// Buffer text is escaped before markdown conversion, so the literal
	// tag must not become markup.
	if strings.Contains(out, "<b>tag</b>") {
		t.Errorf("raw tag passed through: %q", out)
	}
}

func TestHTMLRenderer_IdempotentUnderReRender(t *testing.T) {
	r := NewHTMLRenderer()
	buffer := "# Title\n\n- one\n- two\n\n**done**"

	first := r.Render(buffer)
	second := r.Render(buffer)
	if first != second {
		t.Errorf("re-render differs:\n%q\n%q", first, second)
	}
}

func TestHTMLRenderer_AccumulatedEqualsWhole(t *testing.T) {
	r := NewHTMLRenderer()
	deltas := []string{"# Hea", "ding\n- item ", "one\n- item two"}

	var buf strings.Builder
	var last string
	for _, d := range deltas {
		buf.WriteString(sanitize.Delta(d))
		last = r.Render(buf.String())
	}

	whole := r.Render(sanitize.Delta(deltas[0]) + sanitize.Delta(deltas[1]) + sanitize.Delta(deltas[2]))
	if last != whole {
		t.Errorf("incremental render != whole render:\n%q\n%q", last, whole)
	}
	if !strings.Contains(whole, "<h1") || !strings.Contains(whole, "<li>") {
		t.Errorf("cross-delta markdown constructs not rendered: %q", whole)
	}
}

func TestHTMLRenderer_UnsafeHrefStripped(t *testing.T) {
	tests := []struct {
		url  string
		safe bool
	}{
		{"https://example.com/a", true},
		{"http://example.com", true},
		{"mailto:x@example.com", true},
		{"tel:+5586999990000", true},
		{"#anchor", true},
		{"/docs", true},
		{"./rel", true},
		{"../up", true},
		{"ftp://example.com", false},
		{"data:text/html;base64,AAAA", false},
	}

	r := NewHTMLRenderer()
	for _, tt := range tests {
		out := r.Render("[link](" + tt.url + ")")
		has := strings.Contains(out, `href=`)
		if has != tt.safe {
			t.Errorf("url %q: href present = %v, want %v (output %q)", tt.url, has, tt.safe, out)
		}
	}
}

// =============================================================================
// FALLBACK PATH
// =============================================================================

func TestFallback_Bullets(t *testing.T) {
	out := Fallback("- one\n- two\nafter")
	if !strings.Contains(out, "<ul><li>one</li><li>two</li></ul>") {
		t.Errorf("bullet grouping wrong: %q", out)
	}
	if !strings.Contains(out, "after") {
		t.Errorf("trailing text lost: %q", out)
	}
}

func TestFallback_Headings(t *testing.T) {
	out := Fallback("# One\n## Two\n### Three")
	for _, want := range []string{"<h1>One</h1>", "<h2>Two</h2>", "<h3>Three</h3>"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestFallback_BoldItalicRule(t *testing.T) {
	out := Fallback("**b** and *i*\n---\nend")
	if !strings.Contains(out, "<strong>b</strong>") {
		t.Errorf("missing bold: %q", out)
	}
	if !strings.Contains(out, "<em>i</em>") {
		t.Errorf("missing italic: %q", out)
	}
	if !strings.Contains(out, "<hr>") {
		t.Errorf("missing rule: %q", out)
	}
}

func TestFallback_NewlinesBecomeBreaks(t *testing.T) {
	out := Fallback("a\nb")
	if out != "a<br>b" {
		t.Errorf("got %q, want %q", out, "a<br>b")
	}
}

func TestFallbackRenderer_SameSafetyClass(t *testing.T) {
	r := NewFallbackRenderer()
	out := r.Render("<script>alert(1)</script># Safe\n- item")

	if strings.Contains(strings.ToLower(out), "<script") {
		t.Errorf("script markup in fallback output: %q", out)
	}
	if !strings.Contains(out, "<h1>Safe</h1>") {
		t.Errorf("fallback heading missing: %q", out)
	}
}

// =============================================================================
// TERMINAL PATH
// =============================================================================

func TestTermRenderer_NeverFails(t *testing.T) {
	r := NewTermRenderer(60)
	out := r.Render("# Heading\n\nsome **text**")
	if out == "" {
		t.Error("terminal render produced empty output")
	}
}
