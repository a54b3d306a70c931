// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render converts accumulated chat text into safe output.
//
// The renderer follows a re-render-from-scratch strategy: it is called
// once per received delta with the full accumulated buffer, so markdown
// constructs split across deltas (a heading arriving in two chunks, a
// list item per chunk) render correctly. Rendering is a pure function of
// the buffer and the renderer configuration; rendering the same buffer
// twice yields byte-identical output.
package render

import (
	"bytes"
	"html"
	"log"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// =============================================================================
// URL SAFETY
// =============================================================================

// safeURLRe accepts href/src values that are fragment or path relative
// (#, /, ./, ../) or absolute with an allowed scheme. Everything else is
// stripped by the allow-list policy.
var safeURLRe = regexp.MustCompile(`^(#|/|\./|\.\./|(?i:https?:|mailto:|tel:))`)

// =============================================================================
// HTML RENDERER
// =============================================================================

// HTMLRenderer renders chat buffers as allow-list-filtered HTML.
type HTMLRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy

	// markdownEnabled selects the goldmark path; when false the minimal
	// fallback converter is used instead.
	markdownEnabled bool
}

// NewHTMLRenderer creates a renderer using goldmark for GitHub-flavored,
// line-break-preserving markdown plus a bluemonday allow-list filter.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				goldmarkhtml.WithHardWraps(),
			),
		),
		policy:          newAllowListPolicy(),
		markdownEnabled: true,
	}
}

// NewFallbackRenderer creates a renderer that uses only the minimal
// hand-rolled converter. Output stays in the same allow-list-safe class
// as the primary path.
func NewFallbackRenderer() *HTMLRenderer {
	return &HTMLRenderer{
		policy:          newAllowListPolicy(),
		markdownEnabled: false,
	}
}

// newAllowListPolicy builds the bluemonday policy: a fixed element
// allow-list, no inline handlers (only the listed attributes survive at
// all), and href/src restricted to safe URL shapes.
func newAllowListPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "hr",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li",
		"strong", "em", "b", "i", "del", "s",
		"code", "pre", "blockquote",
		"table", "thead", "tbody", "tr", "th", "td",
		"span", "a", "img",
	)

	p.AllowAttrs("href").Matching(safeURLRe).OnElements("a")
	p.AllowAttrs("src").Matching(safeURLRe).OnElements("img")
	p.AllowAttrs("alt", "title").OnElements("img")
	p.AllowAttrs("class").OnElements("code", "pre", "span")

	return p
}

// Render converts the accumulated buffer to safe HTML. It never fails:
// any panic or conversion error inside the markdown path degrades to the
// fallback converter on the same escaped text.
func (r *HTMLRenderer) Render(buffer string) (out string) {
	escaped := html.EscapeString(buffer)

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("RENDER: markdown conversion panic, degrading: %v", rec)
			out = r.policy.Sanitize(Fallback(escaped))
		}
	}()

	if !r.markdownEnabled || r.md == nil {
		return r.policy.Sanitize(Fallback(escaped))
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(escaped), &buf); err != nil {
		log.Printf("RENDER: markdown conversion failed, degrading: %v", err)
		return r.policy.Sanitize(Fallback(escaped))
	}
	return r.policy.Sanitize(buf.String())
}
