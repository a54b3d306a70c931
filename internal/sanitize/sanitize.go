// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sanitize defends against injected markup in chat text.
//
// Two entry points cover the two trust boundaries:
//   - Delta: streamed assistant fragments, applied once per received chunk
//   - Message: whole user-entered messages and content restored from disk
//
// Both are total functions: they never fail and always return a string
// (possibly empty). Stripping runs to a fixed point so that the result is
// idempotent even for adversarially nested markup such as
// "<scr<script></script>ipt>".
package sanitize

import (
	"regexp"
	"strings"

	"github.com/jeranaias/sia-console/internal/util"
)

// =============================================================================
// LIMITS
// =============================================================================

const (
	// DefaultDeltaCap bounds a single sanitized stream delta, in runes.
	// Pathological streams are truncated chunk by chunk rather than
	// accumulating unbounded memory.
	DefaultDeltaCap = 20000

	// DefaultMessageCap bounds a whole user message or restored turn,
	// in runes. Kept independent from DefaultDeltaCap; the two limits are
	// separately configurable.
	DefaultMessageCap = 10000

	// maxStripPasses bounds the fixed-point stripping loop. Two passes
	// suffice for any single level of nesting; the bound is a hard stop
	// for degenerate input.
	maxStripPasses = 8
)

// =============================================================================
// STRIP PATTERNS
// =============================================================================

var (
	// Whole script/iframe blocks, case-insensitive, spanning newlines.
	scriptBlockRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	iframeBlockRe = regexp.MustCompile(`(?is)<iframe\b[^>]*>.*?</iframe\s*>`)

	// Unterminated opening tags are stripped too: a stream may end (or be
	// truncated) mid-block and the remainder must not reach the DOM.
	scriptOpenRe = regexp.MustCompile(`(?is)<script\b[^>]*>`)
	iframeOpenRe = regexp.MustCompile(`(?is)<iframe\b[^>]*>`)

	// javascript: URI scheme, with optional whitespace smuggled inside.
	jsSchemeRe = regexp.MustCompile(`(?i)j\s*a\s*v\s*a\s*s\s*c\s*r\s*i\s*p\s*t\s*:`)

	// Inline event handler attribute patterns: onclick=, onerror=, ...
	handlerAttrRe = regexp.MustCompile(`(?i)\bon\w+\s*=`)
)

// =============================================================================
// SANITIZERS
// =============================================================================

// Delta sanitizes one streamed fragment using the default delta cap.
func Delta(v string) string {
	return DeltaWithCap(v, DefaultDeltaCap)
}

// DeltaWithCap sanitizes one streamed fragment, truncating the result to
// capRunes characters. A non-positive cap falls back to the default.
func DeltaWithCap(v string, capRunes int) string {
	if capRunes <= 0 {
		capRunes = DefaultDeltaCap
	}
	s := strip(v)
	return util.TruncateRunesNoEllipsis(s, capRunes)
}

// Message sanitizes a whole user message using the default message cap.
func Message(v string) string {
	return MessageWithCap(v, DefaultMessageCap)
}

// MessageWithCap sanitizes a whole message with the stricter rules: same
// stripping as Delta plus surrounding-whitespace trim, and a lower default
// cap. Truncation happens before the trim so a second application is a
// no-op (idempotence).
func MessageWithCap(v string, capRunes int) string {
	if capRunes <= 0 {
		capRunes = DefaultMessageCap
	}
	s := strip(v)
	s = util.TruncateRunesNoEllipsis(s, capRunes)
	return strings.TrimSpace(s)
}

// =============================================================================
// STRIPPING
// =============================================================================

// strip removes script/iframe blocks, javascript: schemes, inline handler
// attributes, and C0/C1 control characters (except \t \n \r). Runs until
// the output stops changing so removal cannot reassemble new markup.
func strip(s string) string {
	for i := 0; i < maxStripPasses; i++ {
		next := stripOnce(s)
		if next == s {
			return s
		}
		s = next
	}
	return s
}

func stripOnce(s string) string {
	s = scriptBlockRe.ReplaceAllString(s, "")
	s = iframeBlockRe.ReplaceAllString(s, "")
	s = scriptOpenRe.ReplaceAllString(s, "")
	s = iframeOpenRe.ReplaceAllString(s, "")
	s = jsSchemeRe.ReplaceAllString(s, "")
	s = handlerAttrRe.ReplaceAllString(s, "")
	s = stripControls(s)
	return s
}

// stripControls removes C0 and C1 control characters, keeping common
// whitespace (tab, newline, carriage return).
func stripControls(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\t' || r == '\n' || r == '\r' {
			b.WriteRune(r)
			continue
		}
		if r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0x9f) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
