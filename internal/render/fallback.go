// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render converts accumulated chat text into safe output.
package render

import (
	"regexp"
	"strings"
)

// =============================================================================
// MINIMAL MARKDOWN FALLBACK
// =============================================================================

// The fallback converter operates on already HTML-escaped text, so no raw
// tag can survive it; it only ever introduces the markup it emits itself.

var (
	bulletLineRe  = regexp.MustCompile(`^\s*[-*+]\s+(.*)$`)
	headingLineRe = regexp.MustCompile(`^(#{1,3})\s+(.*)$`)
	boldRe        = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe      = regexp.MustCompile(`\*([^*]+)\*`)
)

// Fallback converts escaped text to HTML with a minimal markdown subset:
// grouped bullet lists, up to three heading levels, bold, italic,
// horizontal rules, and line breaks.
func Fallback(escaped string) string {
	// Normalize line endings before structural parsing.
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	lines := strings.Split(escaped, "\n")

	var b strings.Builder
	var listItems []string

	flushList := func() {
		if len(listItems) == 0 {
			return
		}
		b.WriteString("<ul>")
		for _, item := range listItems {
			b.WriteString("<li>")
			b.WriteString(inline(item))
			b.WriteString("</li>")
		}
		b.WriteString("</ul>")
		listItems = listItems[:0]
	}

	for i, line := range lines {
		if m := bulletLineRe.FindStringSubmatch(line); m != nil {
			// Consecutive bullet lines group into one list.
			listItems = append(listItems, m[1])
			continue
		}
		flushList()

		if m := headingLineRe.FindStringSubmatch(line); m != nil {
			level := len(m[1])
			tag := [...]string{"h1", "h2", "h3"}[level-1]
			b.WriteString("<" + tag + ">")
			b.WriteString(inline(m[2]))
			b.WriteString("</" + tag + ">")
			continue
		}

		if strings.TrimSpace(line) == "---" {
			b.WriteString("<hr>")
			continue
		}

		b.WriteString(inline(line))
		if i < len(lines)-1 {
			b.WriteString("<br>")
		}
	}
	flushList()

	return b.String()
}

// inline applies the inline subset: **bold** first, then single *italic*.
// Bold runs first so a lone pair of asterisks left behind cannot overlap
// a double pair.
func inline(s string) string {
	s = boldRe.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicRe.ReplaceAllString(s, "<em>$1</em>")
	return s
}
