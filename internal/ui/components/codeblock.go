// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI pieces for the sia-console
// TUI.
package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
)

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// Highlight applies ANSI syntax highlighting to a code snippet for
// terminal display. Unknown languages fall back to lexer detection and
// ultimately to plain text.
func Highlight(code, language string) string {
	code = strings.TrimRight(code, "\n")

	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

// HighlightFences replaces fenced code blocks in markdown text with
// highlighted versions, leaving the rest untouched. Used for transcript
// export to the terminal.
func HighlightFences(markdown string) string {
	lines := strings.Split(markdown, "\n")
	var out []string
	var fence []string
	var language string
	inFence := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				out = append(out, Highlight(strings.Join(fence, "\n"), language))
				fence = fence[:0]
				inFence = false
			} else {
				language = strings.TrimPrefix(trimmed, "```")
				inFence = true
			}
			continue
		}
		if inFence {
			fence = append(fence, line)
		} else {
			out = append(out, line)
		}
	}
	// Unterminated fence: emit what accumulated.
	if inFence {
		out = append(out, Highlight(strings.Join(fence, "\n"), language))
	}
	return strings.Join(out, "\n")
}
