// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sanitize defends against injected markup in chat text.
package sanitize

import (
	"strings"
	"testing"
)

// =============================================================================
// STRIPPING TESTS
// =============================================================================

func TestDelta_RemovesScriptBlock(t *testing.T) {
	got := Delta("<script>alert(1)</script>Hello")
	if got != "Hello" {
		t.Errorf("Delta = %q, want %q", got, "Hello")
	}
}

func TestDelta_RemovesScriptBlockCaseInsensitive(t *testing.T) {
	got := Delta("<ScRiPt type=\"text/javascript\">x()</sCrIpT>ok")
	if got != "ok" {
		t.Errorf("Delta = %q, want %q", got, "ok")
	}
}

func TestDelta_RemovesScriptBlockAcrossNewlines(t *testing.T) {
	got := Delta("a<script>\nvar x = 1;\nalert(x);\n</script>b")
	if got != "ab" {
		t.Errorf("Delta = %q, want %q", got, "ab")
	}
}

func TestDelta_RemovesIframeBlock(t *testing.T) {
	got := Delta(`before<iframe src="https://evil.example"></iframe>after`)
	if got != "beforeafter" {
		t.Errorf("Delta = %q, want %q", got, "beforeafter")
	}
}

func TestDelta_RemovesUnterminatedScriptOpen(t *testing.T) {
	got := Delta("text<script>alert(1)")
	if strings.Contains(got, "<script") {
		t.Errorf("unterminated script tag survived: %q", got)
	}
}

func TestDelta_RemovesJavascriptScheme(t *testing.T) {
	got := Delta(`<a href="javascript:alert(1)">x</a>`)
	if strings.Contains(strings.ToLower(got), "javascript:") {
		t.Errorf("javascript: scheme survived: %q", got)
	}
}

func TestDelta_RemovesInlineHandlers(t *testing.T) {
	for _, in := range []string{
		`<img src=x onerror=alert(1)>`,
		`<div ONCLICK = "boom()">`,
		`<b onmouseover= hack()>`,
	} {
		got := Delta(in)
		if handlerAttrRe.MatchString(got) {
			t.Errorf("handler attribute survived in %q -> %q", in, got)
		}
	}
}

func TestDelta_StripsControlCharacters(t *testing.T) {
	got := Delta("a\x00b\x07c\x1bd\x7fef")
	if got != "abcdef" {
		t.Errorf("Delta = %q, want %q", got, "abcdef")
	}
}

func TestDelta_KeepsCommonWhitespace(t *testing.T) {
	in := "line one\nline two\ttabbed\r\n"
	if got := Delta(in); got != in {
		t.Errorf("Delta = %q, want %q", got, in)
	}
}

func TestDelta_NestedMarkupDoesNotReassemble(t *testing.T) {
	// Removing the inner block must not leave an executable outer block.
	got := Delta("<scr<script></script>ipt>alert(1)</script>")
	if strings.Contains(strings.ToLower(got), "<script") {
		t.Errorf("nested strip reassembled a script tag: %q", got)
	}
}

// =============================================================================
// IDEMPOTENCE
// =============================================================================

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"plain text",
		"<script>alert(1)</script>Hello",
		`<img src=x onerror=alert(1)>`,
		"control\x01chars\x9fhere",
		"  padded  ",
		strings.Repeat("long ", 5000),
		"<scr<script></script>ipt>x</script>",
	}

	for _, in := range inputs {
		once := Delta(in)
		twice := Delta(once)
		if once != twice {
			t.Errorf("Delta not idempotent for %.40q: %q != %q", in, once, twice)
		}

		monce := Message(in)
		mtwice := Message(monce)
		if monce != mtwice {
			t.Errorf("Message not idempotent for %.40q", in)
		}
	}
}

// =============================================================================
// CAPS AND TRIMMING
// =============================================================================

func TestDelta_CapsLength(t *testing.T) {
	in := strings.Repeat("x", DefaultDeltaCap+500)
	got := Delta(in)
	if len([]rune(got)) != DefaultDeltaCap {
		t.Errorf("len = %d, want %d", len([]rune(got)), DefaultDeltaCap)
	}
}

func TestDeltaWithCap_CustomCap(t *testing.T) {
	got := DeltaWithCap("abcdefgh", 4)
	if got != "abcd" {
		t.Errorf("got %q, want %q", got, "abcd")
	}
}

func TestMessage_TrimsWhitespace(t *testing.T) {
	got := Message("  hello there \n")
	if got != "hello there" {
		t.Errorf("got %q, want %q", got, "hello there")
	}
}

func TestMessage_CapsLowerThanDelta(t *testing.T) {
	in := strings.Repeat("y", DefaultDeltaCap)
	got := Message(in)
	if len([]rune(got)) != DefaultMessageCap {
		t.Errorf("len = %d, want %d", len([]rune(got)), DefaultMessageCap)
	}
}

func TestSanitize_EmptyInput(t *testing.T) {
	if Delta("") != "" {
		t.Error("Delta(\"\") should be empty")
	}
	if Message("   ") != "" {
		t.Error("Message of whitespace should be empty")
	}
}
