// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sse decodes server-sent event streams into payload strings.
package sse

import (
	"reflect"
	"testing"
)

// collect runs a body through a fresh decoder in one piece.
func collect(t *testing.T, body []byte) []string {
	t.Helper()
	d := NewDecoder()
	payloads := d.Write(body)
	payloads = append(payloads, d.Flush()...)
	return payloads
}

// =============================================================================
// FRAMING TESTS
// =============================================================================

func TestDecoder_BasicFrames(t *testing.T) {
	body := []byte("data: Hel\n\ndata: lo\n\ndata: [DONE]\n\n")
	got := collect(t, body)
	want := []string{"Hel", "lo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("payloads = %v, want %v", got, want)
	}
}

func TestDecoder_CRLFLines(t *testing.T) {
	body := []byte("data: one\r\n\r\ndata: two\r\n\r\n")
	got := collect(t, body)
	want := []string{"one", "two"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("payloads = %v, want %v", got, want)
	}
}

func TestDecoder_IgnoresNonDataLines(t *testing.T) {
	body := []byte(": comment\nevent: message\nid: 42\ndata: hi\nretry: 100\n\n")
	got := collect(t, body)
	want := []string{"hi"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("payloads = %v, want %v", got, want)
	}
}

func TestDecoder_AtMostOneLeadingSpaceStripped(t *testing.T) {
	// Two spaces after the colon: the second belongs to the payload.
	got := collect(t, []byte("data:  padded\n\n"))
	want := []string{" padded"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("payloads = %v, want %v", got, want)
	}
}

func TestDecoder_NoSpaceAfterColon(t *testing.T) {
	got := collect(t, []byte("data:tight\n\n"))
	want := []string{"tight"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("payloads = %v, want %v", got, want)
	}
}

func TestDecoder_SentinelDiscarded(t *testing.T) {
	got := collect(t, []byte("data: [DONE]\n\n"))
	if len(got) != 0 {
		t.Errorf("sentinel should not be emitted, got %v", got)
	}
}

func TestDecoder_FinalLineWithoutNewline(t *testing.T) {
	// Transport may end mid-line; Flush must process the tail.
	got := collect(t, []byte("data: first\n\ndata: tail"))
	want := []string{"first", "tail"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("payloads = %v, want %v", got, want)
	}
}

func TestDecoder_EmptyDataLine(t *testing.T) {
	got := collect(t, []byte("data:\n\n"))
	want := []string{""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("payloads = %v, want %v", got, want)
	}
}

// =============================================================================
// CHUNK-BOUNDARY INDEPENDENCE
// =============================================================================

func TestDecoder_ChunkBoundaryIndependence(t *testing.T) {
	bodies := [][]byte{
		[]byte("data: Hel\n\ndata: lo\n\ndata: [DONE]\n\n"),
		[]byte("data: héllo wörld\n\ndata: 日本語テキスト\n\n"),
		[]byte(": keepalive\r\ndata: a\r\n\r\ndata: b\r\n\r\ndata: [DONE]\r\n\r\n"),
		[]byte("data: {\"content\": \"json chunk\"}\n\ndata: plain\n"),
	}

	for _, body := range bodies {
		want := collect(t, body)

		// Split at every possible byte offset, including offsets that
		// land inside multi-byte characters.
		for split := 0; split <= len(body); split++ {
			d := NewDecoder()
			var got []string
			got = append(got, d.Write(body[:split])...)
			got = append(got, d.Write(body[split:])...)
			got = append(got, d.Flush()...)

			if !reflect.DeepEqual(got, want) {
				t.Fatalf("split at %d of %q: payloads = %v, want %v",
					split, body, got, want)
			}
		}
	}
}

func TestDecoder_ByteAtATime(t *testing.T) {
	body := []byte("data: 日本\n\ndata: 語\n\ndata: [DONE]\n\n")
	want := collect(t, body)

	d := NewDecoder()
	var got []string
	for i := range body {
		got = append(got, d.Write(body[i:i+1])...)
	}
	got = append(got, d.Flush()...)

	if !reflect.DeepEqual(got, want) {
		t.Errorf("byte-at-a-time payloads = %v, want %v", got, want)
	}
}

// =============================================================================
// PAYLOAD DECODE TESTS
// =============================================================================

func TestDecodePayload_RawText(t *testing.T) {
	if got := DecodePayload("plain text"); got != "plain text" {
		t.Errorf("got %q", got)
	}
}

func TestDecodePayload_JSONString(t *testing.T) {
	if got := DecodePayload(`"quoted\nchunk"`); got != "quoted\nchunk" {
		t.Errorf("got %q", got)
	}
}

func TestDecodePayload_JSONObjectContentField(t *testing.T) {
	if got := DecodePayload(`{"content": "hello"}`); got != "hello" {
		t.Errorf("got %q", got)
	}
}

func TestDecodePayload_JSONObjectNestedMessage(t *testing.T) {
	if got := DecodePayload(`{"message": {"role": "assistant", "content": "hi"}}`); got != "hi" {
		t.Errorf("got %q", got)
	}
}

func TestDecodePayload_JSONArray(t *testing.T) {
	if got := DecodePayload(`["a", "b"]`); got != "ab" {
		t.Errorf("got %q", got)
	}
}

func TestDecodePayload_MalformedJSONFallsBackToRaw(t *testing.T) {
	// Looks like JSON but is not: the raw payload is the delta.
	in := `{"broken": `
	if got := DecodePayload(in); got != in {
		t.Errorf("got %q, want raw %q", got, in)
	}
	in2 := `"unterminated`
	if got := DecodePayload(in2); got != in2 {
		t.Errorf("got %q, want raw %q", got, in2)
	}
}

func TestDecodePayload_ObjectWithoutTextField(t *testing.T) {
	in := `{"job_id": "j1"}`
	if got := DecodePayload(in); got != in {
		t.Errorf("got %q, want raw %q", got, in)
	}
}
