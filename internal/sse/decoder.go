// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sse decodes server-sent event streams into payload strings.
//
// The decoder is fed raw byte chunks exactly as they arrive from the
// transport and is resilient to chunk boundaries that split lines or
// multi-byte UTF-8 sequences. The emitted payload sequence is identical
// for every possible byte-level split of the same stream body.
package sse

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// dataPrefix marks event lines that carry content.
	dataPrefix = "data:"

	// Sentinel is the reserved payload signaling end of stream. It is an
	// end-of-stream marker, not content, and is never emitted.
	Sentinel = "[DONE]"
)

// =============================================================================
// FRAME DECODER
// =============================================================================

// Decoder turns a byte stream into a sequence of event payload strings.
//
// It maintains two layers of carry-over state between Write calls:
// undecoded bytes (a partial multi-byte character at a chunk boundary)
// and a partial line (a frame split across chunks). Call Flush after the
// transport signals end of body to drain both.
type Decoder struct {
	utf8Dec transform.Transformer
	pending []byte // bytes not yet decoded (partial rune carry)
	lineBuf string // decoded text not yet terminated by a newline
}

// NewDecoder creates a frame decoder for one streaming exchange.
// Decoders are single-use: state is specific to one response body.
func NewDecoder() *Decoder {
	return &Decoder{
		utf8Dec: unicode.UTF8.NewDecoder(),
	}
}

// Write feeds the next transport chunk and returns the payloads of every
// event line completed by it, in order. Non-data lines (blank separators,
// comments, other SSE fields) produce nothing. The sentinel is swallowed.
func (d *Decoder) Write(chunk []byte) []string {
	text := d.decode(chunk, false)
	return d.consumeLines(text)
}

// Flush drains the decoder state after end of body: any held-back partial
// rune is decoded (invalid trailing bytes become U+FFFD) and a final
// unterminated line is processed like any other.
func (d *Decoder) Flush() []string {
	text := d.decode(nil, true)
	payloads := d.consumeLines(text)

	if d.lineBuf != "" {
		line := d.lineBuf
		d.lineBuf = ""
		if payload, ok := parseLine(line); ok {
			payloads = append(payloads, payload)
		}
	}
	return payloads
}

// =============================================================================
// BYTE DECODING
// =============================================================================

// decode runs the stateful UTF-8 decoder over carried plus new bytes.
// With atEOF false a trailing partial sequence stays in d.pending for the
// next call; with atEOF true everything is consumed.
func (d *Decoder) decode(chunk []byte, atEOF bool) string {
	d.pending = append(d.pending, chunk...)
	if len(d.pending) == 0 {
		return ""
	}

	var out []byte
	for {
		// Worst case every byte expands to a 3-byte replacement char.
		dst := make([]byte, len(d.pending)*3+utf8.UTFMax)
		nDst, nSrc, err := d.utf8Dec.Transform(dst, d.pending, atEOF)
		out = append(out, dst[:nDst]...)
		d.pending = d.pending[nSrc:]
		if err == transform.ErrShortDst && len(d.pending) > 0 {
			continue
		}
		// nil or ErrShortSrc: a partial rune stays pending until the
		// next chunk (or Flush) completes it.
		break
	}
	return string(out)
}

// =============================================================================
// LINE FRAMING
// =============================================================================

// consumeLines appends decoded text to the line buffer, splits off every
// complete line, and returns the payloads of the data lines among them.
// The trailing incomplete fragment is held back for the next call.
func (d *Decoder) consumeLines(text string) []string {
	if text == "" {
		return nil
	}
	d.lineBuf += text

	var payloads []string
	for {
		idx := strings.IndexByte(d.lineBuf, '\n')
		if idx < 0 {
			break
		}
		line := d.lineBuf[:idx]
		d.lineBuf = d.lineBuf[idx+1:]

		// Lines may be terminated by \r\n or bare \n.
		line = strings.TrimSuffix(line, "\r")

		if payload, ok := parseLine(line); ok {
			payloads = append(payloads, payload)
		}
	}
	return payloads
}

// parseLine extracts the payload from one complete line. It reports false
// for non-data lines and for the end-of-stream sentinel.
func parseLine(line string) (string, bool) {
	if !strings.HasPrefix(line, dataPrefix) {
		return "", false
	}
	payload := line[len(dataPrefix):]
	// The SSE field separator allows a single optional space.
	payload = strings.TrimPrefix(payload, " ")

	if payload == Sentinel {
		return "", false
	}
	return payload, true
}
