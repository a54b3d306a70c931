// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sse decodes server-sent event streams into payload strings.
package sse

import (
	"encoding/json"
	"strings"
)

// DecodePayload converts one event payload into delta text.
//
// Some backends send raw text per event; others JSON-encode each chunk.
// A payload whose first non-space character is `"`, `{`, or `[` is parsed
// as JSON and the parsed value becomes the delta; on parse failure the raw
// payload is used verbatim. This function never fails.
func DecodePayload(payload string) string {
	trimmed := strings.TrimLeft(payload, " \t")
	if trimmed == "" {
		return payload
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err == nil {
			return s
		}
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
			if s, ok := textField(obj); ok {
				return s
			}
			// No recognizable text field: the raw payload is the delta.
		}
	case '[':
		var parts []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &parts); err == nil {
			var b strings.Builder
			for _, p := range parts {
				b.WriteString(DecodePayload(string(p)))
			}
			return b.String()
		}
	}

	return payload
}

// textField looks for the content field names seen across SIA backends,
// in priority order, including the nested message.content shape.
func textField(obj map[string]json.RawMessage) (string, bool) {
	for _, key := range []string{"content", "text", "delta", "response"} {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s, true
		}
	}

	if raw, ok := obj["message"]; ok {
		var msg struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal(raw, &msg); err == nil && msg.Content != "" {
			return msg.Content, true
		}
	}
	return "", false
}
