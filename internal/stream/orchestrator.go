// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream orchestrates one message round-trip: send the user
// text, decode the SSE reply, sanitize and render each delta, and
// finalize the turn.
package stream

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/jeranaias/sia-console/internal/api"
	"github.com/jeranaias/sia-console/internal/model"
	"github.com/jeranaias/sia-console/internal/render"
	"github.com/jeranaias/sia-console/internal/sanitize"
	"github.com/jeranaias/sia-console/internal/session"
	"github.com/jeranaias/sia-console/internal/sse"
)

// =============================================================================
// STATE MACHINE
// =============================================================================

// State is the orchestrator's position in the stream lifecycle.
type State int

const (
	// StateIdle means no stream is in flight.
	StateIdle State = iota
	// StateAwaitingFirstByte means the request is sent and the typing
	// indicator is visible.
	StateAwaitingFirstByte
	// StateStreaming means deltas are arriving and rendering.
	StateStreaming
	// StateFinalizing means the stream ended and the turn is persisting.
	StateFinalizing
	// StateError means the last flight failed; the partial turn is kept.
	StateError
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingFirstByte:
		return "awaiting-first-byte"
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// =============================================================================
// INTERFACES
// =============================================================================

// UI receives display updates during a stream. Implementations must
// tolerate calls from the stream goroutine.
type UI interface {
	// RenderTurn replaces the in-flight assistant turn's rendered body.
	RenderTurn(html string)
	// ShowTyping displays the typing indicator.
	ShowTyping()
	// HideTyping removes the typing indicator.
	HideTyping()
	// ScrollToEnd keeps the newest content visible.
	ScrollToEnd()
	// ShowSystemMessage displays an out-of-band notice.
	ShowSystemMessage(msg string)
}

// Transport sends a message and returns the raw SSE body.
// *api.Client satisfies this.
type Transport interface {
	SendStream(ctx context.Context, agentID string, req api.SendRequest) (io.ReadCloser, error)
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrBusy is returned when a send arrives while a stream is open.
	ErrBusy = errors.New("a stream is already in flight")
	// ErrNoAgent is returned when no agent has been selected.
	ErrNoAgent = errors.New("no agent selected")
	// ErrEmptyMessage is returned when sanitization leaves nothing to send.
	ErrEmptyMessage = errors.New("message is empty after sanitization")
)

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Config holds the orchestrator's collaborators and limits.
type Config struct {
	Transport Transport
	Sessions  *session.Manager
	UI        UI
	Renderer  *render.HTMLRenderer

	// UserID identifies the console user on the wire.
	UserID string
	// DeltaCap bounds each sanitized chunk (0 = default).
	DeltaCap int
	// MessageCap bounds the outbound message (0 = default).
	MessageCap int
	// HistoryLimit bounds the history sent with each message (0 = all).
	HistoryLimit int
}

// Orchestrator drives one stream at a time through the state machine.
type Orchestrator struct {
	mu    sync.Mutex
	state State

	transport Transport
	sessions  *session.Manager
	ui        UI
	renderer  *render.HTMLRenderer

	userID       string
	deltaCap     int
	messageCap   int
	historyLimit int
}

// New creates an orchestrator in the Idle state.
func New(cfg Config) *Orchestrator {
	deltaCap := cfg.DeltaCap
	if deltaCap <= 0 {
		deltaCap = sanitize.DefaultDeltaCap
	}
	messageCap := cfg.MessageCap
	if messageCap <= 0 {
		messageCap = sanitize.DefaultMessageCap
	}
	renderer := cfg.Renderer
	if renderer == nil {
		renderer = render.NewHTMLRenderer()
	}
	return &Orchestrator{
		state:        StateIdle,
		transport:    cfg.Transport,
		sessions:     cfg.Sessions,
		ui:           cfg.UI,
		renderer:     renderer,
		userID:       cfg.UserID,
		deltaCap:     deltaCap,
		messageCap:   messageCap,
		historyLimit: cfg.HistoryLimit,
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// flight pins everything a stream needs, so agent switches mid-stream
// cannot redirect it.
type flight struct {
	agentID   string
	record    *model.Record
	turnIndex int
	buffer    strings.Builder // monotonic: only ever appended to
}

// Send runs one complete round-trip and blocks until the turn is
// finalized or fails. Run it from its own goroutine (a Bubble Tea
// command) to keep the UI live.
func (o *Orchestrator) Send(ctx context.Context, text string) error {
	fl, req, err := o.begin(text)
	if err != nil {
		return err
	}

	body, err := o.transport.SendStream(ctx, fl.agentID, req)
	if err != nil {
		o.fail(fl, err)
		return err
	}
	defer body.Close()

	if err := o.consume(ctx, fl, body); err != nil {
		o.fail(fl, err)
		return err
	}

	return o.finalize(fl)
}

// begin validates the input, records the user turn, and opens a flight.
func (o *Orchestrator) begin(text string) (*flight, api.SendRequest, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateIdle && o.state != StateError {
		return nil, api.SendRequest{}, ErrBusy
	}

	agentID := o.sessions.AgentID()
	if agentID == "" {
		return nil, api.SendRequest{}, ErrNoAgent
	}

	clean := sanitize.MessageWithCap(text, o.messageCap)
	if clean == "" {
		return nil, api.SendRequest{}, ErrEmptyMessage
	}

	history := o.sessions.History(o.historyLimit)
	o.sessions.AppendUserTurn(clean)
	record := o.sessions.Current()
	turnIndex := o.sessions.BeginAssistantTurn()

	req := api.SendRequest{
		UserID:         o.userID,
		Text:           clean,
		ConversationID: record.ID,
		Stream:         true,
		History:        history,
	}

	o.state = StateAwaitingFirstByte
	o.ui.ShowTyping()
	o.ui.ScrollToEnd()

	return &flight{agentID: agentID, record: record, turnIndex: turnIndex}, req, nil
}

// consume decodes the SSE body and applies each delta.
func (o *Orchestrator) consume(ctx context.Context, fl *flight, body io.Reader) error {
	dec := sse.NewDecoder()
	buf := make([]byte, 4096)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := body.Read(buf)
		if n > 0 {
			for _, payload := range dec.Write(buf[:n]) {
				o.applyDelta(fl, payload)
			}
		}
		if err != nil {
			if err == io.EOF {
				for _, payload := range dec.Flush() {
					o.applyDelta(fl, payload)
				}
				return nil
			}
			return err
		}
	}
}

// applyDelta sanitizes one payload, grows the buffer, and re-renders
// the whole accumulated turn.
func (o *Orchestrator) applyDelta(fl *flight, payload string) {
	delta := sanitize.DeltaWithCap(sse.DecodePayload(payload), o.deltaCap)
	if delta == "" {
		return
	}

	o.mu.Lock()
	if o.state == StateAwaitingFirstByte {
		o.state = StateStreaming
		o.ui.HideTyping()
	}
	o.mu.Unlock()

	fl.buffer.WriteString(delta)
	content := fl.buffer.String()

	o.sessions.SetRecordContent(fl.record, fl.turnIndex, content)
	o.ui.RenderTurn(o.renderer.Render(content))
	o.ui.ScrollToEnd()
}

// finalize persists the finished turn and returns to Idle. A
// persistence failure is reported but does not fail the turn; the text
// is already on screen and in memory.
func (o *Orchestrator) finalize(fl *flight) error {
	o.mu.Lock()
	o.state = StateFinalizing
	o.ui.HideTyping()
	o.mu.Unlock()

	if err := o.sessions.FinalizeRecordTurn(fl.record, fl.turnIndex); err != nil {
		log.Printf("STREAM: finalize save failed: %v", err)
		o.ui.ShowSystemMessage("⚠ Could not save the conversation; it will retry on the next save.")
	}

	o.mu.Lock()
	o.state = StateIdle
	o.mu.Unlock()
	return nil
}

// fail keeps the partial turn, surfaces the error, and parks in Error.
func (o *Orchestrator) fail(fl *flight, err error) {
	o.mu.Lock()
	o.state = StateError
	o.ui.HideTyping()
	o.mu.Unlock()

	// The partial content stays in the turn; only the notice is added.
	if fl.buffer.Len() > 0 {
		o.ui.ShowSystemMessage("⚠ Connection lost; the partial reply was kept.")
	} else {
		o.ui.ShowSystemMessage("⚠ " + err.Error())
	}
	log.Printf("STREAM: flight failed in conversation %s: %v", fl.record.ID, err)
}
