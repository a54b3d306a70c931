// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the interactive chat view for sia-console.
package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/sia-console/internal/api"
	"github.com/jeranaias/sia-console/internal/render"
	"github.com/jeranaias/sia-console/internal/session"
	"github.com/jeranaias/sia-console/internal/stream"
	"github.com/jeranaias/sia-console/internal/ui/components"
)

// =============================================================================
// MODEL
// =============================================================================

// Config holds the chat view's collaborators.
type Config struct {
	Sessions     *session.Manager
	Orchestrator *stream.Orchestrator
	Client       *api.Client
	Bridge       *Bridge

	// ShowTimestamps displays per-turn times in the transcript.
	ShowTimestamps bool
	// WordWrap overrides the markdown render width (0 = follow terminal).
	WordWrap int
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	sessions *session.Manager
	orch     *stream.Orchestrator
	client   *api.Client
	bridge   *Bridge

	viewport viewport.Model
	textarea textarea.Model
	typing   components.Typing
	keys     KeyMap

	term           *render.TermRenderer
	throttle       *RenderThrottle
	showTimestamps bool
	wordWrap       int

	agents     []api.AgentInfo
	agentIndex int

	notices []string
	status  string

	width  int
	height int
	ready  bool
}

// NewModel creates the chat view.
func NewModel(cfg Config) *Model {
	ta := textarea.New()
	ta.Placeholder = "Message the agent…"
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	wrap := cfg.WordWrap
	if wrap <= 0 {
		wrap = 80
	}

	return &Model{
		sessions:       cfg.Sessions,
		orch:           cfg.Orchestrator,
		client:         cfg.Client,
		bridge:         cfg.Bridge,
		textarea:       ta,
		typing:         components.NewTyping(),
		keys:           DefaultKeyMap(),
		term:           render.NewTermRenderer(wrap),
		throttle:       NewRenderThrottle(30),
		showTimestamps: cfg.ShowTimestamps,
		wordWrap:       cfg.WordWrap,
		status:         "loading agents…",
	}
}

// Init starts the agent fetch.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.loadAgents())
}

// loadAgents fetches the configured agents from the platform.
func (m *Model) loadAgents() tea.Cmd {
	return func() tea.Msg {
		agents, err := m.client.ListAgents(context.Background())
		return AgentsLoadedMsg{Agents: agents, Err: err}
	}
}

// sendMessage runs one round-trip in a command goroutine.
func (m *Model) sendMessage(text string) tea.Cmd {
	return func() tea.Msg {
		return SendDoneMsg{Err: m.orch.Send(context.Background(), text)}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refreshTranscript()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.sessions.Persist()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Send):
			text := m.textarea.Value()
			if text == "" || m.orch.State() == stream.StateAwaitingFirstByte ||
				m.orch.State() == stream.StateStreaming {
				break
			}
			m.textarea.Reset()
			m.status = "sending…"
			cmds = append(cmds, m.sendMessage(text))

		case key.Matches(msg, m.keys.NewConv):
			m.sessions.NewConversation()
			m.notices = nil
			m.status = "new conversation"
			m.refreshTranscript()

		case key.Matches(msg, m.keys.NextAgent):
			m.cycleAgent()

		case key.Matches(msg, m.keys.ScrollUp):
			m.viewport.HalfViewUp()

		case key.Matches(msg, m.keys.ScrollDown):
			m.viewport.HalfViewDown()

		default:
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}

	case AgentsLoadedMsg:
		if msg.Err != nil {
			m.status = "agent list unavailable: " + msg.Err.Error()
			break
		}
		m.agents = msg.Agents
		if len(m.agents) > 0 && m.sessions.AgentID() == "" {
			m.sessions.SelectAgent(m.agents[0].ID)
		}
		m.syncAgentIndex()
		m.status = "ready"

	case TurnUpdatedMsg:
		m.throttle.Mark()
		if m.throttle.ShouldRender() {
			m.refreshTranscript()
		}

	case TypingMsg:
		if msg.Show {
			cmds = append(cmds, m.typing.Show())
		} else {
			m.typing.Hide()
		}
		m.refreshTranscript()

	case SystemNoticeMsg:
		m.notices = append(m.notices, msg.Text)
		m.refreshTranscript()

	case ScrollMsg:
		m.viewport.GotoBottom()

	case SendDoneMsg:
		m.typing.Hide()
		m.throttle.Drain()
		m.refreshTranscript()
		if msg.Err != nil {
			m.status = "error: " + msg.Err.Error()
		} else {
			m.status = "ready"
		}
		m.viewport.GotoBottom()

	default:
		var cmd tea.Cmd
		m.typing, cmd = m.typing.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// cycleAgent selects the next agent in the list. The session manager
// persists the outgoing conversation exactly once.
func (m *Model) cycleAgent() {
	if len(m.agents) == 0 {
		return
	}
	m.agentIndex = (m.agentIndex + 1) % len(m.agents)
	m.sessions.SelectAgent(m.agents[m.agentIndex].ID)
	m.notices = nil
	m.status = "switched to " + m.agents[m.agentIndex].ID
	m.refreshTranscript()
}

// syncAgentIndex aligns the cursor with the session's selected agent.
func (m *Model) syncAgentIndex() {
	current := m.sessions.AgentID()
	for i, a := range m.agents {
		if a.ID == current {
			m.agentIndex = i
			return
		}
	}
}

// resize lays out the viewport and composer for a new terminal size.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	inputHeight := 5  // composer box
	chromeHeight := 4 // header, typing line, status bar
	vpHeight := height - inputHeight - chromeHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(width - 4)

	if m.wordWrap <= 0 {
		wrap := width - 6
		if wrap > 20 {
			m.term = render.NewTermRenderer(wrap)
		}
	}
}
