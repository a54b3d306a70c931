// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go - Line-oriented chat loop. Works in dumb terminals where the
// full-screen view cannot, while keeping history and line editing.
//
// USABILITY: Supports arrow keys for history navigation and line editing.

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/peterh/liner"

	"github.com/jeranaias/sia-console/internal/api"
	"github.com/jeranaias/sia-console/internal/config"
	"github.com/jeranaias/sia-console/internal/model"
	"github.com/jeranaias/sia-console/internal/sanitize"
	"github.com/jeranaias/sia-console/internal/session"
	"github.com/jeranaias/sia-console/internal/stream"
)

// =============================================================================
// LINE READER
// =============================================================================

// LineReader wraps liner with persistent input history.
type LineReader struct {
	line        *liner.State
	historyFile string
}

// NewLineReader creates a reader with history loaded from the config
// directory.
func NewLineReader() *LineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	r := &LineReader{
		line:        line,
		historyFile: filepath.Join(configDir, "history"),
	}
	r.loadHistory()
	return r
}

func (r *LineReader) loadHistory() {
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line with the given prompt. Non-empty input is
// appended to the history.
func (r *LineReader) ReadInput(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// saveHistory persists history with owner-only permissions.
func (r *LineReader) saveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	r.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (r *LineReader) Close() {
	r.saveHistory()
	r.line.Close()
}

// =============================================================================
// STREAM OUTPUT
// =============================================================================

// replUI streams the assistant's reply to stdout as plain text. Each
// callback prints only the suffix that arrived since the last one, so
// the reply appears incrementally the way it does in the chat view.
type replUI struct {
	sessions *session.Manager

	mu      sync.Mutex
	printed int
}

func (u *replUI) resetTurn() {
	u.mu.Lock()
	u.printed = 0
	u.mu.Unlock()
}

// RenderTurn ignores the HTML body and prints the raw text delta from
// the record; a terminal wants the text, not markup.
func (u *replUI) RenderTurn(string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	record := u.sessions.Current()
	var content string
	for i := len(record.Turns) - 1; i >= 0; i-- {
		if record.Turns[i].Role == model.RoleAssistant {
			content = record.Turns[i].Content
			break
		}
	}
	if len(content) > u.printed {
		fmt.Print(content[u.printed:])
		u.printed = len(content)
	}
}

func (u *replUI) ShowTyping() {}
func (u *replUI) HideTyping() {}
func (u *replUI) ScrollToEnd() {}

func (u *replUI) ShowSystemMessage(msg string) {
	fmt.Println()
	fmt.Println(warningStyle.Render(msg))
}

// =============================================================================
// REPL LOOP
// =============================================================================

// HandleRepl runs the line-oriented chat loop.
func HandleRepl(args Args) {
	if err := runRepl(args); err != nil {
		Fatalf("%v", err)
	}
}

func runRepl(args Args) error {
	app, err := NewApp(args)
	if err != nil {
		return err
	}
	defer app.Close()

	sessions := app.Sessions()
	agent := app.Config.Platform.DefaultAgent
	if agent == "" {
		agent = firstAgent(app)
	}
	if agent == "" {
		return fmt.Errorf("no agent selected; pass --agent or set platform.default_agent")
	}
	sessions.SelectAgent(agent)

	ui := &replUI{sessions: sessions}
	orch := stream.New(stream.Config{
		Transport:    app.Client,
		Sessions:     sessions,
		UI:           ui,
		UserID:       app.Config.Platform.UserID,
		DeltaCap:     app.Config.Stream.DeltaCap,
		MessageCap:   app.Config.Stream.MessageCap,
		HistoryLimit: app.Config.Stream.HistoryLimit,
	})

	reader := NewLineReader()
	defer reader.Close()

	app.infof("%s", titleStyle.Render("sia-console "+Version))
	app.infof("%s", mutedStyle.Render("agent "+agent+" · "+app.Client.BaseURL()+" · /help for commands"))

	for {
		input, err := reader.ReadInput(promptStyle.Render("you> "))
		if err != nil {
			// Ctrl+C or Ctrl+D exits; the session manager has
			// already persisted finalized turns.
			fmt.Println()
			return sessions.Persist()
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			cont, err := handleSlashCommand(input, app, sessions)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !cont {
				return sessions.Persist()
			}
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return sessions.Persist()
		}

		if !app.Config.Stream.Enabled {
			if err := queuedSend(app, sessions, input); err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			continue
		}

		ui.resetTurn()
		if err := orch.Send(context.Background(), input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			continue
		}
		fmt.Println()
	}
}

// queuedSend is the stream.enabled=false path: the platform accepts
// the message as a background job and replies out of band.
func queuedSend(app *App, sessions *session.Manager, input string) error {
	text := sanitize.MessageWithCap(input, app.Config.Stream.MessageCap)
	if text == "" {
		return fmt.Errorf("message is empty after sanitization")
	}

	history := sessions.History(app.Config.Stream.HistoryLimit)
	sessions.AppendUserTurn(text)

	job, err := app.Client.Send(context.Background(), sessions.AgentID(), api.SendRequest{
		UserID:         app.Config.Platform.UserID,
		Text:           text,
		ConversationID: sessions.Current().ID,
		History:        history,
	})
	if err != nil {
		return err
	}
	fmt.Println(mutedStyle.Render("queued as job " + job.JobID))
	return nil
}

// firstAgent picks the first agent the platform reports, or "".
func firstAgent(app *App) string {
	agents, err := app.Client.ListAgents(context.Background())
	if err != nil || len(agents) == 0 {
		return ""
	}
	return agents[0].ID
}

// handleSlashCommand executes a /command. Returns false to exit.
func handleSlashCommand(input string, app *App, sessions *session.Manager) (bool, error) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "/quit", "/exit", "/q":
		return false, nil

	case "/help", "/?":
		fmt.Println(`Commands:
  /new              Start a new conversation
  /agent <id>       Switch agent (saves the current conversation)
  /agents           List agents
  /conversations    List saved conversations
  /resume <key>     Resume a saved conversation
  /quit             Exit`)
		return true, nil

	case "/new":
		sessions.NewConversation()
		fmt.Println(mutedStyle.Render("new conversation"))
		return true, nil

	case "/agent":
		if len(fields) < 2 {
			return true, fmt.Errorf("usage: /agent <id>")
		}
		sessions.SelectAgent(fields[1])
		fmt.Println(mutedStyle.Render("switched to " + fields[1]))
		return true, nil

	case "/agents":
		agents, err := app.Client.ListAgents(context.Background())
		if err != nil {
			return true, err
		}
		for _, a := range agents {
			marker := "  "
			if a.ID == sessions.AgentID() {
				marker = successStyle.Render("* ")
			}
			fmt.Printf("%s%s  %s\n", marker, keyStyle.Render(a.ID), mutedStyle.Render(a.Model))
		}
		return true, nil

	case "/conversations", "/convs":
		for _, r := range sessions.ListRecent() {
			fmt.Printf("%s  %s\n", keyStyle.Render(r.Key()), r.GetTitle())
		}
		return true, nil

	case "/resume":
		if len(fields) < 2 {
			return true, fmt.Errorf("usage: /resume <key>")
		}
		if !sessions.Resume(fields[1]) {
			return true, fmt.Errorf("no conversation %q", fields[1])
		}
		printTranscript(sessions.Current(), false)
		return true, nil

	default:
		return true, fmt.Errorf("unknown command %s (try /help)", cmd)
	}
}

// printTranscript writes a conversation to stdout, markdown as-is.
func printTranscript(r *model.Record, timestamps bool) {
	for _, turn := range r.Turns {
		if turn.Content == "" {
			continue
		}
		label := "agent"
		style := successStyle
		if turn.Role == model.RoleUser {
			label = "you"
			style = promptStyle
		}
		if timestamps {
			label += " " + turn.Timestamp.Format("2006-01-02 15:04")
		}
		fmt.Printf("%s\n%s\n\n", style.Render(label+">"), turn.Content)
	}
}
