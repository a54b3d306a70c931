// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// conversations_cmd.go - Saved-conversation management: list, search,
// show, export, delete, reindex.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/sia-console/internal/index"
	"github.com/jeranaias/sia-console/internal/model"
	"github.com/jeranaias/sia-console/internal/render"
	"github.com/jeranaias/sia-console/internal/storage"
	"github.com/jeranaias/sia-console/internal/util"
)

// HandleConversations dispatches the conversations subcommands.
func HandleConversations(args Args) {
	app, err := NewApp(args)
	if err != nil {
		Fatalf("%v", err)
	}
	defer app.Close()

	switch args.Subcommand {
	case "", "list", "ls":
		conversationsList(app, args)
	case "search":
		conversationsSearch(app, args)
	case "show":
		conversationsShow(app, args)
	case "export":
		conversationsExport(app, args)
	case "delete", "rm":
		conversationsDelete(app, args)
	case "reindex":
		conversationsReindex(app)
	default:
		Fatalf("unknown subcommand %q (list, search, show, export, delete, reindex)", args.Subcommand)
	}
}

func conversationsList(app *App, args Args) {
	records := app.Store.Load()
	recent := storage.ListRecent(records, storage.SelectionListLimit)

	if args.JSON {
		type row struct {
			Key       string    `json:"key"`
			AgentID   string    `json:"agent_id"`
			Title     string    `json:"title"`
			Turns     int       `json:"turns"`
			UpdatedAt time.Time `json:"updated_at"`
		}
		rows := make([]row, 0, len(recent))
		for _, r := range recent {
			rows = append(rows, row{r.Key(), r.AgentID, r.GetTitle(), r.TurnCount(), r.UpdatedAt})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			Fatalf("encode: %v", err)
		}
		return
	}

	if len(recent) == 0 {
		app.infof("no saved conversations")
		return
	}

	app.infof("%s", titleStyle.Render(fmt.Sprintf("Conversations (%d of %d)", len(recent), len(records))))
	for _, r := range recent {
		fmt.Printf("%s  %s  %s\n",
			mutedStyle.Render(r.UpdatedAt.Format("2006-01-02 15:04")),
			keyStyle.Render(r.Key()),
			util.TruncateRunes(r.GetTitle(), 60))
	}
}

func conversationsSearch(app *App, args Args) {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		Fatalf("usage: sia-console conversations search <query>")
	}

	idx, err := app.Index()
	if err != nil {
		Fatalf("%v", err)
	}

	// The index follows the store lazily; refresh it before querying so
	// results reflect conversations saved by other commands.
	if err := idx.Rebuild(context.Background(), app.Store.Load()); err != nil {
		Fatalf("reindex: %v", err)
	}

	results, err := idx.Search(query, index.SearchOptions{AgentID: args.Agent})
	if err != nil {
		Fatalf("search: %v", err)
	}

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			Fatalf("encode: %v", err)
		}
		return
	}

	if len(results) == 0 {
		app.infof("no matches for %q", query)
		return
	}

	app.infof("%s", titleStyle.Render(fmt.Sprintf("Matches (%d)", len(results))))
	for _, res := range results {
		fmt.Printf("%s  %s\n  %s\n",
			keyStyle.Render(res.ConversationKey),
			mutedStyle.Render(fmt.Sprintf("turn %d · %s", res.TurnIndex, res.Role)),
			res.Snippet)
	}
}

func conversationsShow(app *App, args Args) {
	record := mustLoadRecord(app, args.Key)

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(record); err != nil {
			Fatalf("encode: %v", err)
		}
		return
	}

	app.infof("%s", titleStyle.Render(record.GetTitle()))
	app.infof("%s", mutedStyle.Render(record.Key()+" · "+record.UpdatedAt.Format("2006-01-02 15:04")))
	fmt.Println()

	term := render.NewTermRenderer(TerminalWidth())
	for _, turn := range record.Turns {
		if turn.Content == "" {
			continue
		}
		label := successStyle.Render("agent>")
		if turn.Role == model.RoleUser {
			label = promptStyle.Render("you>")
		}
		fmt.Println(label)
		fmt.Println(term.Render(turn.Content))
	}
}

func conversationsExport(app *App, args Args) {
	record := mustLoadRecord(app, args.Key)
	parser := NewArgParser(args.Raw)
	out := parser.Flag("out")

	if parser.BoolFlag("html") {
		exportHTML(app, record, out)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", record.GetTitle())
	fmt.Fprintf(&b, "Agent: %s  \nUpdated: %s\n\n", record.AgentID, record.UpdatedAt.Format(time.RFC3339))
	for _, turn := range record.Turns {
		if turn.Content == "" {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", turn.Role, turn.Content)
	}

	if out == "" {
		fmt.Print(b.String())
		return
	}
	if err := util.AtomicWriteFile(out, []byte(b.String()), 0644); err != nil {
		Fatalf("write %s: %v", out, err)
	}
	app.infof("exported %s to %s", record.Key(), out)
}

// exportHTML writes the transcript through the same sanitized HTML
// pipeline the preview server uses, so exported pages stay inert.
func exportHTML(app *App, record *model.Record, out string) {
	renderer := render.NewHTMLRenderer()

	var b strings.Builder
	fmt.Fprintf(&b, "<!doctype html>\n<html><head><meta charset=\"utf-8\"><title>%s</title></head>\n<body>\n",
		html.EscapeString(record.GetTitle()))
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(record.GetTitle()))
	for _, turn := range record.Turns {
		if turn.Content == "" {
			continue
		}
		fmt.Fprintf(&b, "<h2>%s</h2>\n<div>%s</div>\n", turn.Role, renderer.Render(turn.Content))
	}
	b.WriteString("</body></html>\n")

	if out == "" {
		fmt.Print(b.String())
		return
	}
	if err := util.AtomicWriteFile(out, []byte(b.String()), 0644); err != nil {
		Fatalf("write %s: %v", out, err)
	}
	app.infof("exported %s to %s", record.Key(), out)
}

func conversationsDelete(app *App, args Args) {
	key, err := normalizeKey(app, args.Key)
	if err != nil {
		Fatalf("%v", err)
	}

	sessions := app.Sessions()
	if err := sessions.Delete(key); err != nil {
		Fatalf("delete %s: %v", key, err)
	}
	app.infof("deleted %s", key)
}

func conversationsReindex(app *App) {
	idx, err := app.Index()
	if err != nil {
		Fatalf("%v", err)
	}

	records := app.Store.Load()
	if err := idx.Rebuild(context.Background(), records); err != nil {
		Fatalf("reindex: %v", err)
	}
	stats := idx.Stats()
	app.infof("indexed %d conversations, %d turns", stats.ConversationCount, stats.TurnCount)
}

func mustLoadRecord(app *App, rawKey string) *model.Record {
	key, err := normalizeKey(app, rawKey)
	if err != nil {
		Fatalf("%v", err)
	}
	record := app.Store.Load()[key]
	if record == nil {
		Fatalf("no conversation %q", key)
	}
	return record
}
