// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat_cmd.go - The default full-screen chat command.

package cli

import (
	"fmt"

	"github.com/jeranaias/sia-console/internal/stream"
	"github.com/jeranaias/sia-console/internal/ui/chat"
)

// HandleChat starts the full-screen chat view.
func HandleChat(args Args) {
	if !IsTTY() || !IsStdoutTTY() {
		Fatalf("the chat view needs a terminal; use `sia-console repl` for pipes")
	}

	app, err := NewApp(args)
	if err != nil {
		Fatalf("%v", err)
	}
	defer app.Close()

	sessions := app.Sessions()
	if agent := app.Config.Platform.DefaultAgent; agent != "" {
		sessions.SelectAgent(agent)
	}

	bridge := chat.NewBridge()
	orch := stream.New(stream.Config{
		Transport:    app.Client,
		Sessions:     sessions,
		UI:           bridge,
		UserID:       app.Config.Platform.UserID,
		DeltaCap:     app.Config.Stream.DeltaCap,
		MessageCap:   app.Config.Stream.MessageCap,
		HistoryLimit: app.Config.Stream.HistoryLimit,
	})

	err = chat.Run(chat.Config{
		Sessions:       sessions,
		Orchestrator:   orch,
		Client:         app.Client,
		Bridge:         bridge,
		ShowTimestamps: app.Config.UI.ShowTimestamps,
		WordWrap:       app.Config.UI.WordWrap,
	})

	// Quit persists inside the view; this is the belt for panics and
	// terminal errors.
	if perr := sessions.Persist(); perr != nil {
		fmt.Println(warningStyle.Render("⚠ Could not save the conversation: " + perr.Error()))
	}
	if err != nil {
		Fatalf("chat view: %v", err)
	}
}
