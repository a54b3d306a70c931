// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// agents_cmd.go - List the agents the platform exposes.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// HandleAgents prints the configured agents.
func HandleAgents(args Args) {
	app, err := NewApp(args)
	if err != nil {
		Fatalf("%v", err)
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	agents, err := app.Client.ListAgents(ctx)
	if err != nil {
		Fatalf("list agents: %v", err)
	}

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(agents); err != nil {
			Fatalf("encode: %v", err)
		}
		return
	}

	if len(agents) == 0 {
		app.infof("no agents configured at %s", app.Client.BaseURL())
		return
	}

	app.infof("%s", titleStyle.Render(fmt.Sprintf("Agents (%d)", len(agents))))
	for _, a := range agents {
		marker := "  "
		if a.ID == app.Config.Platform.DefaultAgent {
			marker = successStyle.Render("* ")
		}
		fmt.Printf("%s%-24s %s\n", marker, keyStyle.Render(a.ID), mutedStyle.Render(a.Model))
	}
}
