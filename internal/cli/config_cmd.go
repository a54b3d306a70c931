// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Show the effective configuration.

package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jeranaias/sia-console/internal/api"
	"github.com/jeranaias/sia-console/internal/config"
)

// HandleConfig dispatches the config subcommands.
func HandleConfig(args Args) {
	switch args.Subcommand {
	case "", "show":
		configShow(args)
	case "path":
		configPath()
	case "init":
		configInit(args)
	default:
		Fatalf("unknown subcommand %q (show, path, init)", args.Subcommand)
	}
}

func configShow(args Args) {
	app, err := NewApp(args)
	if err != nil {
		Fatalf("%v", err)
	}
	defer app.Close()

	// SECURITY: never print credentials, even locally.
	shown := *app.Config
	if shown.Platform.AuthToken != "" {
		shown.Platform.AuthToken = "<redacted>"
	}
	if shown.Storage.EncryptPassphrase != "" {
		shown.Storage.EncryptPassphrase = "<redacted>"
	}

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(&shown); err != nil {
			Fatalf("encode: %v", err)
		}
		return
	}

	fmt.Println(titleStyle.Render("Effective configuration"))
	fmt.Printf("%s %s\n", labelStyle.Render("platform url:"), api.ResolveBaseURL(shown.Platform.BaseURL))
	fmt.Printf("%s %s\n", labelStyle.Render("user id:"), shown.Platform.UserID)
	fmt.Printf("%s %s\n", labelStyle.Render("default agent:"), orDash(shown.Platform.DefaultAgent))
	fmt.Printf("%s %v\n", labelStyle.Render("streaming:"), shown.Stream.Enabled)
	fmt.Printf("%s %d / %d\n", labelStyle.Render("delta/message cap:"), shown.Stream.DeltaCap, shown.Stream.MessageCap)
	fmt.Printf("%s %s\n", labelStyle.Render("store:"), app.Store.Path())
	fmt.Printf("%s every %d turns\n", labelStyle.Render("save cadence:"), shown.Storage.SaveEveryTurns)
	fmt.Printf("%s %s\n", labelStyle.Render("serve addr:"), shown.Server.Addr)
	fmt.Printf("%s %s\n", labelStyle.Render("theme:"), shown.UI.Theme)
}

func configPath() {
	path, err := config.ConfigPathTOML()
	if err != nil {
		Fatalf("%v", err)
	}
	fmt.Println(path)
}

// configInit writes the default configuration for editing.
func configInit(args Args) {
	path := args.ConfigPath
	if path == "" {
		p, err := config.ConfigPathTOML()
		if err != nil {
			Fatalf("%v", err)
		}
		path = p
	}
	if _, err := os.Stat(path); err == nil {
		Fatalf("%s already exists", path)
	}

	if err := config.SaveTOML(config.Default(), path); err != nil {
		Fatalf("write %s: %v", path, err)
	}
	fmt.Printf("wrote %s\n", path)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
