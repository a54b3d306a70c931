// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - Platform session checks: verify the configured token,
// end the session.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// HandleAuth dispatches the auth subcommands.
func HandleAuth(args Args) {
	app, err := NewApp(args)
	if err != nil {
		Fatalf("%v", err)
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch args.Subcommand {
	case "", "verify", "status":
		authVerify(ctx, app, args)
	case "logout":
		if err := app.Client.Logout(ctx); err != nil {
			Fatalf("logout: %v", err)
		}
		app.infof("%s", successStyle.Render("logged out"))
	default:
		Fatalf("unknown subcommand %q (verify, logout)", args.Subcommand)
	}
}

func authVerify(ctx context.Context, app *App, args Args) {
	status, err := app.Client.VerifyAuth(ctx)
	if err != nil {
		Fatalf("verify: %v", err)
	}

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			Fatalf("encode: %v", err)
		}
		return
	}

	if !status.Valid {
		fmt.Println(warningStyle.Render("session invalid or expired"))
		os.Exit(1)
	}
	who := status.User
	if who == "" {
		who = "unknown user"
	}
	app.infof("%s %s", successStyle.Render("session valid:"), who)
}
