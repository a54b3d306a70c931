// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"
)

func TestParseFrom_DefaultIsChat(t *testing.T) {
	cmd, _ := ParseFrom(nil)
	if cmd != CmdChat {
		t.Errorf("no args should start the chat view, got %v", cmd)
	}
}

func TestParseFrom_Commands(t *testing.T) {
	tests := []struct {
		argv []string
		want Command
	}{
		{[]string{"chat"}, CmdChat},
		{[]string{"tui"}, CmdChat},
		{[]string{"repl"}, CmdRepl},
		{[]string{"agents"}, CmdAgents},
		{[]string{"conversations"}, CmdConversations},
		{[]string{"convs", "list"}, CmdConversations},
		{[]string{"serve"}, CmdServe},
		{[]string{"auth", "verify"}, CmdAuth},
		{[]string{"config", "show"}, CmdConfig},
		{[]string{"version"}, CmdVersion},
		{[]string{"--version"}, CmdVersion},
		{[]string{"help"}, CmdHelp},
		{[]string{"no-such-command"}, CmdHelp},
	}

	for _, tt := range tests {
		cmd, _ := ParseFrom(tt.argv)
		if cmd != tt.want {
			t.Errorf("ParseFrom(%v) = %v, want %v", tt.argv, cmd, tt.want)
		}
	}
}

func TestParseFrom_GlobalFlags(t *testing.T) {
	cmd, args := ParseFrom([]string{"--agent", "helpdesk", "--base-url", "http://10.0.0.5:8000", "--quiet", "agents"})
	if cmd != CmdAgents {
		t.Fatalf("cmd = %v, want CmdAgents", cmd)
	}
	if args.Agent != "helpdesk" {
		t.Errorf("Agent = %q", args.Agent)
	}
	if args.BaseURL != "http://10.0.0.5:8000" {
		t.Errorf("BaseURL = %q", args.BaseURL)
	}
	if !args.Quiet {
		t.Error("Quiet not set")
	}
}

func TestParseFrom_GlobalFlagsAfterCommand(t *testing.T) {
	cmd, args := ParseFrom([]string{"repl", "--agent", "support"})
	if cmd != CmdRepl {
		t.Fatalf("cmd = %v, want CmdRepl", cmd)
	}
	if args.Agent != "support" {
		t.Errorf("Agent = %q, want support", args.Agent)
	}
}

func TestParseFrom_ConversationsSearchQuery(t *testing.T) {
	cmd, args := ParseFrom([]string{"conversations", "search", "deploy", "key", "rotation"})
	if cmd != CmdConversations {
		t.Fatalf("cmd = %v", cmd)
	}
	if args.Subcommand != "search" {
		t.Errorf("Subcommand = %q", args.Subcommand)
	}
	if args.Query != "deploy key rotation" {
		t.Errorf("Query = %q, want joined positionals", args.Query)
	}
}

func TestParseFrom_ConversationsKeyCommands(t *testing.T) {
	for _, sub := range []string{"show", "export", "delete"} {
		_, args := ParseFrom([]string{"conversations", sub, "helpdesk_abc123"})
		if args.Subcommand != sub {
			t.Errorf("%s: Subcommand = %q", sub, args.Subcommand)
		}
		if args.Key != "helpdesk_abc123" {
			t.Errorf("%s: Key = %q", sub, args.Key)
		}
	}
}
