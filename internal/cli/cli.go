// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command-line parsing and dispatch for sia-console.

package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdChat Command = iota // full-screen chat view (default)
	CmdRepl                // line-oriented chat for dumb terminals and pipes
	CmdAgents
	CmdConversations
	CmdServe
	CmdAuth
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Agent      string // --agent: select agent without the picker
	BaseURL    string // --base-url: platform override (beats SIA_API_BASE_URL)
	ConfigPath string // --config: explicit config file
	Quiet      bool
	JSON       bool

	// Command-specific
	Subcommand string
	Query      string
	Key        string

	// Raw args remaining after global flag parsing
	Raw []string
}

const usageText = `sia-console %s - terminal console for streaming agent conversations

Usage:
  sia-console                         Start the chat view (default)
  sia-console chat                    Start the chat view
  sia-console repl                    Line-oriented chat (no alt screen)
  sia-console agents                  List agents on the platform
  sia-console conversations list      List saved conversations (newest first)
  sia-console conversations search <query>
                                      Full-text search across transcripts
  sia-console conversations show <key>
                                      Print one transcript
  sia-console conversations export <key> [--out FILE]
                                      Export a transcript as markdown
  sia-console conversations delete <key>
                                      Delete one conversation
  sia-console conversations reindex   Rebuild the search index
  sia-console serve [--addr HOST:PORT]
                                      Read-only transcript viewer over HTTP
  sia-console auth [verify|logout]    Check or end the platform session
  sia-console config [show|path]      Show effective configuration
  sia-console version                 Print version information
  sia-console help                    Show this help

Global flags:
  --agent ID        Select an agent by id
  --base-url URL    Platform base URL (overrides SIA_API_BASE_URL)
  --config FILE     Load configuration from FILE
  --quiet           Suppress informational output
  --json            Machine-readable output where supported

Environment:
  SIA_API_BASE_URL  Platform base URL (default http://localhost:8000)
  SIA_AUTH_TOKEN    Bearer token sent with every request
  SIA_USER_ID       User id sent with each message
`

// PrintUsage prints usage information to stdout.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("sia-console version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
	fmt.Printf("  Go version: %s\n", runtime.Version())
	fmt.Printf("  Platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return ParseFrom(os.Args[1:])
}

// ParseFrom parses the given arguments. Split out from Parse for tests.
func ParseFrom(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	// No command defaults to the chat view.
	if len(remaining) == 0 {
		return CmdChat, args
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch cmd {
	case "chat", "tui":
		return CmdChat, args

	case "repl":
		return CmdRepl, args

	case "agents":
		return CmdAgents, args

	case "conversations", "conversation", "convs":
		parseConversationsArgs(&args, remaining)
		return CmdConversations, args

	case "serve":
		return CmdServe, args

	case "auth":
		parser := NewArgParser(remaining)
		args.Subcommand = parser.Subcommand()
		return CmdAuth, args

	case "config":
		parser := NewArgParser(remaining)
		args.Subcommand = parser.Subcommand()
		return CmdConfig, args

	case "version", "-v", "--version":
		return CmdVersion, args

	case "help", "-h", "--help":
		return CmdHelp, args

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return CmdHelp, args
	}
}

// parseGlobalFlags extracts flags that apply to every command and
// returns the remaining arguments.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var args Args
	remaining := make([]string, 0, len(argv))

	i := 0
	for i < len(argv) {
		switch arg := argv[i]; arg {
		case "--agent", "-a":
			if i+1 < len(argv) {
				args.Agent = argv[i+1]
				i += 2
				continue
			}
			i++

		case "--base-url":
			if i+1 < len(argv) {
				args.BaseURL = argv[i+1]
				i += 2
				continue
			}
			i++

		case "--config":
			if i+1 < len(argv) {
				args.ConfigPath = argv[i+1]
				i += 2
				continue
			}
			i++

		case "--quiet", "-q":
			args.Quiet = true
			i++

		case "--json":
			args.JSON = true
			i++

		default:
			remaining = append(remaining, arg)
			i++
		}
	}

	return remaining, args
}

// parseConversationsArgs fills the subcommand, query, and key fields.
func parseConversationsArgs(args *Args, remaining []string) {
	parser := NewArgParser(remaining)
	args.Subcommand = parser.Subcommand()

	switch args.Subcommand {
	case "search":
		args.Query = parser.JoinPositionalFrom(1)
	case "show", "export", "delete":
		args.Key = parser.Positional(1)
	}
}
