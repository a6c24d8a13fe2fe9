// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command handlers for insight.
package cli

import (
	"fmt"
	"os"
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
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	Command Command

	// Global flags
	Quiet   bool
	Verbose bool

	// Command-specific
	Email      string
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw args remaining after flag parsing
	Raw []string
}

const usageText = `insight - Health Insight terminal client

Insight is a terminal client for the Health Insight service: chat about
your health, paste or upload lab reports for analysis, and export
clinician-reviewed insights.

Usage:
  insight                    Start the TUI (default)
  insight login [email]      Sign in and store the session token
  insight logout             Sign out and clear the stored token
  insight config [show|set]  Configuration
  insight version            Show version
  insight help               Show this help

Flags:
  -q, --quiet      Suppress non-error output
  -v, --verbose    Verbose output

Environment:
  INSIGHT_BASE_URL           Backend base URL
  INSIGHT_ADMIN_EMAILS       Comma-separated admin allow-list
  INSIGHT_EXPORT_DIR         Report export directory
`

// Parse turns os.Args style input (without the program name) into Args.
func Parse(argv []string) (Args, error) {
	args := Args{Command: CmdTUI}

	rest := make([]string, 0, len(argv))
	for _, a := range argv {
		switch a {
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		case "-h", "--help":
			args.Command = CmdHelp
			return args, nil
		default:
			if strings.HasPrefix(a, "-") {
				return args, fmt.Errorf("unknown flag: %s", a)
			}
			rest = append(rest, a)
		}
	}

	if len(rest) == 0 {
		return args, nil
	}

	switch rest[0] {
	case "login":
		args.Command = CmdLogin
		if len(rest) > 1 {
			args.Email = rest[1]
		}
	case "logout":
		args.Command = CmdLogout
	case "config":
		args.Command = CmdConfig
		args.Subcommand = "show"
		if len(rest) > 1 {
			args.Subcommand = rest[1]
		}
		if args.Subcommand == "set" {
			if len(rest) < 4 {
				return args, fmt.Errorf("usage: insight config set <key> <value>")
			}
			args.ConfigKey = rest[2]
			args.ConfigVal = rest[3]
		}
	case "version":
		args.Command = CmdVersion
	case "help":
		args.Command = CmdHelp
	default:
		return args, fmt.Errorf("unknown command: %s", rest[0])
	}

	args.Raw = rest[1:]
	return args, nil
}

// Usage prints the usage text.
func Usage() {
	fmt.Print(usageText)
}

// Run dispatches a parsed command. CmdTUI is handled by the caller; this
// returns an exit code for the terminal commands.
func Run(args Args) int {
	var err error
	switch args.Command {
	case CmdLogin:
		err = handleLogin(args)
	case CmdLogout:
		err = handleLogout(args)
	case CmdConfig:
		err = handleConfig(args)
	case CmdVersion:
		fmt.Printf("insight %s (%s, built %s)\n", Version, GitCommit, BuildDate)
	case CmdHelp:
		Usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
