package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/clansession/internal/logging"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Status(ctx context.Context) error
	ListTeams(ctx context.Context) error
	Switch(ctx context.Context, args []string) error
	SetDefault(ctx context.Context, args []string) error
	SetMode(ctx context.Context, args []string) error
	Tasks(ctx context.Context, args []string) error
	Refresh(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the session CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command and the rest as its arguments, and dispatches to methods on 'a'.
// The loop exits on scanner EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Signed out:
//	  - help              show available commands
//	  - register          create an account
//	  - login             authenticate
//	  - status            show token and cache state
//	  - exit | quit       leave the program
//
//	Signed in:
//	  - whoami            show the cached profile
//	  - teams             reload and list teams
//	  - switch <id>       switch the current team
//	  - default <id>      mark a team as default
//	  - mode <single|global>
//	  - tasks [status] [page] [size]
//	                      list tasks across teams (global mode)
//	  - refresh           trade the refresh token for a new pair
//	  - logout            sign out and clear local session data
//
// A failing command prints its error and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("cs %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		cctx := logging.ContextWith(ctx, "command", cmd)

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn(cctx) {
				printlnFn("Available commands: whoami, status, teams, switch <id>, default <id>, mode <single|global>, tasks, refresh, logout, exit")
			} else {
				printlnFn("Available commands: register, login, status, exit")
			}

		case "register":
			err = a.Register(cctx)

		case "login":
			err = a.Login(cctx)

		case "logout":
			err = a.Logout(cctx)

		case "whoami":
			err = a.WhoAmI(cctx)

		case "status":
			err = a.Status(cctx)

		case "t", "teams":
			err = a.ListTeams(cctx)

		case "switch":
			err = a.Switch(cctx, args)

		case "default":
			err = a.SetDefault(cctx, args)

		case "mode":
			err = a.SetMode(cctx, args)

		case "tasks":
			err = a.Tasks(cctx, args)

		case "refresh":
			err = a.Refresh(cctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
