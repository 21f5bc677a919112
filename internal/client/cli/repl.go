package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Save(ctx context.Context) error
	Update(ctx context.Context) error
	Verify(ctx context.Context) error
	List(ctx context.Context) error
	Delete(ctx context.Context) error
	Audit(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the credvault CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. The loop exits on scanner EOF
// or when the user types "exit" or "quit".
//
//	Not logged in: help, register, login, exit
//	Logged in:     help, save, update, verify, (l)ist, delete, audit, logout, exit
//
// Commands that need a session are refused until login. Errors returned by
// handlers are ignored here; handlers report their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("cv %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: save, update, verify, (l)ist, delete, audit, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		case "save", "update", "verify", "l", "list", "delete", "audit", "logout":
			if !a.isLoggedIn() {
				printlnFn("Please login first")
				continue
			}
			dispatch(ctx, a, cmd)

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string) {
	switch cmd {
	case "save":
		_ = a.Save(ctx)
	case "update":
		_ = a.Update(ctx)
	case "verify":
		_ = a.Verify(ctx)
	case "l", "list":
		_ = a.List(ctx)
	case "delete":
		_ = a.Delete(ctx)
	case "audit":
		_ = a.Audit(ctx)
	case "logout":
		_ = a.Logout(ctx)
	}
}
