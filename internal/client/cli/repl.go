package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Add(ctx context.Context) error
	Update(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Health(ctx context.Context) error
}

// runREPL reads one command per line and dispatches it. Command errors are
// reported to w and the loop goes on; it stops on exit/quit, EOF or ctx
// cancellation.
func runREPL(ctx context.Context, a execIface, statusFn func(context.Context) string, reader *bufio.Reader, w io.Writer) {
	for ctx.Err() == nil {
		fmt.Fprintf(w, "pk%s> ", statusFn(ctx))
		line, err := reader.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				fmt.Fprintln(w, "Available commands: (l)ist, add, update [id], delete [id], health, logout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: register, login, health, exit")
			}
		case "register":
			report(w, a.Register(ctx))
		case "login":
			report(w, a.Login(ctx))
		case "logout":
			report(w, a.Logout(ctx))
		case "l", "list":
			report(w, a.List(ctx))
		case "add":
			report(w, a.Add(ctx))
		case "update":
			report(w, a.Update(ctx, args))
		case "delete":
			report(w, a.Delete(ctx, args))
		case "health":
			report(w, a.Health(ctx))
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}

func report(w io.Writer, err error) {
	if err != nil {
		fmt.Fprintln(w, "error:", describe(err))
	}
}
