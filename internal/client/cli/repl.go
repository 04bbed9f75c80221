package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for REPL output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to. The real
// App satisfies it; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Rooms(ctx context.Context) error
	NewRoom(ctx context.Context, args []string) error
	Open(ctx context.Context, args []string) error
	Rename(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Send(ctx context.Context, args []string) error
	History(ctx context.Context) error
	Clear(ctx context.Context) error
	EDA(ctx context.Context) error
	Breakdown(ctx context.Context, args []string) error
	TimeSeries(ctx context.Context, args []string) error
	Anomalies(ctx context.Context, args []string) error
	Chart(ctx context.Context, args []string) error
	Health(ctx context.Context) error
	Sidebar(ctx context.Context) error
	Tab(ctx context.Context, args []string) error
}

var errUsage = errors.New("usage")

const (
	helpLoggedOut = "Available commands: register, login, health, exit"
	helpLoggedIn  = "Available commands: rooms, new [title], open <id>, rename <id> <title>, delete <id>, " +
		"send <text>, history, clear, eda, breakdown <dimension> [n], timeseries [group], " +
		"anomalies [method], chart <trend|category|heatmap|scatter> [method], health, sidebar, tab <name>, logout, exit"
)

// usage holds the argument synopsis printed when a command is misused.
var usage = map[string]string{
	"new":        "new [title]",
	"open":       "open <id>",
	"rename":     "rename <id> <title>",
	"delete":     "delete <id>",
	"send":       "send <text>",
	"breakdown":  "breakdown <dimension> [n]",
	"timeseries": "timeseries [group]",
	"anomalies":  "anomalies [method]",
	"chart":      "chart <trend|category|heatmap|scatter> [method]",
	"tab":        "tab <dashboard|chat|eda>",
}

// runREPL starts a read–eval–print loop for the edachat CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on a with the remaining tokens. Commands other than
// help, register, login, health and exit require a signed-in session. The
// loop exits on EOF, when the user types "exit" or "quit", or once ctx is
// done and the pending line has been read.
//
// Errors returned by handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("eda%s> ", prefixSpace(statusFn())))

		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}
		if ctx.Err() != nil {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		if err := dispatch(ctx, a, cmd, args); err != nil {
			if errors.Is(err, errUsage) {
				printlnFn("Usage:", usage[cmd])
			} else {
				printlnFn("Error:", err)
			}
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpLoggedOut)
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "health":
		return a.Health(ctx)
	}

	handler, ok := sessionCommands[cmd]
	if !ok {
		printlnFn("Unknown command:", cmd)
		return nil
	}
	if !a.isLoggedIn() {
		printlnFn("Please login first")
		return nil
	}
	return handler(ctx, a, args)
}

var sessionCommands = map[string]func(context.Context, execIface, []string) error{
	"logout":     func(ctx context.Context, a execIface, _ []string) error { return a.Logout(ctx) },
	"rooms":      func(ctx context.Context, a execIface, _ []string) error { return a.Rooms(ctx) },
	"new":        func(ctx context.Context, a execIface, args []string) error { return a.NewRoom(ctx, args) },
	"open":       func(ctx context.Context, a execIface, args []string) error { return a.Open(ctx, args) },
	"rename":     func(ctx context.Context, a execIface, args []string) error { return a.Rename(ctx, args) },
	"delete":     func(ctx context.Context, a execIface, args []string) error { return a.Delete(ctx, args) },
	"send":       func(ctx context.Context, a execIface, args []string) error { return a.Send(ctx, args) },
	"history":    func(ctx context.Context, a execIface, _ []string) error { return a.History(ctx) },
	"clear":      func(ctx context.Context, a execIface, _ []string) error { return a.Clear(ctx) },
	"eda":        func(ctx context.Context, a execIface, _ []string) error { return a.EDA(ctx) },
	"breakdown":  func(ctx context.Context, a execIface, args []string) error { return a.Breakdown(ctx, args) },
	"timeseries": func(ctx context.Context, a execIface, args []string) error { return a.TimeSeries(ctx, args) },
	"anomalies":  func(ctx context.Context, a execIface, args []string) error { return a.Anomalies(ctx, args) },
	"chart":      func(ctx context.Context, a execIface, args []string) error { return a.Chart(ctx, args) },
	"sidebar":    func(ctx context.Context, a execIface, _ []string) error { return a.Sidebar(ctx) },
	"tab":        func(ctx context.Context, a execIface, args []string) error { return a.Tab(ctx, args) },
}

func prefixSpace(s string) string {
	if s == "" {
		return ""
	}
	return " " + s
}
