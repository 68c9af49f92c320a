package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/client"
)

var (
	errUnterminatedQuote = errors.New("unterminated quote")
	errBadOption         = errors.New("expected name=value")
	// errReported marks failures the user has already been told about,
	// e.g. by a mutation notification.
	errReported = errors.New("already reported")
)

// command is one REPL verb.
type command struct {
	name    string
	usage   string
	summary string
	minArgs int
	// public commands work without a session.
	public bool
	run    func(ctx context.Context, args []string) error
}

type registry struct {
	order  []*command
	byName map[string]*command
}

func newRegistry(cmds ...command) *registry {
	r := &registry{byName: make(map[string]*command, len(cmds))}
	for i := range cmds {
		c := &cmds[i]
		r.order = append(r.order, c)
		r.byName[c.name] = c
	}
	return r
}

func (r *registry) lookup(name string) (*command, bool) {
	c, ok := r.byName[name]
	return c, ok
}

func (r *registry) help(loggedIn bool) string {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, c := range r.order {
		if !c.public && !loggedIn {
			continue
		}
		fmt.Fprintf(&b, "  %-44s %s\n", c.usage, c.summary)
	}
	b.WriteString("  exit | quit")
	return b.String()
}

// shell is what the REPL needs from the App; tests provide a stub.
type shell interface {
	prompt() string
	isLoggedIn() bool
	cmds() *registry
}

func (a *App) cmds() *registry { return a.commands }

// runREPL reads one line at a time from r, dispatches the first word as a
// command and prints failures to w. It returns on EOF, "exit" or "quit".
func runREPL(ctx context.Context, sh shell, r *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprint(w, sh.prompt())

		line, readErr := r.ReadString('\n')
		if line == "" && readErr != nil {
			fmt.Fprintln(w)
			return
		}

		args, err := splitArgs(line)
		if err != nil {
			fmt.Fprintln(w, "Error:", err)
			continue
		}
		if len(args) > 0 && !dispatch(ctx, sh, args, w) {
			return
		}
		if readErr != nil {
			return
		}
	}
}

// dispatch runs one command. It reports false when the REPL should stop.
func dispatch(ctx context.Context, sh shell, args []string, w io.Writer) bool {
	name, rest := args[0], args[1:]

	switch name {
	case "exit", "quit":
		fmt.Fprintln(w, "Bye!")
		return false
	case "help":
		fmt.Fprintln(w, sh.cmds().help(sh.isLoggedIn()))
		return true
	}

	cmd, ok := sh.cmds().lookup(name)
	if !ok {
		fmt.Fprintln(w, "Unknown command:", name)
		return true
	}
	if !cmd.public && !sh.isLoggedIn() {
		fmt.Fprintln(w, "Please log in first")
		return true
	}
	if len(rest) < cmd.minArgs {
		fmt.Fprintln(w, "Usage:", cmd.usage)
		return true
	}

	reportError(w, cmd.run(ctx, rest))
	return true
}

func reportError(w io.Writer, err error) {
	var apiErr *client.APIError
	switch {
	case err == nil, errors.Is(err, errReported):
	case errors.Is(err, client.ErrUnauthorized):
		// the navigator has already printed the expiry message
	case errors.As(err, &apiErr), errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(w, "Error:", client.UserMessage(err))
	default:
		fmt.Fprintln(w, "Error:", err)
	}
}
