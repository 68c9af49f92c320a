package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword and isTerminal are test seams over x/term.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword reads a password without echo when stdin is a terminal, and
// a plain line from reader otherwise (piped input, scripts).
//
// The returned byte slice should be wiped by the caller when no longer needed.
func GetPassword(reader *bufio.Reader, w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}

	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
			return nil, err
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}

	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// splitArgs splits a command line on whitespace. Double quotes group words,
// so `add-article "name=Oil filter"` yields one argument.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		hasArg  bool
	)

	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			hasArg = true
		case !inQuote && (r == ' ' || r == '\t' || r == '\r' || r == '\n'):
			if hasArg {
				args = append(args, cur.String())
				cur.Reset()
				hasArg = false
			}
		default:
			cur.WriteRune(r)
			hasArg = true
		}
	}
	if inQuote {
		return nil, errUnterminatedQuote
	}
	if hasArg {
		args = append(args, cur.String())
	}
	return args, nil
}

// options parses trailing name=value arguments into a map.
func options(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", errBadOption, arg)
		}
		out[strings.ToLower(name)] = value
	}
	return out, nil
}
