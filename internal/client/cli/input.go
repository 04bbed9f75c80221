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

// Terminal seams; tests replace them to avoid touching the real terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

var errEmptyInput = errors.New("input must not be empty")

// GetSimpleText prints a prompt to w and reads a single line from reader.
// Surrounding whitespace is trimmed. A final line without a newline is
// still returned.
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	return readLine(reader)
}

// GetPassword prompts on w and reads a password. On a terminal the input
// is not echoed; otherwise, for piped input, the next line of reader is
// used. The caller should wipe the returned slice.
func GetPassword(reader *bufio.Reader, w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}

	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		line, err := readLine(reader)
		if err != nil {
			return nil, err
		}
		return []byte(line), nil
	}

	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// promptCredentials asks for a username and a password, both required.
func promptCredentials(reader *bufio.Reader, w io.Writer) (string, []byte, error) {
	username, err := getSimpleText(reader, "Enter username", w)
	if err != nil {
		return "", nil, err
	}
	if username == "" {
		return "", nil, fmt.Errorf("username: %w", errEmptyInput)
	}

	password, err := getPassword(reader, w)
	if err != nil {
		return "", nil, err
	}
	if len(password) == 0 {
		return "", nil, fmt.Errorf("password: %w", errEmptyInput)
	}
	return username, password, nil
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
