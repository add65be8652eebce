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

// readPassword reads from the terminal without echo; tests stub it.
var readPassword = term.ReadPassword

// Prompt helpers used by the commands. Tests swap them for scripted input.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// GetSimpleText asks for one line of input:
//
//	E-mail
//	> ana@example.com
//
// The answer is trimmed. A final line without a newline is still accepted.
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

// GetPassword prints "prompt: " and reads a secret from stdin with echo off.
// Callers wipe the result with common.WipeByteArray once done.
func GetPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// GetWithDefault is GetSimpleText for editor fields: the current value is
// shown in brackets and kept on an empty answer, while a single "-" clears it.
func GetWithDefault(reader *bufio.Reader, prompt, current string, w io.Writer) (string, error) {
	if current != "" {
		prompt = fmt.Sprintf("%s [%s]", prompt, current)
	}
	text, err := getSimpleText(reader, prompt, w)
	if err != nil {
		return "", err
	}
	switch text {
	case "":
		return current, nil
	case "-":
		return "", nil
	default:
		return text, nil
	}
}

// Confirm asks a yes/no question; only "s", "sim", "y" or "yes" count as yes.
func Confirm(reader *bufio.Reader, prompt string, w io.Writer) (bool, error) {
	text, err := getSimpleText(reader, prompt+" (s/N)", w)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(text) {
	case "s", "sim", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
