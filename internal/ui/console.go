// Package ui is the human input/output channel for finsight sessions.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Console is the narrow contract the conversation engine needs from a human:
// a blocking single-line prompt and a fire-and-forget display.
type Console interface {
	Prompt(message string) (string, error)
	Display(text string)
}

// Stdio is a Console over an input reader and output writer.
type Stdio struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewStdio creates a console over the given streams. Nil arguments default
// to os.Stdin and os.Stdout.
func NewStdio(in io.Reader, out io.Writer) *Stdio {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Stdio{in: bufio.NewScanner(in), out: out}
}

// Prompt writes the message and blocks for one line of input.
func (s *Stdio) Prompt(message string) (string, error) {
	fmt.Fprint(s.out, message)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

// Display writes a line of output.
func (s *Stdio) Display(text string) {
	fmt.Fprintln(s.out, text)
}

// Banner returns the startup banner.
func Banner(version string) string {
	return fmt.Sprintf(`  __ _           _       _     _
 / _(_)_ __  ___(_) __ _| |__ | |_
| |_| | '_ \/ __| |/ _`+"`"+` | '_ \| __|
|  _| | | | \__ \ | (_| | | | | |_
|_| |_|_| |_|___/_|\__, |_| |_|\__|
                   |___/  v%s
`, version)
}
