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

// ErrNotInteractive is returned when a confirmation is needed but stdin is
// not a terminal.
var ErrNotInteractive = errors.New("confirmation required but stdin is not a terminal; pass --yes")

// Prompter asks yes/no questions on stdin/stdout.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter constructs a prompter referencing stdio. Nil arguments fall
// back to os.Stdin and os.Stdout.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	interactive := false
	if in == nil {
		in = os.Stdin
		interactive = term.IsTerminal(int(os.Stdin.Fd()))
	} else if f, ok := in.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	} else {
		// Injected readers are scripted input.
		interactive = true
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
	}
}

// Enabled indicates the prompter can ask questions.
func (p *Prompter) Enabled() bool {
	return p.interactive
}

// Confirm prints question and reads a y/N answer.
func (p *Prompter) Confirm(question string) (bool, error) {
	if !p.interactive {
		return false, ErrNotInteractive
	}
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes", nil
}
