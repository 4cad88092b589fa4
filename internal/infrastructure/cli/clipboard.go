package cli

import (
	"bytes"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/doeshing/shlaunch/internal/ports"
)

// Clipboard implements ports.Clipboard using platform-specific tools.
type Clipboard struct {
	goos     string
	lookPath func(string) (string, error)
}

// NewClipboard builds the clipboard helper.
func NewClipboard() *Clipboard {
	return &Clipboard{goos: runtime.GOOS, lookPath: exec.LookPath}
}

func (c *Clipboard) Enabled() bool {
	_, err := c.command()
	return err == nil
}

// Copy copies text to the system clipboard.
func (c *Clipboard) Copy(text string) error {
	cmd, err := c.command()
	if err != nil {
		return err
	}
	cmd.Stdin = bytes.NewBufferString(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", cmd.Path, err, bytes.TrimSpace(out))
	}
	return nil
}

func (c *Clipboard) command() (*exec.Cmd, error) {
	switch c.goos {
	case "darwin":
		return exec.Command("pbcopy"), nil
	case "linux":
		if _, err := c.lookPath("xclip"); err == nil {
			return exec.Command("xclip", "-selection", "clipboard"), nil
		}
		if _, err := c.lookPath("wl-copy"); err == nil {
			return exec.Command("wl-copy"), nil
		}
		return nil, fmt.Errorf("clipboard utilities not found (install xclip or wl-clipboard)")
	default:
		return nil, fmt.Errorf("clipboard not supported on %s", c.goos)
	}
}

var _ ports.Clipboard = (*Clipboard)(nil)
