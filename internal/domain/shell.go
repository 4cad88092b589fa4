package domain

import "strings"

// ShellName enumerates shells with known profile conventions.
type ShellName string

const (
	ShellUnknown ShellName = "unknown"
	ShellZsh     ShellName = "zsh"
	ShellBash    ShellName = "bash"
)

// ShellFamily classifies a shell binary path by substring match on the
// whole path, so /usr/local/bin/zsh-5.9 is still zsh. zsh wins over bash.
func ShellFamily(path string) ShellName {
	p := strings.ToLower(strings.TrimSpace(path))
	switch {
	case strings.Contains(p, "zsh"):
		return ShellZsh
	case strings.Contains(p, "bash"):
		return ShellBash
	default:
		return ShellUnknown
	}
}

// String implements fmt.Stringer.
func (s ShellName) String() string {
	return string(s)
}
