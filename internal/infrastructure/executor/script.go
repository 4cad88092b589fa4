package executor

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/doeshing/shlaunch/internal/domain"
	"github.com/doeshing/shlaunch/internal/pkg/filesystem"
)

const (
	zshInit  = `if [ -f ~/.zshrc ]; then source ~/.zshrc >/dev/null 2>&1; fi`
	bashInit = `if [ -f ~/.bash_profile ]; then source ~/.bash_profile >/dev/null 2>&1; ` +
		`elif [ -f ~/.bashrc ]; then source ~/.bashrc >/dev/null 2>&1; fi`
)

// BuildScript composes the script passed to "<shell> -c". Steps go on
// separate lines so a trailing comment in command cannot swallow them:
// an optional directory change, the shell initialisation, then the command.
func BuildScript(command, shell, profile, dir string) string {
	family := domain.ShellFamily(shell)
	var lines []string

	if dir = strings.TrimSpace(dir); dir != "" {
		lines = append(lines, "cd "+quote(dir, family)+" || exit 1")
	}
	if init := initLine(family, strings.TrimSpace(profile)); init != "" {
		lines = append(lines, init)
	}
	lines = append(lines, command)
	return strings.Join(lines, "\n")
}

// initLine picks the shell initialisation step. An explicit profile must
// load or the run aborts; the per-shell rc files are optional and silent.
func initLine(family domain.ShellName, profile string) string {
	switch {
	case profile != "":
		source := "."
		if family != domain.ShellUnknown {
			source = "source"
		}
		return source + " " + quote(filesystem.ExpandPath(profile), family) + " || exit 1"
	case family == domain.ShellZsh:
		return zshInit
	case family == domain.ShellBash:
		return bashInit
	default:
		return ""
	}
}

// quote shell-quotes s for the given shell family.
func quote(s string, family domain.ShellName) string {
	lang := syntax.LangPOSIX
	if family != domain.ShellUnknown {
		lang = syntax.LangBash
	}
	if quoted, err := syntax.Quote(s, lang); err == nil {
		return quoted
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
