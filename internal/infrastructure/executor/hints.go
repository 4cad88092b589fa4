package executor

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/doeshing/shlaunch/internal/domain"
)

// RemediationHint derives advisory text from a failed or timed-out outcome by
// pattern-matching its error text. The match is a heuristic: an empty hint
// says nothing about the failure.
func RemediationHint(outcome domain.ExecutionOutcome) string {
	switch outcome.Status {
	case domain.StatusTimedOut:
		return "The command may be long-running; run it in a terminal instead."
	case domain.StatusFailed:
	default:
		return ""
	}

	text := strings.ToLower(outcome.ErrorMessage + "\n" + outcome.Stderr)
	switch {
	case strings.Contains(text, "command not found") || strings.Contains(text, ": not found"):
		if name := firstCommandName(outcome.Command); name != "" {
			return fmt.Sprintf("%q was not found; check that it is installed and on your PATH.", name)
		}
		return "Command not found; check that it is installed and on your PATH."
	case strings.Contains(text, "permission denied"):
		return "Permission denied; check file permissions or whether the command needs elevated privileges."
	case strings.Contains(text, "no such file or directory"):
		return "A file or directory does not exist; check the paths in the command and the working directory."
	default:
		return ""
	}
}

// firstCommandName returns the name of the first simple command in a
// shell snippet, or "" when it cannot be parsed.
func firstCommandName(command string) string {
	file, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(strings.NewReader(command), "")
	if err != nil {
		return ""
	}
	var name string
	syntax.Walk(file, func(node syntax.Node) bool {
		if name != "" {
			return false
		}
		if call, ok := node.(*syntax.CallExpr); ok && len(call.Args) > 0 {
			name = call.Args[0].Lit()
		}
		return true
	})
	return name
}
