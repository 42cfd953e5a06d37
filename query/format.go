package query

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/tolaworks/caps/capset"
)

// ErrorContext indicates the environment where requirement failures will
// be displayed.
type ErrorContext string

const (
	// ErrorContextTerminal indicates output to a terminal with ANSI colors
	ErrorContextTerminal ErrorContext = "terminal"
	// ErrorContextPlain indicates output without ANSI codes (logs, web UI)
	ErrorContextPlain ErrorContext = "plain"
)

// RequirementError reports an unsatisfied requirement with enough context
// for the user to see which part of their own expression failed. It is
// the expected, recoverable outcome of a check, not a crash.
type RequirementError struct {
	Trace       string   // Rendered requirement expression
	Held        []string // Capability names the entity actually holds
	Missing     []string // Atom names referenced but not held
	Suggestions []string // Possible fixes
}

// NewRequirementError builds the failure report for an unsatisfied check.
func NewRequirementError(e Expr, s capset.Set) *RequirementError {
	held := s.Names()
	heldSet := make(map[string]bool, len(held))
	for _, name := range held {
		heldSet[name] = true
	}

	var missing []string
	seen := map[string]bool{}
	collectAtoms(e, func(a atom) {
		name := a.cap.Name
		if !heldSet[name] && !seen[name] {
			missing = append(missing, name)
			seen[name] = true
		}
	})

	err := &RequirementError{
		Trace:   Render(e),
		Held:    held,
		Missing: missing,
	}
	for _, name := range missing {
		err.Suggestions = append(err.Suggestions, fmt.Sprintf("grant capability %q to the entity", name))
	}
	return err
}

func collectAtoms(e Expr, fn func(atom)) {
	switch n := e.(type) {
	case atom:
		fn(n)
	case and:
		collectAtoms(n.left, fn)
		collectAtoms(n.right, fn)
	case or:
		collectAtoms(n.left, fn)
		collectAtoms(n.right, fn)
	case not:
		collectAtoms(n.inner, fn)
	case group:
		collectAtoms(n.inner, fn)
	}
}

// Error implements the error interface with terminal formatting.
func (e *RequirementError) Error() string {
	return e.FormatError(ErrorContextTerminal)
}

// FormatError generates a context-appropriate failure message.
func (e *RequirementError) FormatError(ctx ErrorContext) string {
	if ctx == ErrorContextPlain {
		return e.formatPlain()
	}
	return e.formatTerminal()
}

func (e *RequirementError) formatPlain() string {
	msg := fmt.Sprintf("requirement not satisfied: %s", e.Trace)
	if len(e.Held) > 0 {
		msg += fmt.Sprintf(" (entity holds: %s)", strings.Join(e.Held, ", "))
	} else {
		msg += " (entity holds no capabilities)"
	}
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(". Suggestions: %s", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *RequirementError) formatTerminal() string {
	msg := pterm.Red("requirement not satisfied: ") + pterm.Bold.Sprint(e.Trace)

	msg += fmt.Sprintf("\n\n%s", pterm.LightCyan("Context:"))
	if len(e.Held) > 0 {
		msg += fmt.Sprintf("\n  %s {%s}", pterm.Yellow("Held:"), strings.Join(e.Held, ", "))
	} else {
		msg += fmt.Sprintf("\n  %s (none)", pterm.Yellow("Held:"))
	}
	if len(e.Missing) > 0 {
		msg += fmt.Sprintf("\n  %s {%s}", pterm.Yellow("Missing:"), strings.Join(e.Missing, ", "))
	}

	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf("\n\n%s", pterm.Green("Suggestions:"))
		for _, suggestion := range e.Suggestions {
			msg += fmt.Sprintf("\n  • %s", suggestion)
		}
	}
	return msg
}
