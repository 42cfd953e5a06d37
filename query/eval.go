package query

import (
	"github.com/tolaworks/caps/capset"
)

// Result is the outcome of evaluating a requirement against a capability
// set. Trace always carries the rendered expression so an unsatisfied
// requirement can be surfaced verbatim to the user.
type Result struct {
	Satisfied bool   `json:"satisfied"`
	Trace     string `json:"trace"`
}

// Evaluate checks a requirement expression against a capability set.
// Evaluation is pure: neither the expression nor the set is mutated, and
// the same inputs always produce the same result.
func Evaluate(e Expr, s capset.Set) Result {
	return Result{
		Satisfied: e.eval(s),
		Trace:     Render(e),
	}
}
