// Package query provides boolean requirement expressions over capability
// atoms and their evaluation against capability sets.
//
// An Expr is a finite, immutable expression tree built once per
// requirement declaration and reused across evaluations. Rendering uses
// the conventional infix operators (&, |, !, parentheses) so a failed
// check can be reported against the user's own requirement text.
package query

import (
	"strings"

	"github.com/tolaworks/caps/capset"
	"github.com/tolaworks/caps/identity"
)

// Expr is a node in a boolean requirement expression tree.
type Expr interface {
	eval(s capset.Set) bool
	render(sb *strings.Builder)
	atoms() int
}

type atom struct {
	cap *identity.Capability
}

type and struct {
	left, right Expr
}

type or struct {
	left, right Expr
}

type not struct {
	inner Expr
}

// group preserves the user's original parenthesization; it is transparent
// to evaluation and exists only for the trace.
type group struct {
	inner Expr
}

// Atom builds a leaf requiring membership of a single capability.
func Atom(c *identity.Capability) Expr { return atom{cap: c} }

// And builds a conjunction of two expressions.
func And(l, r Expr) Expr { return and{left: l, right: r} }

// Or builds a disjunction of two expressions.
func Or(l, r Expr) Expr { return or{left: l, right: r} }

// Not builds a negation.
func Not(inner Expr) Expr { return not{inner: inner} }

// Group wraps an expression in explicit parentheses for rendering.
func Group(inner Expr) Expr { return group{inner: inner} }

func (a atom) eval(s capset.Set) bool { return s.Has(a.cap) }

// And short-circuits: the right side is skipped when the left already
// failed, saving membership tests.
func (n and) eval(s capset.Set) bool { return n.left.eval(s) && n.right.eval(s) }

// Or short-circuits on the first satisfied side.
func (n or) eval(s capset.Set) bool { return n.left.eval(s) || n.right.eval(s) }

func (n not) eval(s capset.Set) bool { return !n.inner.eval(s) }

func (g group) eval(s capset.Set) bool { return g.inner.eval(s) }

func (a atom) render(sb *strings.Builder) { sb.WriteString(a.cap.Name) }

func (n and) render(sb *strings.Builder) {
	sb.WriteByte('(')
	n.left.render(sb)
	sb.WriteString(" & ")
	n.right.render(sb)
	sb.WriteByte(')')
}

func (n or) render(sb *strings.Builder) {
	sb.WriteByte('(')
	n.left.render(sb)
	sb.WriteString(" | ")
	n.right.render(sb)
	sb.WriteByte(')')
}

func (n not) render(sb *strings.Builder) {
	sb.WriteByte('!')
	n.inner.render(sb)
}

func (g group) render(sb *strings.Builder) {
	sb.WriteByte('(')
	g.inner.render(sb)
	sb.WriteByte(')')
}

func (a atom) atoms() int  { return 1 }
func (n and) atoms() int   { return n.left.atoms() + n.right.atoms() }
func (n or) atoms() int    { return n.left.atoms() + n.right.atoms() }
func (n not) atoms() int   { return n.inner.atoms() }
func (g group) atoms() int { return g.inner.atoms() }

// Render returns the infix text of the expression.
func Render(e Expr) string {
	var sb strings.Builder
	e.render(&sb)
	return sb.String()
}

// CountAtoms returns the number of capability atoms in the expression,
// used by dispatch as the within-tier specificity tie-break.
func CountAtoms(e Expr) int {
	if e == nil {
		return 0
	}
	return e.atoms()
}
