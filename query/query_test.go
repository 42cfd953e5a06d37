package query

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolaworks/caps/capset"
	"github.com/tolaworks/caps/errors"
	"github.com/tolaworks/caps/identity"
)

func declared(name string) *identity.Capability {
	return identity.New(name, identity.Site{Module: "lib", File: "caps.go", Line: 1, Column: 1})
}

func TestAtomEvaluation(t *testing.T) {
	clone := declared("Clone")
	debug := declared("Debug")
	s := capset.New(clone)

	assert.True(t, Evaluate(Atom(clone), s).Satisfied)
	assert.False(t, Evaluate(Atom(debug), s).Satisfied)
}

func TestAndMatchesConjunction(t *testing.T) {
	a, b := declared("A"), declared("B")
	sets := []capset.Set{
		capset.New(),
		capset.New(a),
		capset.New(b),
		capset.New(a, b),
	}
	for _, s := range sets {
		want := Evaluate(Atom(a), s).Satisfied && Evaluate(Atom(b), s).Satisfied
		assert.Equal(t, want, Evaluate(And(Atom(a), Atom(b)), s).Satisfied, "set %s", s)
	}
}

func TestDoubleNegation(t *testing.T) {
	a := declared("A")
	for _, s := range []capset.Set{capset.New(), capset.New(a)} {
		assert.Equal(t,
			Evaluate(Atom(a), s).Satisfied,
			Evaluate(Not(Not(Atom(a))), s).Satisfied)
	}
}

// randomExpr builds an arbitrary expression tree over the atom pool.
func randomExpr(rng *rand.Rand, pool []*identity.Capability, depth int) Expr {
	if depth == 0 || rng.Intn(3) == 0 {
		return Atom(pool[rng.Intn(len(pool))])
	}
	switch rng.Intn(4) {
	case 0:
		return And(randomExpr(rng, pool, depth-1), randomExpr(rng, pool, depth-1))
	case 1:
		return Or(randomExpr(rng, pool, depth-1), randomExpr(rng, pool, depth-1))
	case 2:
		return Not(randomExpr(rng, pool, depth-1))
	default:
		return Group(randomExpr(rng, pool, depth-1))
	}
}

func randomSet(rng *rand.Rand, pool []*identity.Capability) capset.Set {
	var members []*identity.Capability
	for _, c := range pool {
		if rng.Intn(2) == 0 {
			members = append(members, c)
		}
	}
	return capset.New(members...)
}

func TestDeMorganLawsOnGeneratedTrees(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pool := []*identity.Capability{
		declared("A"), declared("B"), declared("C"),
		declared("D"), declared("E"), declared("F"),
	}

	for i := 0; i < 500; i++ {
		l := randomExpr(rng, pool, 3)
		r := randomExpr(rng, pool, 3)
		s := randomSet(rng, pool)

		// !(L & R) == !L | !R
		assert.Equal(t,
			Evaluate(Not(And(l, r)), s).Satisfied,
			Evaluate(Or(Not(l), Not(r)), s).Satisfied,
			"De Morgan over And, iteration %d", i)

		// !(L | R) == !L & !R
		assert.Equal(t,
			Evaluate(Not(Or(l, r)), s).Satisfied,
			Evaluate(And(Not(l), Not(r)), s).Satisfied,
			"De Morgan over Or, iteration %d", i)

		// Group is transparent.
		assert.Equal(t,
			Evaluate(l, s).Satisfied,
			Evaluate(Group(l), s).Satisfied)
	}
}

// probe counts evaluations so short-circuiting is observable.
type probe struct {
	result bool
	hits   *int
}

func (p probe) eval(capset.Set) bool       { *p.hits++; return p.result }
func (p probe) render(sb *strings.Builder) { sb.WriteString("probe") }
func (p probe) atoms() int                 { return 1 }

func TestAndShortCircuits(t *testing.T) {
	var leftHits, rightHits int
	left := probe{result: false, hits: &leftHits}
	right := probe{result: true, hits: &rightHits}

	Evaluate(And(left, right), capset.New())
	assert.Equal(t, 1, leftHits)
	assert.Equal(t, 0, rightHits, "right operand must be skipped when left fails")
}

func TestOrShortCircuits(t *testing.T) {
	var leftHits, rightHits int
	left := probe{result: true, hits: &leftHits}
	right := probe{result: false, hits: &rightHits}

	Evaluate(Or(left, right), capset.New())
	assert.Equal(t, 1, leftHits)
	assert.Equal(t, 0, rightHits, "right operand must be skipped when left succeeds")
}

func TestRendering(t *testing.T) {
	a, b, c := declared("Parsed"), declared("Validated"), declared("Signed")

	assert.Equal(t, "(Parsed & Validated)", Render(And(Atom(a), Atom(b))))
	assert.Equal(t, "(Parsed | Validated)", Render(Or(Atom(a), Atom(b))))
	assert.Equal(t, "!Parsed", Render(Not(Atom(a))))
	assert.Equal(t, "(Parsed)", Render(Group(Atom(a))))
	assert.Equal(t, "((Parsed & Validated) | !Signed)",
		Render(Or(And(Atom(a), Atom(b)), Not(Atom(c)))))
}

func TestCountAtoms(t *testing.T) {
	a, b := declared("A"), declared("B")
	assert.Equal(t, 0, CountAtoms(nil))
	assert.Equal(t, 1, CountAtoms(Atom(a)))
	assert.Equal(t, 2, CountAtoms(And(Atom(a), Atom(b))))
	assert.Equal(t, 3, CountAtoms(Or(And(Atom(a), Atom(b)), Not(Atom(a)))))
}

func TestBuildResolvesNames(t *testing.T) {
	a, b := declared("Parsed"), declared("Validated")
	registry := map[string]*identity.Capability{"Parsed": a, "Validated": b}
	resolve := func(name string) (*identity.Capability, bool) {
		c, ok := registry[name]
		return c, ok
	}

	e, err := Build(AndNode{Left: NameNode{Name: "Parsed"}, Right: NameNode{Name: "Validated"}}, resolve)
	require.NoError(t, err)
	assert.Equal(t, "(Parsed & Validated)", Render(e))

	_, err = Build(NameNode{Name: "Missing"}, resolve)
	require.Error(t, err)
	assert.True(t, errors.IsUnknownCapability(err))

	// A deep reference failure propagates out of nested nodes.
	_, err = Build(NotNode{Inner: OrNode{Left: NameNode{Name: "Parsed"}, Right: NameNode{Name: "Missing"}}}, resolve)
	require.Error(t, err)
	assert.True(t, errors.IsUnknownCapability(err))
}

func TestScenarioParsedValidated(t *testing.T) {
	parsed := declared("Parsed")
	validated := declared("Validated")
	requirement := And(Atom(parsed), Atom(validated))

	res := Evaluate(requirement, capset.New(parsed))
	assert.False(t, res.Satisfied)
	assert.Equal(t, "(Parsed & Validated)", res.Trace)

	res = Evaluate(requirement, capset.New(parsed, validated))
	assert.True(t, res.Satisfied)
}

func TestRequirementErrorFormatting(t *testing.T) {
	parsed := declared("Parsed")
	validated := declared("Validated")
	e := And(Atom(parsed), Atom(validated))

	reqErr := NewRequirementError(e, capset.New(parsed))
	assert.Equal(t, "(Parsed & Validated)", reqErr.Trace)
	assert.Equal(t, []string{"Validated"}, reqErr.Missing)

	plain := reqErr.FormatError(ErrorContextPlain)
	assert.Contains(t, plain, "(Parsed & Validated)")
	assert.Contains(t, plain, "Parsed")
	assert.NotContains(t, plain, "\x1b[", "plain output must carry no ANSI codes")
}
