// Package dispatch selects one implementation variant among several
// competing candidates, ranked by declared specificity.
//
// A specialization set aggregates the variants declared for one
// behavioral contract. Resolution filters variants by their guard
// expression, then ranks survivors by specificity tier and, within a
// tier, by how many capability atoms the guard binds. The resolver never
// falls back to declaration order: an exact tie is an ambiguity error,
// surfaced at build time rather than silently picking a variant.
package dispatch

import (
	"fmt"
	"strings"

	"github.com/tolaworks/caps/capset"
	"github.com/tolaworks/caps/errors"
	"github.com/tolaworks/caps/query"
)

// Tier is the specificity class of a variant. Lower values are more
// specific and win resolution.
type Tier int

const (
	// TierConcrete matches the entity's exact identity explicitly.
	TierConcrete Tier = iota
	// TierMultiBound guards on several capability bounds.
	TierMultiBound
	// TierSingleBound guards on a single capability bound.
	TierSingleBound
	// TierDefault is the unconditional fallback.
	TierDefault
)

// String renders the tier name used in manifests and diagnostics.
func (t Tier) String() string {
	switch t {
	case TierConcrete:
		return "concrete"
	case TierMultiBound:
		return "multi_bound"
	case TierSingleBound:
		return "single_bound"
	case TierDefault:
		return "default"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// ParseTier maps a manifest tier name to its Tier value.
func ParseTier(name string) (Tier, error) {
	switch strings.ToLower(name) {
	case "concrete":
		return TierConcrete, nil
	case "multi_bound":
		return TierMultiBound, nil
	case "single_bound":
		return TierSingleBound, nil
	case "default":
		return TierDefault, nil
	default:
		return 0, errors.Newf("unknown specificity tier %q", name)
	}
}

// Variant is one candidate implementation of a contract.
type Variant struct {
	// Name identifies the variant in diagnostics and ambiguity reports.
	Name string

	// Guard is the applicability condition; nil means always-true.
	Guard query.Expr

	// Tier is the declared specificity class.
	Tier Tier

	// BoundCount breaks ties within a tier: the guard binding more
	// capabilities wins. Zero means "derive from the guard's atom count".
	BoundCount int

	// Body is the opaque implementation payload returned on selection.
	Body any
}

// Set is the ordered collection of variants declared for one contract.
// Built once at declaration aggregation time, queried at call sites.
type Set struct {
	contract string
	variants []Variant
}

// NewSet aggregates the variants for a contract. A zero BoundCount is
// filled in from the guard's atom count, so a guard requiring two
// capabilities outranks one requiring a single capability without the
// declarer counting by hand.
func NewSet(contract string, variants ...Variant) *Set {
	normalized := make([]Variant, len(variants))
	copy(normalized, variants)
	for i := range normalized {
		if normalized[i].BoundCount == 0 {
			normalized[i].BoundCount = query.CountAtoms(normalized[i].Guard)
		}
	}
	return &Set{contract: contract, variants: normalized}
}

// Contract returns the behavioral contract name the set implements.
func (vs *Set) Contract() string {
	return vs.contract
}

// Variants returns the declared variants in declaration order.
func (vs *Set) Variants() []Variant {
	return vs.variants
}

// Resolve selects the single most specific variant whose guard the
// capability set satisfies.
//
// Ranking: lowest tier first, then largest bound count within the tier.
// Zero passing variants is ErrNoMatch; an exact tie on both criteria is
// ErrAmbiguousMatch naming the tied variants. Both are build-time errors
// whenever the capability set is statically known.
func Resolve(s capset.Set, vs *Set) (any, error) {
	var passing []Variant
	for _, v := range vs.variants {
		if v.Guard == nil || query.Evaluate(v.Guard, s).Satisfied {
			passing = append(passing, v)
		}
	}
	if len(passing) == 0 {
		return nil, errors.Wrapf(errors.ErrNoMatch,
			"contract %q has no variant satisfied by %s", vs.contract, s)
	}

	best := passing[0]
	tied := []Variant{best}
	for _, v := range passing[1:] {
		switch {
		case v.Tier < best.Tier,
			v.Tier == best.Tier && v.BoundCount > best.BoundCount:
			best = v
			tied = []Variant{v}
		case v.Tier == best.Tier && v.BoundCount == best.BoundCount:
			tied = append(tied, v)
		}
	}

	if len(tied) > 1 {
		names := make([]string, len(tied))
		for i, v := range tied {
			names[i] = v.Name
		}
		return nil, errors.Wrapf(errors.ErrAmbiguousMatch,
			"contract %q: variants [%s] tie on tier %s with bound count %d",
			vs.contract, strings.Join(names, ", "), best.Tier, best.BoundCount)
	}
	return best.Body, nil
}
