// Package caps is the capability identity and routing engine.
//
// The engine verifies, for a tagged entity, whether it holds a required
// combination of named capabilities, and selects among competing behavior
// implementations based on which capabilities the entity holds. There is
// no central registry of capability definitions: declarations register
// themselves, and hash-determined trie placement keeps registration order
// unobservable.
//
// Life of a capability:
//
//	engine := caps.NewEngine()
//	parsed, _ := engine.RegisterCapability("Parsed", site)       // build phase
//	validated, _ := engine.RegisterCapability("Validated", site)
//	engine.Freeze()                                              // end of build phase
//
//	entity := capset.New(parsed)
//	req, _ := engine.BuildQuery(query.AndNode{
//	    Left:  query.NameNode{Name: "Parsed"},
//	    Right: query.NameNode{Name: "Validated"},
//	})
//	res := engine.CheckRequirement(entity, req) // unsatisfied, trace "(Parsed & Validated)"
//
// Everything after Freeze is pure, in-memory, side-effect-free
// computation: checks and resolutions may run on arbitrarily many
// goroutines without coordination.
package caps

import (
	"io"
	"sync"

	"github.com/tolaworks/caps/capset"
	"github.com/tolaworks/caps/dispatch"
	"github.com/tolaworks/caps/errors"
	"github.com/tolaworks/caps/identity"
	"github.com/tolaworks/caps/logger"
	"github.com/tolaworks/caps/query"
	"github.com/tolaworks/caps/trie"
)

// Engine owns the capability registry for one program. Registration
// happens in a single build phase; Freeze marks the happens-before
// boundary after which the registry is read-only and safe for
// uncoordinated concurrent queries.
type Engine struct {
	mu     sync.Mutex
	trie   *trie.Trie
	byName map[string]*identity.Capability
	frozen bool
}

// NewEngine returns an empty engine in its build phase.
func NewEngine() *Engine {
	return &Engine{
		trie:   trie.New(),
		byName: map[string]*identity.Capability{},
	}
}

// RegisterCapability declares a capability at a site. Build-phase only.
// Registering the same (name, site) twice is a fatal build error;
// distinct declarations whose digests collide coexist in the registry.
func (e *Engine) RegisterCapability(name string, site identity.Site) (*identity.Capability, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.frozen {
		return nil, errors.Wrapf(errors.ErrRegistryFrozen, "registering %q", name)
	}

	if _, exists := e.byName[name]; exists {
		// Same name at a different site would still be a distinct identity
		// in the trie, but queries resolve by name, so shadowing would make
		// requirements ambiguous. Reject before touching the trie.
		return nil, errors.NewDuplicateCapability("capability name %q already declared", name)
	}

	c := identity.New(name, site)
	if err := e.trie.Insert(c); err != nil {
		return nil, err
	}
	e.byName[name] = c

	logger.Logger.Debugw("capability registered",
		"name", name,
		"site", site.String(),
		"digest", c.Digest,
	)
	return c, nil
}

// Freeze ends the build phase. Idempotent.
func (e *Engine) Freeze() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frozen = true
}

// Lookup resolves a declared capability by name.
func (e *Engine) Lookup(name string) (*identity.Capability, bool) {
	c, ok := e.byName[name]
	return c, ok
}

// Registered reports whether the capability identity is in the registry,
// via the trie's constant-cost routing walk.
func (e *Engine) Registered(c *identity.Capability) bool {
	return e.trie.Lookup(c)
}

// Len returns the number of registered capabilities.
func (e *Engine) Len() int {
	return e.trie.Len()
}

// BuildQuery translates a parsed boolean expression of capability names
// into an evaluable requirement. Referencing an unregistered capability
// is a build-time error.
func (e *Engine) BuildQuery(ast query.Node) (query.Expr, error) {
	return query.Build(ast, e.Lookup)
}

// CheckRequirement evaluates a requirement against an entity's capability
// set. The single entry point used to guard an operation: on failure the
// caller surfaces Trace verbatim as the diagnostic.
func (e *Engine) CheckRequirement(s capset.Set, req query.Expr) query.Result {
	res := query.Evaluate(req, s)
	logger.Logger.Debugw("requirement checked",
		"trace", res.Trace,
		"set", s.String(),
		"satisfied", res.Satisfied,
	)
	return res
}

// Declaration is one specialization variant as handed over by the front
// end: the guard still in name-based AST form, the tier by name.
type Declaration struct {
	Name       string
	Guard      query.Node // nil means always-true
	Tier       dispatch.Tier
	BoundCount int
	Body       any
}

// BuildSpecializationSet aggregates variant declarations for a contract,
// resolving each guard against the registry.
func (e *Engine) BuildSpecializationSet(contract string, decls []Declaration) (*dispatch.Set, error) {
	variants := make([]dispatch.Variant, 0, len(decls))
	for _, d := range decls {
		var guard query.Expr
		if d.Guard != nil {
			built, err := e.BuildQuery(d.Guard)
			if err != nil {
				return nil, errors.Wrapf(err, "variant %q of contract %q", d.Name, contract)
			}
			guard = built
		}
		variants = append(variants, dispatch.Variant{
			Name:       d.Name,
			Guard:      guard,
			Tier:       d.Tier,
			BoundCount: d.BoundCount,
			Body:       d.Body,
		})
	}
	return dispatch.NewSet(contract, variants...), nil
}

// Resolve selects the winning variant for an entity's capability set.
func (e *Engine) Resolve(s capset.Set, vs *dispatch.Set) (any, error) {
	body, err := dispatch.Resolve(s, vs)
	if err != nil {
		logger.Logger.Debugw("specialization unresolved",
			"contract", vs.Contract(),
			"set", s.String(),
			"error", err.Error(),
		)
		return nil, err
	}
	return body, nil
}

// Inspect dumps the registry's occupied trie paths to w.
func (e *Engine) Inspect(w io.Writer) {
	e.trie.Inspect(w)
}
