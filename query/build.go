package query

import (
	"github.com/tolaworks/caps/errors"
	"github.com/tolaworks/caps/identity"
)

// Node is a parsed, name-based boolean expression as handed over by the
// declaration front end. Build translates it into an Expr by resolving
// each name to a registered capability.
type Node interface {
	isNode()
}

// NameNode references a capability by declared name.
type NameNode struct {
	Name string
}

// AndNode is a conjunction.
type AndNode struct {
	Left, Right Node
}

// OrNode is a disjunction.
type OrNode struct {
	Left, Right Node
}

// NotNode is a negation.
type NotNode struct {
	Inner Node
}

// GroupNode preserves explicit parenthesization from the source text.
type GroupNode struct {
	Inner Node
}

func (NameNode) isNode()  {}
func (AndNode) isNode()   {}
func (OrNode) isNode()    {}
func (NotNode) isNode()   {}
func (GroupNode) isNode() {}

// Resolver maps a capability name to its registered identity.
type Resolver func(name string) (*identity.Capability, bool)

// Build translates a parsed AST into an evaluable expression. Referencing
// an unregistered capability is a build-time error.
func Build(n Node, resolve Resolver) (Expr, error) {
	switch node := n.(type) {
	case NameNode:
		c, ok := resolve(node.Name)
		if !ok {
			return nil, errors.NewUnknownCapability("capability %q is not registered", node.Name)
		}
		return Atom(c), nil
	case AndNode:
		left, err := Build(node.Left, resolve)
		if err != nil {
			return nil, err
		}
		right, err := Build(node.Right, resolve)
		if err != nil {
			return nil, err
		}
		return And(left, right), nil
	case OrNode:
		left, err := Build(node.Left, resolve)
		if err != nil {
			return nil, err
		}
		right, err := Build(node.Right, resolve)
		if err != nil {
			return nil, err
		}
		return Or(left, right), nil
	case NotNode:
		inner, err := Build(node.Inner, resolve)
		if err != nil {
			return nil, err
		}
		return Not(inner), nil
	case GroupNode:
		inner, err := Build(node.Inner, resolve)
		if err != nil {
			return nil, err
		}
		return Group(inner), nil
	default:
		return nil, errors.AssertionFailedf("unhandled query AST node %T", n)
	}
}
