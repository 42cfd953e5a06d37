// Package capset provides the immutable capability collection attached to
// an entity.
//
// Sets are produced only by pure transformation: Add, Remove, Union,
// Intersect, and Difference all return new sets and never mutate their
// receivers. An entity moving between typestates swaps one set for
// another; the old set stays valid for anyone still holding it. Equality
// is set equality, so construction order carries no meaning.
//
// Membership is a direct test against the set's own members rather than a
// registry trie walk: entity sets are small and fully known, so a digest
// bucket probe plus identity comparison is the cheaper path to the same
// answer.
package capset

import (
	"sort"
	"strings"

	"github.com/tolaworks/caps/identity"
)

// Set is an unordered, duplicate-free collection of capability
// identities. The zero value is an empty set ready for use.
//
// Members are bucketed by routing digest so that colliding identities
// coexist the same way they do in the registry trie.
type Set struct {
	members map[uint64][]*identity.Capability
	size    int
}

// New builds a set from the given capabilities. Duplicate identities
// collapse to a single membership.
func New(caps ...*identity.Capability) Set {
	s := Set{members: map[uint64][]*identity.Capability{}}
	for _, c := range caps {
		s.insert(c)
	}
	return s
}

// insert is construction-time only; exported operations never call it on
// a set that has escaped.
func (s *Set) insert(c *identity.Capability) {
	bucket := s.members[c.Digest]
	for _, existing := range bucket {
		if existing.SameIdentity(c) {
			return
		}
	}
	s.members[c.Digest] = append(bucket, c)
	s.size++
}

// Has reports membership of the capability identity.
func (s Set) Has(c *identity.Capability) bool {
	if c == nil {
		return false
	}
	for _, existing := range s.members[c.Digest] {
		if existing.SameIdentity(c) {
			return true
		}
	}
	return false
}

// Len returns the number of member capabilities.
func (s Set) Len() int {
	return s.size
}

// Add returns a new set with the capability included.
func (s Set) Add(c *identity.Capability) Set {
	return New(append(s.Slice(), c)...)
}

// Remove returns a new set with the capability excluded.
func (s Set) Remove(c *identity.Capability) Set {
	out := New()
	for _, member := range s.Slice() {
		if !member.SameIdentity(c) {
			out.insert(member)
		}
	}
	return out
}

// Union returns a new set containing every member of either set.
func (s Set) Union(o Set) Set {
	return New(append(s.Slice(), o.Slice()...)...)
}

// Intersect returns a new set containing members present in both sets.
func (s Set) Intersect(o Set) Set {
	out := New()
	for _, member := range s.Slice() {
		if o.Has(member) {
			out.insert(member)
		}
	}
	return out
}

// Difference returns a new set with o's members removed from s.
func (s Set) Difference(o Set) Set {
	out := New()
	for _, member := range s.Slice() {
		if !o.Has(member) {
			out.insert(member)
		}
	}
	return out
}

// Equal reports set equality, independent of construction order.
func (s Set) Equal(o Set) bool {
	if s.size != o.size {
		return false
	}
	for _, member := range s.Slice() {
		if !o.Has(member) {
			return false
		}
	}
	return true
}

// Slice returns the members ordered by digest, then canonical key. The
// ordering is deterministic so callers can render or compare output
// stably.
func (s Set) Slice() []*identity.Capability {
	out := make([]*identity.Capability, 0, s.size)
	for _, bucket := range s.members {
		out = append(out, bucket...)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Digest != out[b].Digest {
			return out[a].Digest < out[b].Digest
		}
		return out[a].Key < out[b].Key
	})
	return out
}

// Names returns the member capability names in Slice order, for
// diagnostics.
func (s Set) Names() []string {
	members := s.Slice()
	names := make([]string, len(members))
	for i, c := range members {
		names[i] = c.Name
	}
	return names
}

// String renders the set as "{A, B, C}" in deterministic order.
func (s Set) String() string {
	return "{" + strings.Join(s.Names(), ", ") + "}"
}
