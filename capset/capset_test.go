package capset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tolaworks/caps/identity"
)

func cap(name string) *identity.Capability {
	return identity.New(name, identity.Site{Module: "lib", File: "caps.go", Line: 1, Column: 1})
}

func TestHasAndLen(t *testing.T) {
	clone, debug, send := cap("Clone"), cap("Debug"), cap("Send")
	s := New(clone, debug)

	assert.True(t, s.Has(clone))
	assert.True(t, s.Has(debug))
	assert.False(t, s.Has(send))
	assert.False(t, s.Has(nil))
	assert.Equal(t, 2, s.Len())
}

func TestNoDuplicates(t *testing.T) {
	clone := cap("Clone")
	same := identity.New("Clone", identity.Site{Module: "lib", File: "caps.go", Line: 1, Column: 1})
	s := New(clone, same, clone)
	assert.Equal(t, 1, s.Len())
}

func TestUnionContainsExactlyBoth(t *testing.T) {
	a, b, c := cap("A"), cap("B"), cap("C")
	left := New(a, b)
	right := New(b, c)

	u := left.Union(right)
	assert.Equal(t, 3, u.Len())
	for _, member := range []*identity.Capability{a, b, c} {
		assert.True(t, u.Has(member))
	}

	// Purity: operands are untouched.
	assert.Equal(t, 2, left.Len())
	assert.Equal(t, 2, right.Len())
}

func TestIntersectMatchesBothMemberships(t *testing.T) {
	caps := make([]*identity.Capability, 6)
	for i := range caps {
		caps[i] = cap(fmt.Sprintf("Cap%d", i))
	}
	a := New(caps[0], caps[1], caps[2], caps[3])
	b := New(caps[2], caps[3], caps[4], caps[5])

	inter := a.Intersect(b)
	for _, c := range caps {
		assert.Equal(t, a.Has(c) && b.Has(c), inter.Has(c), "intersect membership for %s", c.Name)
	}
}

func TestDifferenceExcludesAllOfB(t *testing.T) {
	a, b, c := cap("A"), cap("B"), cap("C")
	diff := New(a, b).Difference(New(b, c))

	assert.True(t, diff.Has(a))
	assert.False(t, diff.Has(b))
	assert.False(t, diff.Has(c))
	assert.Equal(t, 1, diff.Len())
}

func TestAddRemoveArePure(t *testing.T) {
	a, b := cap("A"), cap("B")
	base := New(a)

	grown := base.Add(b)
	assert.True(t, grown.Has(b))
	assert.False(t, base.Has(b), "Add must not mutate the receiver")

	shrunk := grown.Remove(a)
	assert.False(t, shrunk.Has(a))
	assert.True(t, grown.Has(a), "Remove must not mutate the receiver")
}

func TestEqualityIgnoresConstructionOrder(t *testing.T) {
	a, b, c := cap("A"), cap("B"), cap("C")
	assert.True(t, New(a, b, c).Equal(New(c, a, b)))
	assert.False(t, New(a, b).Equal(New(a, c)))
	assert.False(t, New(a).Equal(New(a, b)))
}

func TestCollidingDigestsBothRetained(t *testing.T) {
	x := cap("X")
	y := cap("Y")
	y.Digest = x.Digest // force a routing collision

	s := New(x, y)
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has(x))
	assert.True(t, s.Has(y))
}

func TestSliceDeterministic(t *testing.T) {
	a, b, c := cap("A"), cap("B"), cap("C")
	first := New(a, b, c).Names()
	second := New(c, b, a).Names()
	assert.Equal(t, first, second)
}

func TestStringRendering(t *testing.T) {
	s := New(cap("Parsed"), cap("Validated"))
	rendered := s.String()
	assert.Contains(t, rendered, "Parsed")
	assert.Contains(t, rendered, "Validated")
	assert.Equal(t, "{}", New().String())
}
