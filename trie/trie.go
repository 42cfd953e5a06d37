// Package trie implements the fixed-arity routing trie that gives
// capability lookup its constant cost.
//
// Every registered capability routes through exactly DigitCount nibbles of
// its 64-bit digest, most-significant first, so a lookup is 16 child-slot
// hops regardless of how many capabilities are registered. Capabilities
// whose digests fully collide share a leaf and are told apart by the
// 512-bit fallback digest and, ultimately, the raw canonical key.
//
// Entries are never deleted: registration is permanent for the registry's
// lifetime, and once the build phase ends the trie is read-only, so
// concurrent lookups need no locking.
package trie

import (
	"fmt"
	"io"
	"sort"

	"github.com/tolaworks/caps/errors"
	"github.com/tolaworks/caps/identity"
)

// node is a branch in the 16-ary trie. Leaf entries appear only at full
// digest depth; interior slots are nil until first use.
type node struct {
	children [identity.Arity]*node
	leaf     []*identity.Capability
}

// Trie routes capability identities by digest nibbles.
type Trie struct {
	root  *node
	count int
}

// New returns an empty trie.
func New() *Trie {
	return &Trie{root: &node{}}
}

// Len returns the number of registered capabilities, counting collision
// leaf-mates individually.
func (t *Trie) Len() int {
	return t.count
}

// Insert registers a capability, walking the routing path and creating
// branch nodes as needed. A true duplicate (equal fallback digest and
// equal canonical key) is a build-time error; distinct identities with
// colliding digests coexist at the same leaf.
func (t *Trie) Insert(c *identity.Capability) error {
	n := t.root
	for depth := 0; depth < identity.DigitCount; depth++ {
		slot := c.Nibble(depth)
		if n.children[slot] == nil {
			n.children[slot] = &node{}
		}
		n = n.children[slot]
	}
	for _, existing := range n.leaf {
		if existing.Fallback == c.Fallback && existing.Key == c.Key {
			return errors.NewDuplicateCapability("capability %s already registered", existing)
		}
	}
	n.leaf = append(n.leaf, c)
	t.count++
	return nil
}

// Lookup walks the routing path for the candidate and checks the leaf's
// stored identities. Cost is O(DigitCount), independent of registry size.
func (t *Trie) Lookup(c *identity.Capability) bool {
	n := t.root
	for depth := 0; depth < identity.DigitCount; depth++ {
		n = n.children[c.Nibble(depth)]
		if n == nil {
			return false
		}
	}
	for _, existing := range n.leaf {
		if existing.SameIdentity(c) {
			return true
		}
	}
	return false
}

// Walk visits every occupied leaf in digest order, passing the hex
// routing path and the capabilities stored there.
func (t *Trie) Walk(fn func(path string, caps []*identity.Capability)) {
	var leaves []*node
	var paths []uint64
	collect(t.root, 0, 0, &leaves, &paths)

	order := make([]int, len(leaves))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return paths[order[a]] < paths[order[b]] })

	for _, i := range order {
		fn(fmt.Sprintf("%016x", paths[i]), leaves[i].leaf)
	}
}

func collect(n *node, depth int, prefix uint64, leaves *[]*node, paths *[]uint64) {
	if depth == identity.DigitCount {
		if len(n.leaf) > 0 {
			*leaves = append(*leaves, n)
			*paths = append(*paths, prefix)
		}
		return
	}
	for slot, child := range n.children {
		if child != nil {
			collect(child, depth+1, prefix<<4|uint64(slot), leaves, paths)
		}
	}
}

// Inspect dumps the occupied routing paths to w, one leaf per line, with
// collision leaves flagged. Intended for the capctl inspect command and
// for debugging digest distribution.
func (t *Trie) Inspect(w io.Writer) {
	t.Walk(func(path string, caps []*identity.Capability) {
		if len(caps) == 1 {
			fmt.Fprintf(w, "%s  %s\n", path, caps[0])
			return
		}
		fmt.Fprintf(w, "%s  [collision x%d]\n", path, len(caps))
		for _, c := range caps {
			fmt.Fprintf(w, "%18s%s\n", "", c)
		}
	})
}
