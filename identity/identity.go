// Package identity computes stable, collision-resistant addresses for
// capabilities.
//
// A capability's identity is derived from its name and defining site. The
// canonical key built from those is hashed twice: a 64-bit routing digest
// (xxhash) that drives trie placement, and a 512-bit fallback digest
// (BLAKE3) consulted only when routing digests collide. The raw canonical
// key is retained for the final tier of collision resolution, so two
// capabilities are the same identity only when name and site both match.
package identity

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// DigitCount is the number of routing digits in a 64-bit digest:
// 16 nibbles of 4 bits each, consumed most-significant first.
const DigitCount = 16

// Arity is the branching factor of the routing trie, one child per
// possible nibble value.
const Arity = 16

// maxKeyLen is the canonical key length above which the digest input is
// sampled instead of hashing the full key.
const maxKeyLen = 64

// Site is the defining source coordinate of a capability declaration.
type Site struct {
	Module string `json:"module"`
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// String renders the site as "module/file:line:col".
func (s Site) String() string {
	return fmt.Sprintf("%s/%s:%d:%d", s.Module, s.File, s.Line, s.Column)
}

// Capability is a named, globally unique marker. Created once at
// declaration time and immutable thereafter; treat all fields as
// read-only.
type Capability struct {
	Name string
	Site Site

	// Key is the full canonical key, retained for final collision
	// resolution regardless of sampling.
	Key string

	// Digest is the 64-bit routing digest of the (possibly sampled)
	// canonical key.
	Digest uint64

	// Fallback is the 512-bit digest of the full canonical key, used
	// only when routing digests collide.
	Fallback [64]byte
}

// New builds the capability identity for a name declared at a site.
// Identical (name, site) pairs always produce identical identities:
// the derivation is a pure function with no process-specific salt.
func New(name string, site Site) *Capability {
	key := CanonicalKey(name, site)
	return &Capability{
		Name:     name,
		Site:     site,
		Key:      key,
		Digest:   xxhash.Sum64String(SampleKey(key)),
		Fallback: blake3.Sum512([]byte(key)),
	}
}

// CanonicalKey builds the canonical identity string for a capability.
func CanonicalKey(name string, site Site) string {
	return name + "@" + site.String()
}

// SampleKey returns the digest input for a canonical key. Keys up to 64
// bytes hash whole. Longer keys are sampled deterministically: the first
// 32 bytes, 16 from the middle, and the last 16. The small ambiguity this
// trades away is recovered by the fallback digest and raw-key comparison,
// which always see the full key.
func SampleKey(key string) string {
	if len(key) <= maxKeyLen {
		return key
	}
	mid := len(key)/2 - 8
	return key[:32] + key[mid:mid+16] + key[len(key)-16:]
}

// Nibble returns the routing digit at the given depth, 0-based from the
// most significant nibble of the digest.
func (c *Capability) Nibble(depth int) uint8 {
	return uint8(c.Digest>>(4*(DigitCount-1-depth))) & 0xF
}

// SameIdentity reports whether two capabilities are the same declaration.
// The comparison is tiered: routing digest, then fallback digest, then the
// raw canonical key. Only full agreement counts as the same identity.
func (c *Capability) SameIdentity(other *Capability) bool {
	if c == other {
		return true
	}
	if c.Digest != other.Digest {
		return false
	}
	if c.Fallback != other.Fallback {
		return false
	}
	return c.Key == other.Key
}

// String renders the capability as name plus site, for diagnostics.
func (c *Capability) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.Site)
}
