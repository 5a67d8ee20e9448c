package machine

import (
	"github.com/dolthub/maphash"
)

// valueHasher supplies a process-seeded hash for every Value whose identity
// (rather than structural content) determines equality: primitives compare
// by value, Array/Map/Function compare by Go identity, and maphash.Hasher
// covers both cases directly since it hashes the underlying representation
// of whatever concrete type is stored in the interface.
var valueHasher = maphash.NewHasher[Value]()

// HashValue returns a hash of v consistent with equal(a, b): whenever two
// values compare equal under the == comparison opcode, HashValue returns the
// same result for both, including for Tuple, whose Equals disagrees with
// Go's native equality. It backs the hash builtin; Map does not call it,
// since its swiss table hashes and compares keys with Go's native equality.
func HashValue(v Value) uint64 {
	if t, ok := v.(*Tuple); ok {
		// Tuple defines structural equality, so two distinct *Tuple values
		// holding the same elements must hash the same, unlike the
		// pointer-identity hash maphash would otherwise compute for them.
		h := uint64(14695981039346656037) // FNV-1a offset basis
		for _, e := range t.elems {
			h ^= HashValue(e)
			h *= 1099511628211 // FNV-1a prime
		}
		return h
	}
	return valueHasher.Hash(v)
}
