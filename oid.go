package objectmap

import (
	"math"
	"math/rand/v2"
)

// OID is a durable, persistent integer identifier assigned to a registered
// node. The zero value is reserved and never assigned; it means
// "unresolvable" to callers that receive it back from a lookup.
type OID int64

// idAllocator draws oids from a random starting point in the full signed
// 64-bit range and increments monotonically thereafter. It is intentionally
// not persisted: a restart always picks a fresh random start.
type idAllocator struct {
	cursor    int64
	hasCursor bool
}

// next returns an unused oid, retrying against used until it finds a
// candidate that is neither zero nor already registered.
func (a *idAllocator) next(used func(OID) bool) OID {
	for {
		if !a.hasCursor {
			a.cursor = int64(rand.Uint64())
			a.hasCursor = true
		}

		candidate := a.cursor
		if a.cursor == math.MaxInt64 {
			// Incrementing would overflow; start fresh next time but still
			// consider this candidate.
			a.hasCursor = false
		} else {
			a.cursor++
		}

		if candidate != 0 && !used(OID(candidate)) {
			return OID(candidate)
		}

		a.hasCursor = false
	}
}
