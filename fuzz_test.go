package objectmap

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomPath generates a short, non-empty path tuple rooted at "".
func randomPath(f *fuzz.Fuzzer, maxSegments int) Path {
	var n uint
	f.Fuzz(&n)
	segments := int(n%uint(maxSegments)) + 1

	p := make(Path, 0, segments+1)
	p = append(p, "")
	for i := 0; i < segments; i++ {
		var s string
		f.Fuzz(&s)
		if s == "" {
			s = "seg"
		}
		p = append(p, s)
	}
	return p
}

// TestFuzzAddRemoveRoundTripPreservesInvariants is a property-based check:
// after a randomized sequence of add/remove operations,
// the forward/reverse maps stay inverses, every registered oid appears at
// every ancestor depth bucket it should, no inner set is empty, and oid 0
// never appears.
func TestFuzzAddRemoveRoundTripPreservesInvariants(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(1, 1)
	m := New[string](newRoot())

	var liveOids []OID
	for i := 0; i < 200; i++ {
		if len(liveOids) > 0 {
			var pick uint
			f.Fuzz(&pick)
			if pick%3 == 0 {
				target := liveOids[pick%uint(len(liveOids))]
				_, err := m.Remove(OIDHandle(target), true)
				require.NoError(t, err)
				continue
			}
		}

		path := randomPath(f, 4)
		oid, err := m.Add(&fakeNode{}, path, false)
		if err != nil {
			// A colliding path tuple on this round; not a property failure.
			continue
		}
		liveOids = append(liveOids, oid)
	}

	assertInvariants(t, m)
}

func assertInvariants(t *testing.T, m *ObjectMap[string]) {
	t.Helper()

	// id->path and path->id are inverses.
	for oid, path := range m.idToPath {
		assert.NotZero(t, oid, "oid 0 must never be stored")
		id, ok := m.pathToID[path.Key()]
		require.True(t, ok)
		assert.Equal(t, oid, id)
	}
	for key, oid := range m.pathToID {
		path, ok := m.idToPath[oid]
		require.True(t, ok)
		assert.Equal(t, key, path.Key())
	}

	// Every ancestor bucket is consistent with id->path, and no
	// inner set is empty.
	for _, entry := range m.trie.entries {
		assert.NotEmpty(t, entry.depths, "an ancestor entry with no depths must be pruned")
		for depth, bucket := range entry.depths {
			assert.NotZero(t, bucket.len(), "inner sets are never empty")
			for _, oid := range bucket.values() {
				path, ok := m.idToPath[oid]
				require.True(t, ok, "every indexed oid must still be registered")
				require.True(t, path.HasPrefix(entry.path))
				assert.Equal(t, depth, len(path)-len(entry.path))
			}
		}
	}
}

// TestFuzzReferenceSetBidirectionalInvariant is a property-based check that
// in every ReferenceSet, t in src2tgt[s] iff s in tgt2src[t].
func TestFuzzReferenceSetBidirectionalInvariant(t *testing.T) {
	f := fuzz.New().NilChance(0)
	rs := newReferenceSet()

	var all []OID
	for i := 0; i < 100; i++ {
		var s, tg int8
		f.Fuzz(&s)
		f.Fuzz(&tg)
		source, target := OID(s)+1000, OID(tg)+1000
		all = append(all, source, target)

		var op int
		f.Fuzz(&op)
		switch op % 3 {
		case 0:
			rs.connect(source, target)
		case 1:
			rs.disconnect(source, target)
		case 2:
			rs.remove([]OID{source})
		}
	}

	for s, targets := range rs.src2tgt {
		for _, tg := range targets.values() {
			sources, ok := rs.tgt2src[tg]
			require.True(t, ok)
			assert.True(t, sources.contains(s))
		}
	}
	for tg, sources := range rs.tgt2src {
		for _, s := range sources.values() {
			targets, ok := rs.src2tgt[s]
			require.True(t, ok)
			assert.True(t, targets.contains(tg))
		}
	}
}

// TestFuzzAddRemoveIsExactInverseForReferenceFreeNodes is a property-based
// check that add(o, P) followed by remove(P) leaves id->path, path->id and
// pathindex exactly as they were beforehand.
func TestFuzzAddRemoveIsExactInverseForReferenceFreeNodes(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(1, 1)
	m := New[string](newRoot())

	for i := 0; i < 50; i++ {
		before := m.snapshotLocked()

		path := randomPath(f, 3)
		oid, err := m.Add(&fakeNode{}, path, false)
		if err != nil {
			continue
		}

		_, err = m.Remove(OIDHandle(oid), true)
		require.NoError(t, err)

		after := m.snapshotLocked()
		assert.Equal(t, before.IDToPath, after.IDToPath)
		assert.ElementsMatch(t, before.Entries, after.Entries)
	}
}
