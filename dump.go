package objectmap

import (
	"fmt"

	"github.com/dextermilo/objectmap/debugdump"
)

// DumpState translates m's current internal state into the exported shape
// [debugdump.Sdump]/[debugdump.Fdump] can render, for diagnostics and test
// failure messages.
func (m *ObjectMap[R]) DumpState() debugdump.State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idToPath := make(map[int64][]string, len(m.idToPath))
	for oid, path := range m.idToPath {
		idToPath[int64(oid)] = []string(path)
	}

	entries := make([]debugdump.PathEntry, len(m.trie.entries))
	for i, e := range m.trie.entries {
		depths := make(map[int][]int64, len(e.depths))
		for d, b := range e.depths {
			oids := b.values()
			ints := make([]int64, len(oids))
			for j, o := range oids {
				ints[j] = int64(o)
			}
			depths[d] = ints
		}
		entries[i] = debugdump.PathEntry{Path: []string(e.path), Depths: depths}
	}

	refs := make(map[string]debugdump.ReferenceSetState, len(m.references.sets))
	for reftype, set := range m.references.sets {
		src2tgt := make(map[int64][]int64, len(set.src2tgt))
		for oid, s := range set.src2tgt {
			src2tgt[int64(oid)] = toInt64s(s.values())
		}
		tgt2src := make(map[int64][]int64, len(set.tgt2src))
		for oid, s := range set.tgt2src {
			tgt2src[int64(oid)] = toInt64s(s.values())
		}
		refs[fmt.Sprint(reftype)] = debugdump.ReferenceSetState{Src2Tgt: src2tgt, Tgt2Src: tgt2src}
	}

	return debugdump.State{IDToPath: idToPath, Entries: entries, ReferenceSets: refs}
}

func toInt64s(oids []OID) []int64 {
	out := make([]int64, len(oids))
	for i, o := range oids {
		out[i] = int64(o)
	}
	return out
}
