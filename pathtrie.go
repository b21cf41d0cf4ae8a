package objectmap

import "sort"

// pathTrieEntry is one row of the path-index: a registered ancestor path and
// the depth buckets of oids living under it.
type pathTrieEntry struct {
	path   Path
	depths map[int]*oidSet
}

// pathTrie is the ancestor→depth→set-of-oid structure backing the
// path-index. It keeps a sorted slice of entries ordered by comparePath alongside a map
// for O(1) exact lookup, so that Remove's "subtree sweep" can range-scan
// keys ≥ P while add/get/delete by exact path stay cheap.
//
// No B-tree or ordered-map library was available to reach for (see
// DESIGN.md); comparePath's tuple semantics (element-wise string comparison,
// shorter-is-less on a common prefix) can't be reproduced by a byte-keyed
// store like goleveldb without an escaping scheme, so the trie is a
// hand-rolled sorted slice plus index map.
type pathTrie struct {
	entries []*pathTrieEntry
	byKey   map[string]*pathTrieEntry
}

func newPathTrie() *pathTrie {
	return &pathTrie{byKey: make(map[string]*pathTrieEntry)}
}

func (t *pathTrie) get(p Path) (*pathTrieEntry, bool) {
	e, ok := t.byKey[p.Key()]
	return e, ok
}

// lowerBound returns the index of the first entry whose path is >= p in
// comparePath order.
func (t *pathTrie) lowerBound(p Path) int {
	return sort.Search(len(t.entries), func(i int) bool {
		return comparePath(t.entries[i].path, p) >= 0
	})
}

// getOrCreate returns the entry for p, creating and inserting it in sorted
// order if absent.
func (t *pathTrie) getOrCreate(p Path) *pathTrieEntry {
	if e, ok := t.byKey[p.Key()]; ok {
		return e
	}
	e := &pathTrieEntry{path: p.Clone(), depths: make(map[int]*oidSet)}
	idx := t.lowerBound(p)
	t.entries = append(t.entries, nil)
	copy(t.entries[idx+1:], t.entries[idx:])
	t.entries[idx] = e
	t.byKey[p.Key()] = e
	return e
}

// delete removes the entry for p entirely, if present.
func (t *pathTrie) delete(p Path) {
	key := p.Key()
	e, ok := t.byKey[key]
	if !ok {
		return
	}
	idx := t.lowerBound(p)
	// lowerBound finds the first entry >= p; since e is present it must sit
	// exactly there.
	if idx < len(t.entries) && t.entries[idx] == e {
		t.entries = append(t.entries[:idx], t.entries[idx+1:]...)
	}
	delete(t.byKey, key)
}

func (t *pathTrie) bucket(e *pathTrieEntry, depth int) (*oidSet, bool) {
	b, ok := e.depths[depth]
	return b, ok
}

// addOID records oid in e's depth bucket, creating the bucket if needed.
func (t *pathTrie) addOID(e *pathTrieEntry, depth int, oid OID) {
	b, ok := e.depths[depth]
	if !ok {
		b = newOidSet()
		e.depths[depth] = b
	}
	b.insert(oid)
}

// cloneDepths returns an independent shallow copy of e's depth map (the
// oidSets themselves are shared; this is enough to let Remove snapshot the
// removed path's own depth-map before deleting its entry).
func cloneDepths(depths map[int]*oidSet) map[int]*oidSet {
	out := make(map[int]*oidSet, len(depths))
	for d, b := range depths {
		out[d] = b
	}
	return out
}
