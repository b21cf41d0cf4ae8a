package objectmap

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/dextermilo/objectmap/objectmapstore"
)

// snapshot is the gob-encodable shape of everything an ObjectMap needs to
// reconstruct its state. The oid allocator's
// cursor is deliberately excluded: allocation state stays volatile by
// design, so a restart always draws a fresh random starting point
// even when a store is configured.
type snapshot[R comparable] struct {
	IDToPath   map[OID]Path
	Entries    []pathEntrySnapshot
	References map[R]refSetSnapshot
}

type pathEntrySnapshot struct {
	Path   Path
	Depths map[int][]OID
}

type refSetSnapshot struct {
	Src2Tgt map[OID][]OID
	Tgt2Src map[OID][]OID
}

// snapshotLocked builds a snapshot of m's current state. Callers must hold
// at least a read lock.
func (m *ObjectMap[R]) snapshotLocked() snapshot[R] {
	idToPath, _, entries := m.snapshotState()

	entrySnaps := make([]pathEntrySnapshot, len(entries))
	for i, e := range entries {
		depths := make(map[int][]OID, len(e.depths))
		for d, b := range e.depths {
			depths[d] = b.values()
		}
		entrySnaps[i] = pathEntrySnapshot{Path: e.path.Clone(), Depths: depths}
	}

	refs := make(map[R]refSetSnapshot, len(m.references.sets))
	for reftype, set := range m.references.sets {
		src2tgt := make(map[OID][]OID, len(set.src2tgt))
		for oid, s := range set.src2tgt {
			src2tgt[oid] = s.values()
		}
		tgt2src := make(map[OID][]OID, len(set.tgt2src))
		for oid, s := range set.tgt2src {
			tgt2src[oid] = s.values()
		}
		refs[reftype] = refSetSnapshot{Src2Tgt: src2tgt, Tgt2Src: tgt2src}
	}

	return snapshot[R]{IDToPath: idToPath, Entries: entrySnaps, References: refs}
}

// restoreLocked replaces m's in-memory state with snap's. Callers must hold
// the write lock.
func (m *ObjectMap[R]) restoreLocked(snap snapshot[R]) {
	m.idToPath = make(map[OID]Path, len(snap.IDToPath))
	m.pathToID = make(map[string]OID, len(snap.IDToPath))
	for oid, path := range snap.IDToPath {
		m.idToPath[oid] = path
		m.pathToID[path.Key()] = oid
	}

	trie := newPathTrie()
	for _, es := range snap.Entries {
		entry := trie.getOrCreate(es.Path)
		for d, oids := range es.Depths {
			for _, oid := range oids {
				trie.addOID(entry, d, oid)
			}
		}
	}
	m.trie = trie

	refmap := newReferenceMap[R]()
	for reftype, rs := range snap.References {
		// Rebuild both directions from the stored src2tgt edges alone via
		// connect(), rather than trusting Src2Tgt/Tgt2Src to already agree
		// bit-for-bit after a round trip — connect() is what enforces the
		// forward/reverse symmetry invariant.
		set := newReferenceSet()
		for s, targets := range rs.Src2Tgt {
			for _, t := range targets {
				set.connect(s, t)
			}
		}
		refmap.sets[reftype] = set
	}
	m.references = refmap
}

// commit serializes m's current state and saves it through the configured
// store. It is a no-op if no store was configured via [WithStore].
func (m *ObjectMap[R]) commit() error {
	if m.store == nil {
		return nil
	}

	snap := m.snapshotLocked()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&snap); err != nil {
		return fmt.Errorf("objectmap: encode snapshot: %w", err)
	}
	if err := m.store.Save(buf.Bytes()); err != nil {
		return fmt.Errorf("objectmap: save snapshot: %w", err)
	}
	m.dirty = false
	return nil
}

// Flush forces an immediate commit to the configured store, even if no
// mutation has happened since the last one. It returns nil without error if
// no store is configured.
func (m *ObjectMap[R]) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commit()
}

// Load reconstructs an ObjectMap from the most recent snapshot in store,
// rooted at root. It reports (nil, false, nil) if store has never been
// written to.
func Load[R comparable](root ObjectNode, store objectmapstore.Snapshotter, opts ...Option[R]) (*ObjectMap[R], bool, error) {
	data, ok, err := store.Load()
	if err != nil {
		return nil, false, fmt.Errorf("objectmap: load snapshot: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	var snap snapshot[R]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return nil, false, fmt.Errorf("objectmap: decode snapshot: %w", err)
	}

	m := New[R](root, opts...)
	m.restoreLocked(snap)
	m.store = store
	return m, true, nil
}
