// Package objectmap implements a persistent, in-process index that assigns
// durable integer identifiers (oids) to hierarchical nodes addressed by path
// tuples, supports sub-tree lookups at arbitrary depth, and maintains a
// secondary index of typed, directed references between oids.
//
// It is the data-structure engine of a content repository: every
// addressable node is registered exactly once, its sub-tree membership and
// parentage are queryable in logarithmic time, and caller-defined
// relationships survive renames and are cleaned up when either endpoint is
// removed.
//
// The zero value of [ObjectMap] is not usable; construct one with [New] or
// reconstruct one from a store with [Load].
package objectmap

import (
	"context"
	"log/slog"
	"maps"
	"sync"

	"github.com/dextermilo/objectmap/objectmapstore"
)

// ObjectMap is the top-level engine: oid allocation, the path↔oid
// bijection, the path-index, subtree add/remove, depth-limited lookup,
// navigation enumeration, and a composed [ReferenceMap] for typed
// relations.
//
// R is the reference-type key used to tag relations created through
// Connect/Disconnect; it is typically a string or a small tagged enum value
// distinguishing, say, "parent" edges from "likes" edges.
type ObjectMap[R comparable] struct {
	mu sync.RWMutex

	idToPath map[OID]Path
	pathToID map[string]OID
	trie     *pathTrie

	references *ReferenceMap[R]

	root     ObjectNode
	resolver Resolver
	alloc    idAllocator

	logger *slog.Logger
	store  objectmapstore.Snapshotter
	dirty  bool
}

// New constructs an empty ObjectMap rooted at root.
func New[R comparable](root ObjectNode, opts ...Option[R]) *ObjectMap[R] {
	m := &ObjectMap[R]{
		idToPath:   make(map[OID]Path),
		pathToID:   make(map[string]OID),
		trie:       newPathTrie(),
		references: newReferenceMap[R](),
		root:       root,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Root returns the node the map was constructed against.
func (m *ObjectMap[R]) Root() ObjectNode {
	return m.root
}

// Dirty reports whether any mutation has occurred since the last successful
// commit to a configured store.
func (m *ObjectMap[R]) Dirty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirty
}

// Add registers node at path_tuple, allocating a fresh oid unless the node
// already carries one and replace_oid is false.
//
// It fails with a [DuplicatePathError] if path_tuple is already registered,
// or a [DuplicateOidError] if the node's existing oid is already registered
// and replaceOID is false.
func (m *ObjectMap[R]) Add(node ObjectNode, path Path, replaceOID bool) (OID, error) {
	if !path.Valid() {
		return 0, newBadArgumentError("path_tuple must be a non-empty tuple")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := path.Key()
	if existing, exists := m.pathToID[key]; exists {
		return 0, &DuplicatePathError{Path: path.Clone(), Existing: existing}
	}

	var oid OID
	current := node.OID()
	switch {
	case current == 0 || replaceOID:
		oid = m.newObjectID()
		node.SetOID(oid)
	default:
		if _, exists := m.idToPath[current]; exists {
			return 0, &DuplicateOidError{OID: current}
		}
		oid = current
	}

	stored := path.Clone()
	m.idToPath[oid] = stored
	m.pathToID[key] = oid

	pathlen := len(stored)
	for i := 0; i < pathlen; i++ {
		prefix := stored[:i+1]
		depth := pathlen - len(prefix)
		entry := m.trie.getOrCreate(prefix)
		m.trie.addOID(entry, depth, oid)
	}

	m.markDirty()
	m.log("add", oidAttr(oid), pathAttr(stored))
	return oid, nil
}

func (m *ObjectMap[R]) newObjectID() OID {
	return m.alloc.next(func(o OID) bool {
		_, exists := m.idToPath[o]
		return exists
	})
}

// Remove evicts target (and, if target addresses an interior node, its
// entire subtree) from the map, returning the set of oids that were
// removed. If references is false, any typed references
// touching the removed oids survive the call — the pattern a caller uses
// when a remove is really the first half of a move.
//
// Remove is a no-op (nil, nil) when target does not resolve to a path, or
// when no registered path has the resolved path as a prefix. A path that is
// not itself registered but has registered descendants removes those
// descendants.
func (m *ObjectMap[R]) Remove(target Handle, references bool) ([]OID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path, err := m.resolveHandlePath(target)
	if err != nil {
		return nil, err
	}
	if path == nil {
		return nil, nil
	}

	pathlen := len(path)

	root, ok := m.trie.get(path)
	if !ok {
		// No registered path has this path as a prefix.
		return nil, nil
	}

	removed := newOidSet()
	var toDelete []Path

	idx := m.trie.lowerBound(path)
	for i := idx; i < len(m.trie.entries); i++ {
		entry := m.trie.entries[i]
		if !entry.path.HasPrefix(path) {
			break
		}
		for _, bucket := range entry.depths {
			for _, oid := range bucket.values() {
				removed.insert(oid)
				if p, ok := m.idToPath[oid]; ok {
					delete(m.idToPath, oid)
					delete(m.pathToID, p.Key())
				}
			}
		}
		toDelete = append(toDelete, entry.path)
	}

	// Snapshot the depth-map that was at pathindex[P] before deleting any
	// entries.
	items := cloneDepths(root.depths)

	for _, p := range toDelete {
		m.trie.delete(p)
	}

	for offset := 1; offset <= pathlen-1; offset++ {
		ancestorPath := path[:pathlen-offset]
		ancestor, ok := m.trie.get(ancestorPath)
		if !ok {
			// Every ancestor of a registered path was itself registered
			// when path was added, and ancestors sort strictly before path
			// so the subtree sweep above never deletes them.
			continue
		}
		for depth, bucket := range items {
			d2 := depth + offset
			target, ok := ancestor.depths[d2]
			if !ok {
				continue
			}
			for _, oid := range bucket.values() {
				target.remove(oid)
			}
			if target.len() == 0 {
				delete(ancestor.depths, d2)
			}
		}
		if len(ancestor.depths) == 0 {
			m.trie.delete(ancestorPath)
		}
	}

	result := removed.values()

	if references {
		m.references.remove(result)
	}

	m.markDirty()
	m.log("remove", pathAttr(path), slog.Int(LogRemovedKey, len(result)))
	return result, nil
}

// resolveHandlePath normalizes a Handle used by Remove/PathLookup/Navgen to
// a path tuple. A nil, nil result means "nothing to do" (an unresolvable
// Handle that is not itself a structural error, e.g. an oid that was never
// registered).
func (m *ObjectMap[R]) resolveHandlePath(h Handle) (Path, error) {
	switch h.kind {
	case handleNode:
		p := PathOf(h.node)
		if !p.Valid() {
			return nil, newBadArgumentError("node did not resolve to a path")
		}
		return p, nil
	case handleOID:
		p, ok := m.idToPath[h.oid]
		if !ok {
			return nil, nil
		}
		return p, nil
	case handlePath:
		if !h.path.Valid() {
			return nil, newBadArgumentError("path_tuple must be a non-empty tuple")
		}
		return h.path, nil
	default:
		return nil, newBadArgumentError("unknown handle kind")
	}
}

// ObjectIDFor returns the oid registered at h's path, or (0, false) if none
// is. h must be a [NodeHandle] or
// [PathHandle]; an [OIDHandle] always reports a miss.
func (m *ObjectMap[R]) ObjectIDFor(h Handle) (OID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var path Path
	switch h.kind {
	case handleNode:
		path = PathOf(h.node)
	case handlePath:
		path = h.path
	default:
		return 0, false
	}
	if !path.Valid() {
		return 0, false
	}
	oid, ok := m.pathToID[path.Key()]
	return oid, ok
}

// PathFor returns the path tuple registered to oid, or (nil, false) if oid
// is not currently registered.
func (m *ObjectMap[R]) PathFor(oid OID) (Path, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.idToPath[oid]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// ObjectFor resolves h (an [OIDHandle] or [PathHandle]) to a live node via
// the configured [Resolver], absorbing traversal failures into a plain miss
//"). Without a configured
// resolver, ObjectFor always reports a miss.
func (m *ObjectMap[R]) ObjectFor(ctx context.Context, h Handle) (ObjectNode, bool) {
	m.mu.RLock()
	var path Path
	switch h.kind {
	case handleOID:
		path, _ = m.idToPath[h.oid]
	case handlePath:
		path = h.path
	default:
		m.mu.RUnlock()
		return nil, false
	}
	resolver := m.resolver
	root := m.root
	m.mu.RUnlock()

	if !path.Valid() || resolver == nil {
		return nil, false
	}

	node, err := resolver.Resolve(ctx, root, path)
	if err != nil {
		return nil, false
	}
	return node, true
}

// PathLookup returns the oids whose path has origin as a tuple-prefix, with
// relative depth in [includeOrigin ? 0 : 1, *depth] (or unbounded if depth
// is nil). An origin with no registered entry
// yields an empty result.
func (m *ObjectMap[R]) PathLookup(h Handle, depth *int, includeOrigin bool) ([]OID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path, err := m.resolveHandlePath(h)
	if err != nil {
		return nil, err
	}
	if path == nil {
		return nil, nil
	}

	entry, ok := m.trie.get(path)
	if !ok {
		return nil, nil
	}

	result := newOidSet()
	if depth == nil {
		for d, bucket := range entry.depths {
			if d == 0 && !includeOrigin {
				continue
			}
			for _, oid := range bucket.values() {
				result.insert(oid)
			}
		}
	} else {
		for d := 0; d <= *depth; d++ {
			if d == 0 && !includeOrigin {
				continue
			}
			bucket, ok := entry.depths[d]
			if !ok {
				continue
			}
			for _, oid := range bucket.values() {
				result.insert(oid)
			}
		}
	}

	return result.values(), nil
}

// Connect creates a reference of type reftype from source to target.
// Both endpoints must already be registered, or
// an [UnregisteredOidError] is returned.
func (m *ObjectMap[R]) Connect(source, target OID, reftype R) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.idToPath[source]; !ok {
		return &UnregisteredOidError{OID: source}
	}
	if _, ok := m.idToPath[target]; !ok {
		return &UnregisteredOidError{OID: target}
	}

	m.references.connect(source, target, reftype)
	m.markDirty()
	m.log("connect", oidAttr(source), slog.Int64("target", int64(target)))
	return nil
}

// Disconnect removes a reference of type reftype from source to target, if
// any.
func (m *ObjectMap[R]) Disconnect(source, target OID, reftype R) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.idToPath[source]; !ok {
		return &UnregisteredOidError{OID: source}
	}
	if _, ok := m.idToPath[target]; !ok {
		return &UnregisteredOidError{OID: target}
	}

	m.references.disconnect(source, target, reftype)
	m.markDirty()
	m.log("disconnect", oidAttr(source), slog.Int64("target", int64(target)))
	return nil
}

// SourceIDs returns a snapshot copy of the oids connected to oid as a
// source of reftype. The caller may iterate and
// mutate via Disconnect without disturbing iteration.
func (m *ObjectMap[R]) SourceIDs(oid OID, reftype R) ([]OID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.idToPath[oid]; !ok {
		return nil, &UnregisteredOidError{OID: oid}
	}
	return m.references.sourceIDs(oid, reftype), nil
}

// TargetIDs returns a snapshot copy of the oids connected to oid as a
// target of reftype.
func (m *ObjectMap[R]) TargetIDs(oid OID, reftype R) ([]OID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.idToPath[oid]; !ok {
		return nil, &UnregisteredOidError{OID: oid}
	}
	return m.references.targetIDs(oid, reftype), nil
}

// Sources resolves SourceIDs(oid, reftype) to live nodes on demand, skipping
// any oid that no longer resolves.
func (m *ObjectMap[R]) Sources(ctx context.Context, oid OID, reftype R) (func(func(ObjectNode) bool), error) {
	ids, err := m.SourceIDs(oid, reftype)
	if err != nil {
		return nil, err
	}
	return m.resolveEach(ctx, ids), nil
}

// Targets resolves TargetIDs(oid, reftype) to live nodes on demand.
func (m *ObjectMap[R]) Targets(ctx context.Context, oid OID, reftype R) (func(func(ObjectNode) bool), error) {
	ids, err := m.TargetIDs(oid, reftype)
	if err != nil {
		return nil, err
	}
	return m.resolveEach(ctx, ids), nil
}

// resolveEach returns a restartable, lazy sequence over ids, resolving each
// to a node through ObjectFor. It is a plain range-over-func iterator rather than a channel
// or custom type, since ids is already an independent snapshot and no
// cancellation beyond the caller's own early-return is needed.
func (m *ObjectMap[R]) resolveEach(ctx context.Context, ids []OID) func(func(ObjectNode) bool) {
	return func(yield func(ObjectNode) bool) {
		for _, id := range ids {
			node, ok := m.ObjectFor(ctx, OIDHandle(id))
			if !ok {
				continue
			}
			if !yield(node) {
				return
			}
		}
	}
}

func (m *ObjectMap[R]) markDirty() {
	m.dirty = true
	if m.store == nil {
		return
	}
	if err := m.commit(); err != nil {
		m.log("commit failed", slog.Any("error", err))
	}
}

// snapshotState returns shallow copies of the map's fields for persistence
// or diagnostics: the two maps and the slice of path-index entries are
// copied, but the entries themselves, their depth buckets and the Path
// values are shared with the live map.
func (m *ObjectMap[R]) snapshotState() (idToPath map[OID]Path, pathToID map[string]OID, entries []*pathTrieEntry) {
	return maps.Clone(m.idToPath), maps.Clone(m.pathToID), append([]*pathTrieEntry(nil), m.trie.entries...)
}
