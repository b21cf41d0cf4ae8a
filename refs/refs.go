// Package refs supplies ergonomic, struct-field-like accessors over a
// single ObjectMap reference, and a Multireference helper for many,
// mirroring a descriptor-property style of reference and multireference
// access — kept out of the core
// engine because they are glue a content-repository embedder wants, not
// behavior the object map itself needs to know about.
package refs

import (
	"context"

	"github.com/dextermilo/objectmap"
)

// SourceIDRef is a single-valued reference read through the "source" side:
// it names the one oid, if any, connected to owner as a source of reftype.
// A node exposes this as a field-like accessor for relationships where at
// most one source is ever expected (e.g. "the folder containing this
// alias").
type SourceIDRef[R comparable] struct {
	m       *objectmap.ObjectMap[R]
	owner   objectmap.OID
	reftype R
}

// NewSourceIDRef builds a SourceIDRef bound to owner's reftype sources.
func NewSourceIDRef[R comparable](m *objectmap.ObjectMap[R], owner objectmap.OID, reftype R) SourceIDRef[R] {
	return SourceIDRef[R]{m: m, owner: owner, reftype: reftype}
}

// Get returns the first (lowest) connected source oid, if any is connected.
func (r SourceIDRef[R]) Get() (objectmap.OID, bool) {
	ids, err := r.m.SourceIDs(r.owner, r.reftype)
	if err != nil || len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}

// Set replaces any existing source with oid.
func (r SourceIDRef[R]) Set(oid objectmap.OID) error {
	if err := r.Clear(); err != nil {
		return err
	}
	return r.m.Connect(oid, r.owner, r.reftype)
}

// Clear disconnects every current source.
func (r SourceIDRef[R]) Clear() error {
	ids, err := r.m.SourceIDs(r.owner, r.reftype)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := r.m.Disconnect(id, r.owner, r.reftype); err != nil {
			return err
		}
	}
	return nil
}

// TargetIDRef is the symmetric single-valued reference read through the
// "target" side.
type TargetIDRef[R comparable] struct {
	m       *objectmap.ObjectMap[R]
	owner   objectmap.OID
	reftype R
}

// NewTargetIDRef builds a TargetIDRef bound to owner's reftype targets.
func NewTargetIDRef[R comparable](m *objectmap.ObjectMap[R], owner objectmap.OID, reftype R) TargetIDRef[R] {
	return TargetIDRef[R]{m: m, owner: owner, reftype: reftype}
}

// Get returns the first (lowest) connected target oid, if any is connected.
func (r TargetIDRef[R]) Get() (objectmap.OID, bool) {
	ids, err := r.m.TargetIDs(r.owner, r.reftype)
	if err != nil || len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}

// Set replaces any existing target with oid.
func (r TargetIDRef[R]) Set(oid objectmap.OID) error {
	if err := r.Clear(); err != nil {
		return err
	}
	return r.m.Connect(r.owner, oid, r.reftype)
}

// Clear disconnects every current target.
func (r TargetIDRef[R]) Clear() error {
	ids, err := r.m.TargetIDs(r.owner, r.reftype)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := r.m.Disconnect(r.owner, id, r.reftype); err != nil {
			return err
		}
	}
	return nil
}

// SourceRef resolves a SourceIDRef to a live node on demand, rather than a
// bare oid.
type SourceRef[R comparable] struct {
	id  SourceIDRef[R]
	m   *objectmap.ObjectMap[R]
}

// NewSourceRef builds a SourceRef bound to owner's reftype sources.
func NewSourceRef[R comparable](m *objectmap.ObjectMap[R], owner objectmap.OID, reftype R) SourceRef[R] {
	return SourceRef[R]{id: NewSourceIDRef(m, owner, reftype), m: m}
}

// Get resolves the single source to a live node, if one is connected and
// still resolvable.
func (r SourceRef[R]) Get(ctx context.Context) (objectmap.ObjectNode, bool) {
	oid, ok := r.id.Get()
	if !ok {
		return nil, false
	}
	return r.m.ObjectFor(ctx, objectmap.OIDHandle(oid))
}

// TargetRef resolves a TargetIDRef to a live node on demand.
type TargetRef[R comparable] struct {
	id SourceIDRefLike[R]
	m  *objectmap.ObjectMap[R]
}

// SourceIDRefLike is the common Get shape TargetRef embeds; it exists so
// TargetRef can share its Get() plumbing with TargetIDRef without exposing
// SourceIDRef's Set/Clear semantics.
type SourceIDRefLike[R comparable] interface {
	Get() (objectmap.OID, bool)
}

// NewTargetRef builds a TargetRef bound to owner's reftype targets.
func NewTargetRef[R comparable](m *objectmap.ObjectMap[R], owner objectmap.OID, reftype R) TargetRef[R] {
	return TargetRef[R]{id: NewTargetIDRef(m, owner, reftype), m: m}
}

// Get resolves the single target to a live node, if one is connected and
// still resolvable.
func (r TargetRef[R]) Get(ctx context.Context) (objectmap.ObjectNode, bool) {
	oid, ok := r.id.Get()
	if !ok {
		return nil, false
	}
	return r.m.ObjectFor(ctx, objectmap.OIDHandle(oid))
}

// Multireference is a many-valued reference, snapshotting every oid
// connected to owner (as source or target, per which constructor is used)
// of reftype, mirroring the original's Multireference sequence: iterable,
// length-able, and able to add/remove members without the caller managing
// Connect/Disconnect oid order by hand.
type Multireference[R comparable] struct {
	m       *objectmap.ObjectMap[R]
	owner   objectmap.OID
	reftype R
	asSource bool // true: owner is the source, members are targets.
}

// NewSourceMultireference builds a Multireference over every target
// connected to owner as a source of reftype.
func NewSourceMultireference[R comparable](m *objectmap.ObjectMap[R], owner objectmap.OID, reftype R) Multireference[R] {
	return Multireference[R]{m: m, owner: owner, reftype: reftype, asSource: true}
}

// NewTargetMultireference builds a Multireference over every source
// connected to owner as a target of reftype.
func NewTargetMultireference[R comparable](m *objectmap.ObjectMap[R], owner objectmap.OID, reftype R) Multireference[R] {
	return Multireference[R]{m: m, owner: owner, reftype: reftype, asSource: false}
}

// IDs returns a snapshot copy of the member oids.
func (mr Multireference[R]) IDs() []objectmap.OID {
	var ids []objectmap.OID
	var err error
	if mr.asSource {
		ids, err = mr.m.TargetIDs(mr.owner, mr.reftype)
	} else {
		ids, err = mr.m.SourceIDs(mr.owner, mr.reftype)
	}
	if err != nil {
		return nil
	}
	return ids
}

// Nodes resolves every member oid to a live node on demand, skipping any
// that no longer resolve.
func (mr Multireference[R]) Nodes(ctx context.Context) (func(func(objectmap.ObjectNode) bool), error) {
	if mr.asSource {
		return mr.m.Targets(ctx, mr.owner, mr.reftype)
	}
	return mr.m.Sources(ctx, mr.owner, mr.reftype)
}

// Add connects a new member.
func (mr Multireference[R]) Add(oid objectmap.OID) error {
	if mr.asSource {
		return mr.m.Connect(mr.owner, oid, mr.reftype)
	}
	return mr.m.Connect(oid, mr.owner, mr.reftype)
}

// Remove disconnects a member.
func (mr Multireference[R]) Remove(oid objectmap.OID) error {
	if mr.asSource {
		return mr.m.Disconnect(mr.owner, oid, mr.reftype)
	}
	return mr.m.Disconnect(oid, mr.owner, mr.reftype)
}

// Clear disconnects every current member.
func (mr Multireference[R]) Clear() error {
	for _, oid := range mr.IDs() {
		if err := mr.Remove(oid); err != nil {
			return err
		}
	}
	return nil
}

// Holder is implemented by a tree's root node when it carries an
// ObjectMap an embedder wants to recover from any descendant node, the Go
// equivalent of the original's acquisition-based find_objectmap lookup.
// Since ObjectMap is parameterized over its reference-type key, Holder
// returns the map as `any`; callers that know R use Locate, which performs
// the type assertion once.
type Holder interface {
	objectmap.ObjectNode
	ObjectMap() any
}

// Locate walks node's lineage, node itself first, to the root looking for a
// [Holder] that carries a map, and type asserts its map to
// *objectmap.ObjectMap[R]. A Holder whose map is nil is passed over. It
// reports (nil, false) if no ancestor carries a map, or if the first map
// found is not keyed by R.
func Locate[R comparable](node objectmap.ObjectNode) (*objectmap.ObjectMap[R], bool) {
	cur := node
	for cur != nil {
		if holder, ok := cur.(Holder); ok {
			switch om := holder.ObjectMap().(type) {
			case nil:
			case *objectmap.ObjectMap[R]:
				if om != nil {
					return om, true
				}
			default:
				return nil, false
			}
		}
		parent, ok := cur.Parent()
		if !ok {
			break
		}
		cur = parent
	}
	return nil, false
}
