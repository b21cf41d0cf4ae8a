package objectmap

import (
	"log/slog"

	"github.com/dextermilo/objectmap/objectmapstore"
)

// Option configures an [ObjectMap] at construction time, following the
// functional-options pattern (a single-surface simplification of the
// two-context GlobalOption/PathOption split a routing tree needs: an
// ObjectMap has just one configuration surface, so a plain function
// suffices).
type Option[R comparable] func(*ObjectMap[R])

// WithResolver supplies the node-traversal collaborator used by ObjectFor
// to turn a resolved path back into a live node. Without one, ObjectFor
// always reports a miss.
func WithResolver[R comparable](resolver Resolver) Option[R] {
	return func(m *ObjectMap[R]) {
		m.resolver = resolver
	}
}

// WithLogger attaches a [slog.Handler] that receives debug-level structured
// events for add/remove/connect/disconnect. Passing nil disables logging,
// which is also the default.
func WithLogger[R comparable](handler slog.Handler) Option[R] {
	return func(m *ObjectMap[R]) {
		if handler == nil {
			m.logger = nil
			return
		}
		m.logger = slog.New(handler)
	}
}

// WithStore attaches the persistence collaborator that every structural
// mutation is committed to atomically. Without one, the
// map still tracks Dirty() but never persists on its own.
func WithStore[R comparable](store objectmapstore.Snapshotter) Option[R] {
	return func(m *ObjectMap[R]) {
		m.store = store
	}
}
