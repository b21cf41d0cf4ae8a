// Package objectmapstore provides a small persistence façade an ObjectMap
// can commit its state to after every structural mutation.
//
// It deliberately does not attempt to persist the in-memory path-index as a
// native LevelDB ordered structure: LevelDB orders by raw byte comparison of
// keys, which cannot reproduce the path tuple's element-wise, shorter-is-
// less ordering without an escaping scheme (see the root package's
// DESIGN.md entry on `pathTrie`). Instead the whole
// engine state is serialized as one opaque blob and stored under a single
// key, giving atomic whole-snapshot commits without needing the store
// itself to understand path ordering.
package objectmapstore

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
)

// snapshotKey is the single LevelDB key the whole engine snapshot is stored
// under.
var snapshotKey = []byte("objectmap/snapshot")

// Snapshotter is the persistence collaborator an ObjectMap commits to. Load
// returns (data, false, nil) when no snapshot has ever been saved.
type Snapshotter interface {
	Load() ([]byte, bool, error)
	Save(data []byte) error
	Close() error
}

// LevelDB is a [Snapshotter] backed by a local goleveldb database, opened
// directly via `leveldb.OpenFile`.
type LevelDB struct {
	db *leveldb.DB
}

// Open opens (creating if necessary) a LevelDB database at dir.
func Open(dir string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("objectmapstore: open %s: %w", dir, err)
	}
	return &LevelDB{db: db}, nil
}

// Load reads the most recently saved snapshot, if any.
func (s *LevelDB) Load() ([]byte, bool, error) {
	data, err := s.db.Get(snapshotKey, nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("objectmapstore: load: %w", err)
	}
	return data, true, nil
}

// Save atomically replaces the stored snapshot with data.
func (s *LevelDB) Save(data []byte) error {
	if err := s.db.Put(snapshotKey, data, nil); err != nil {
		return fmt.Errorf("objectmapstore: save: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *LevelDB) Close() error {
	return s.db.Close()
}
