package ambient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dextermilo/objectmap"
)

// fakeNode is a minimal TreeNode: it can walk up to the root like any
// objectmap.ObjectNode, and also down into its own children, which
// CopySubtree needs and the core package has no reason to.
type fakeNode struct {
	oid      objectmap.OID
	name     string
	parent   *fakeNode
	children []*fakeNode
}

func (n *fakeNode) OID() objectmap.OID       { return n.oid }
func (n *fakeNode) SetOID(oid objectmap.OID) { n.oid = oid }
func (n *fakeNode) Name() string             { return n.name }

func (n *fakeNode) Parent() (objectmap.ObjectNode, bool) {
	if n.parent == nil {
		return nil, false
	}
	return n.parent, true
}

func (n *fakeNode) Children() []TreeNode {
	out := make([]TreeNode, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func newRoot() *fakeNode { return &fakeNode{name: ""} }

func addChild(parent *fakeNode, name string) *fakeNode {
	c := &fakeNode{name: name, parent: parent}
	parent.children = append(parent.children, c)
	return c
}

// TestCopySubtreeAssignsFreshOidsUnderNewPath mirrors a paste-a-duplicate
// workflow: a shallow copy of an already-registered subtree carries its
// originals' oids on its own, distinct node instances (as a naive
// field-by-field struct copy would), and CopySubtree must re-register
// every one of them with a fresh oid rather than colliding with the
// already-registered original.
func TestCopySubtreeAssignsFreshOidsUnderNewPath(t *testing.T) {
	m := objectmap.New[string](newRoot())

	folder := addChild(newRoot(), "folder")
	fileA := addChild(folder, "a")
	fileB := addChild(folder, "b")

	originalFolderOid, err := m.Add(folder, objectmap.Path{"", "folder"}, false)
	require.NoError(t, err)
	originalAOid, err := m.Add(fileA, objectmap.Path{"", "folder", "a"}, false)
	require.NoError(t, err)
	originalBOid, err := m.Add(fileB, objectmap.Path{"", "folder", "b"}, false)
	require.NoError(t, err)

	// Separate node instances, each still carrying its original's oid --
	// exactly what Add would reject as a DuplicateOidError without
	// replaceOID, and exactly what CopySubtree forces on for every node in
	// the walk.
	folderDup := &fakeNode{name: "folder", oid: originalFolderOid}
	fileADup := &fakeNode{name: "a", parent: folderDup, oid: originalAOid}
	fileBDup := &fakeNode{name: "b", parent: folderDup, oid: originalBOid}
	folderDup.children = []*fakeNode{fileADup, fileBDup}

	oids, err := CopySubtree[string](m, folderDup, objectmap.Path{""}, "folder-copy")
	require.NoError(t, err)
	require.Len(t, oids, 3)

	for _, oid := range oids {
		assert.NotEqual(t, originalFolderOid, oid)
		assert.NotEqual(t, originalAOid, oid)
		assert.NotEqual(t, originalBOid, oid)
	}

	copyFolderPath, ok := m.PathFor(folderDup.OID())
	require.True(t, ok)
	assert.Equal(t, objectmap.Path{"", "folder-copy"}, copyFolderPath)

	copyAPath, ok := m.PathFor(fileADup.OID())
	require.True(t, ok)
	assert.Equal(t, objectmap.Path{"", "folder-copy", "a"}, copyAPath)

	copyBPath, ok := m.PathFor(fileBDup.OID())
	require.True(t, ok)
	assert.Equal(t, objectmap.Path{"", "folder-copy", "b"}, copyBPath)

	// The originals are untouched; folder-copy is a sibling, not a
	// replacement.
	originalFolderPath, ok := m.PathFor(originalFolderOid)
	require.True(t, ok)
	assert.Equal(t, objectmap.Path{"", "folder"}, originalFolderPath)
}

// TestCopySubtreeVisitsChildrenBeforeParent checks the postorder ordering
// CopySubtree promises: every descendant oid is assigned (and appears in
// the returned slice) before the subtree root's own.
func TestCopySubtreeVisitsChildrenBeforeParent(t *testing.T) {
	m := objectmap.New[string](newRoot())

	folder := addChild(newRoot(), "folder")
	leaf := addChild(folder, "leaf")

	_, err := m.Add(folder, objectmap.Path{"", "folder"}, false)
	require.NoError(t, err)
	_, err = m.Add(leaf, objectmap.Path{"", "folder", "leaf"}, false)
	require.NoError(t, err)

	oids, err := CopySubtree[string](m, folder, objectmap.Path{""}, "folder-copy")
	require.NoError(t, err)
	require.Len(t, oids, 2)

	assert.Equal(t, leaf.OID(), oids[0], "leaf is added before its parent")
	assert.Equal(t, folder.OID(), oids[1])
}

// TestCopySubtreeRejectsDuplicateDestinationPath checks that copying into
// a path that already has an occupant surfaces Add's own error instead of
// silently overwriting it.
func TestCopySubtreeRejectsDuplicateDestinationPath(t *testing.T) {
	m := objectmap.New[string](newRoot())

	folder := addChild(newRoot(), "folder")
	_, err := m.Add(folder, objectmap.Path{"", "folder"}, false)
	require.NoError(t, err)

	other := addChild(newRoot(), "taken")
	_, err = m.Add(other, objectmap.Path{"", "taken"}, false)
	require.NoError(t, err)

	_, err = CopySubtree[string](m, folder, objectmap.Path{""}, "taken")
	require.Error(t, err)

	var dup *objectmap.DuplicatePathError
	assert.ErrorAs(t, err, &dup)
}
