// Package ambient collects small outside-core helpers an embedder might
// write on top of objectmap: documentation and tests for patterns the core
// engine deliberately leaves to its callers, rather than new library
// surface the core package depends on.
package ambient

import (
	"fmt"

	"github.com/dextermilo/objectmap"
)

// TreeNode is the capability CopySubtree needs beyond objectmap.ObjectNode:
// enough to walk down into a node's own children. The core ObjectNode
// interface only walks up to the root (what Add/Remove/PathOf need); a
// duplicate-subtree operation also has to walk down, which is a concern of
// whatever concrete content tree the embedder has, not of the map itself.
type TreeNode interface {
	objectmap.ObjectNode
	Children() []TreeNode
}

// CopySubtree re-registers node and every descendant of node under
// newParentPath/name with fresh oids, the pattern a paste-a-duplicate
// operation uses: the object-will-be-added subscriber in the original
// walks the subtree being added in postorder and calls
// add(child, path, replace_oid=True) for each node when the addition is the
// result of a duplication rather than a plain move, so a node that already
// carries an oid from its original location gets a new one instead of
// colliding with it.
//
// Children are visited before their parent (true postorder), so a node's
// descendants are registered before the node itself; Add creates any
// missing ancestor path-index entries on its own, so no ancestor needs to be
// registered first. It returns the oids assigned, in the same
// child-before-parent order, or the first error Add returns.
func CopySubtree[R comparable](m *objectmap.ObjectMap[R], node TreeNode, newParentPath objectmap.Path, name string) ([]objectmap.OID, error) {
	basePath := append(newParentPath.Clone(), name)
	return copySubtree(m, node, basePath)
}

func copySubtree[R comparable](m *objectmap.ObjectMap[R], node TreeNode, path objectmap.Path) ([]objectmap.OID, error) {
	var oids []objectmap.OID
	for _, child := range node.Children() {
		childOids, err := copySubtree(m, child, append(path.Clone(), child.Name()))
		if err != nil {
			return oids, err
		}
		oids = append(oids, childOids...)
	}

	oid, err := m.Add(node, path, true)
	if err != nil {
		return oids, fmt.Errorf("ambient: copy subtree at %v: %w", path, err)
	}
	return append(oids, oid), nil
}
