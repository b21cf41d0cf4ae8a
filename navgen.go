package objectmap

// NavNode is one record of the tree [ObjectMap.Navgen] produces: a child
// path, its own name (its last segment), and the already-expanded
// grandchildren below it.
type NavNode struct {
	Path     Path
	Name     string
	Children []NavNode
}

// Navgen enumerates h's immediate children and recursively expands each
// one's own children up to depth levels deep, in ascending-oid order.
// depth=1 returns immediate children with no
// grandchildren; depth=0 or a negative depth returns an empty tree. An h with no
// registered entry, or none, returns nil.
func (m *ObjectMap[R]) Navgen(h Handle, depth int) ([]NavNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path, err := m.resolveHandlePath(h)
	if err != nil {
		return nil, err
	}
	if path == nil {
		return nil, nil
	}
	return m.navgen(path, depth), nil
}

// NavgenDefault calls Navgen with the depth=1 default the original API
// uses when no explicit depth is supplied.
func (m *ObjectMap[R]) NavgenDefault(h Handle) ([]NavNode, error) {
	return m.Navgen(h, 1)
}

func (m *ObjectMap[R]) navgen(path Path, depth int) []NavNode {
	entry, ok := m.trie.get(path)
	if !ok {
		return nil
	}
	bucket, ok := entry.depths[1]
	if !ok {
		return nil
	}

	newDepth := depth - 1
	if newDepth <= -1 {
		return nil
	}

	var result []NavNode
	for _, oid := range bucket.values() {
		childPath, ok := m.idToPath[oid]
		if !ok {
			continue
		}
		result = append(result, NavNode{
			Path:     childPath.Clone(),
			Name:     childPath.Last(),
			Children: m.navgen(childPath, newDepth),
		})
	}
	return result
}
