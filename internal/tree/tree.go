// Package tree turns flat records with parent references into a forest.
package tree

// Node is one record in a Forest.
type Node[T any] struct {
	Item     T
	Children []*Node[T]
}

// Forest is the result of Build.
type Forest[T any] struct {
	Roots []*Node[T]
	// Orphans declare a parent that is not part of the input (or themselves).
	// They are kept out of Roots and still carry their own children.
	Orphans []*Node[T]
}

// Build links items to their parents in two passes over a node arena.
// Children keep the order of items. An empty parent id marks a root.
func Build[T any](items []T, idOf func(T) string, parentOf func(T) string) Forest[T] {
	nodes := make([]Node[T], len(items))
	index := make(map[string]int, len(items))
	for i, item := range items {
		nodes[i].Item = item
		if _, ok := index[idOf(item)]; !ok {
			index[idOf(item)] = i
		}
	}

	var forest Forest[T]
	for i := range nodes {
		node := &nodes[i]
		parentID := parentOf(node.Item)
		if parentID == "" {
			forest.Roots = append(forest.Roots, node)
			continue
		}
		parent, ok := index[parentID]
		if !ok || parent == i {
			forest.Orphans = append(forest.Orphans, node)
			continue
		}
		nodes[parent].Children = append(nodes[parent].Children, node)
	}
	return forest
}

// Len counts the nodes reachable from Roots.
func (f Forest[T]) Len() int {
	count := 0
	Walk(f.Roots, func(*Node[T], int) {
		count++
	})
	return count
}

// Flatten lists the items reachable from Roots depth-first, parents before children.
func (f Forest[T]) Flatten() []T {
	items := make([]T, 0)
	Walk(f.Roots, func(n *Node[T], _ int) {
		items = append(items, n.Item)
	})
	return items
}

// Walk visits nodes depth-first with their depth, starting at 0.
func Walk[T any](nodes []*Node[T], fn func(n *Node[T], depth int)) {
	walk(nodes, 0, fn)
}

func walk[T any](nodes []*Node[T], depth int, fn func(*Node[T], int)) {
	for _, n := range nodes {
		fn(n, depth)
		walk(n.Children, depth+1, fn)
	}
}
