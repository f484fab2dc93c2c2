package menu

// OpenState maps a node key to whether its branch is expanded.
type OpenState map[string]bool

// FindActiveAncestor returns the top-level node whose subtree contains a
// node with Path == activePath. Matching is exact.
func FindActiveAncestor(tree []Node, activePath string) (Node, bool) {
	for _, n := range tree {
		if IsAncestorActive(n, activePath) {
			return n, true
		}
	}
	return Node{}, false
}

// FindActiveAncestorTitle is FindActiveAncestor reduced to the title.
func FindActiveAncestorTitle(tree []Node, activePath string) (string, bool) {
	n, ok := FindActiveAncestor(tree, activePath)
	return n.Title, ok
}

// IsAncestorActive reports whether n or any descendant sits at activePath.
// An empty activePath never matches.
func IsAncestorActive(n Node, activePath string) bool {
	if activePath == "" {
		return false
	}
	if n.Path == activePath {
		return true
	}
	for _, c := range n.Children {
		if IsAncestorActive(c, activePath) {
			return true
		}
	}
	return false
}

// IsHighlighted ORs the three triggers that render a node as active:
// exact path, manual expansion, and an active descendant.
func IsHighlighted(n Node, activePath string, open OpenState) bool {
	return (activePath != "" && n.Path == activePath) || open[Key(n)] || IsAncestorActive(n, activePath)
}

// Track computes the open state after navigating to activePath: only the
// branch containing it is open. ok is false when nothing matches, in which
// case callers keep their current state.
func Track(tree []Node, activePath string) (OpenState, bool) {
	n, ok := FindActiveAncestor(tree, activePath)
	if !ok {
		return nil, false
	}
	return OpenState{Key(n): true}, true
}

// Descriptor is one row of a rendered menu.
type Descriptor struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Icon        string `json:"icon,omitempty"`
	Path        string `json:"path,omitempty"`
	Depth       int    `json:"depth"`
	Active      bool   `json:"active"`
	Highlighted bool   `json:"highlighted"`
	Open        bool   `json:"open"`
	HasChildren bool   `json:"hasChildren"`
}

// Walk flattens tree into render rows in pre-order. Children of a closed
// node are omitted.
func Walk(tree []Node, activePath string, open OpenState) []Descriptor {
	var out []Descriptor
	walk(tree, activePath, open, 1, &out)
	return out
}

func walk(nodes []Node, activePath string, open OpenState, depth int, out *[]Descriptor) {
	for _, n := range nodes {
		key := Key(n)
		d := Descriptor{
			Key:         key,
			Title:       n.Title,
			Icon:        n.Icon,
			Path:        n.Path,
			Depth:       depth,
			Active:      activePath != "" && n.Path == activePath,
			Highlighted: IsHighlighted(n, activePath, open),
			Open:        open[key],
			HasChildren: n.HasChildren(),
		}
		*out = append(*out, d)
		if d.HasChildren && d.Open {
			walk(n.Children, activePath, open, depth+1, out)
		}
	}
}

// Find returns the node with the given key anywhere in tree.
func Find(tree []Node, key string) (Node, bool) {
	for _, n := range tree {
		if Key(n) == key {
			return n, true
		}
		if found, ok := Find(n.Children, key); ok {
			return found, true
		}
	}
	return Node{}, false
}
