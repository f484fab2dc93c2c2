package menu

import "retail-admin/permission"

// Filter returns the part of tree visible to held. Admin holders get a copy
// of the whole tree. Otherwise a node is kept when it is public or its
// permission is held, and it still has a path or a surviving child.
// Ordering is preserved and the input is never modified.
func Filter(tree []Node, held permission.HeldSet) []Node {
	if held.IsAdmin() {
		return Clone(tree)
	}
	return filter(tree, held)
}

func filter(nodes []Node, held permission.HeldSet) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if !Allowed(n, held) {
			continue
		}
		kept := n
		kept.Children = nil
		if n.HasChildren() {
			if children := filter(n.Children, held); len(children) > 0 {
				kept.Children = children
			}
		}
		if kept.Path == "" && len(kept.Children) == 0 {
			continue
		}
		out = append(out, kept)
	}
	return out
}

// Allowed is the per-node test: public nodes pass, others need their code.
func Allowed(n Node, held permission.HeldSet) bool {
	return n.Permission == "" || held.Has(n.Permission)
}
