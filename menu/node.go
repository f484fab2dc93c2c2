// Package menu holds the console navigation tree and the permission-aware
// operations over it: filtering by held codes and tracking which branch
// contains the current path.
package menu

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

var ErrInvalidTree = errors.New("menu: invalid tree")

//go:embed menu.yaml
var defaultTree []byte

// Node is one entry of the navigation tree.
type Node struct {
	ID         string `json:"id,omitempty" yaml:"id,omitempty"`
	Title      string `json:"title" yaml:"title"`
	Icon       string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Path       string `json:"path,omitempty" yaml:"path,omitempty"`
	Permission string `json:"permission,omitempty" yaml:"permission,omitempty"`
	Children   []Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// HasChildren reports whether the node has at least one child.
func (n Node) HasChildren() bool { return len(n.Children) > 0 }

// Key is the identifier used for open state: the ID when set, otherwise
// the title.
func Key(n Node) string {
	if n.ID != "" {
		return n.ID
	}
	return n.Title
}

// Clone deep-copies a tree, preserving nil versus empty child slices.
func Clone(tree []Node) []Node {
	if tree == nil {
		return nil
	}
	out := make([]Node, len(tree))
	for i, n := range tree {
		out[i] = n
		out[i].Children = Clone(n.Children)
	}
	return out
}

// AssignIDs returns a copy of tree in which nodes without an ID receive a
// positional one ("0", "0.1", ...).
func AssignIDs(tree []Node) []Node {
	return assignIDs(tree, "")
}

func assignIDs(tree []Node, prefix string) []Node {
	if tree == nil {
		return nil
	}
	out := make([]Node, len(tree))
	for i, n := range tree {
		out[i] = n
		if out[i].ID == "" {
			out[i].ID = prefix + strconv.Itoa(i)
		}
		out[i].Children = assignIDs(n.Children, out[i].ID+".")
	}
	return out
}

// Parse decodes a YAML tree, validates it and assigns IDs.
func Parse(data []byte) ([]Node, error) {
	var tree []Node
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parse menu: %w", err)
	}
	tree = AssignIDs(tree)
	if err := validate(tree, map[string]struct{}{}); err != nil {
		return nil, err
	}
	return tree, nil
}

// LoadTree reads a YAML tree from disk.
func LoadTree(path string) ([]Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu %s: %w", path, err)
	}
	return Parse(data)
}

// DefaultTree returns the navigation shipped with the console.
func DefaultTree() []Node {
	tree, err := Parse(defaultTree)
	if err != nil {
		panic(err)
	}
	return tree
}

func validate(tree []Node, seen map[string]struct{}) error {
	for _, n := range tree {
		if n.Title == "" {
			return fmt.Errorf("%w: node %q has no title", ErrInvalidTree, n.ID)
		}
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidTree, n.ID)
		}
		seen[n.ID] = struct{}{}
		if err := validate(n.Children, seen); err != nil {
			return err
		}
	}
	return nil
}
