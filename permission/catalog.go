package permission

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Well-known codes issued by the backend outside the catalog tree.
const (
	// Admin grants every capability.
	Admin = "ADMIN.GRANTED"
	// Basic reduces the visible menu to BasicGrants.
	Basic = "BASIC.PUBLIC"
	// Dashboard is the only page a Basic holder may open.
	Dashboard = "DASHBOARD"
)

// BasicGrants is the fixed set a Basic holder is granted for navigation.
var BasicGrants = []string{Dashboard}

var (
	ErrDuplicateCode = errors.New("permission: duplicate code")
	ErrInvalidNode   = errors.New("permission: invalid catalog node")
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Node is one entry of the catalog tree: a leaf carrying a permission
// code, or an interior node with named children. The zero Node is the
// empty node returned for unknown paths.
type Node struct {
	code     string
	children map[string]Node
}

// Code returns the leaf code, or "" for interior and empty nodes.
func (n Node) Code() string { return n.code }

// Child returns the named child, or the empty node.
func (n Node) Child(name string) Node { return n.children[name] }

// IsLeaf reports whether the node carries a permission code.
func (n Node) IsLeaf() bool { return n.code != "" }

// IsEmpty reports whether the node is the zero Node.
func (n Node) IsEmpty() bool { return n.code == "" && len(n.children) == 0 }

// Catalog maps dotted capability paths (SYSTEM.USER.VIEW) to permission
// codes. It is immutable after construction and safe for concurrent use.
type Catalog struct {
	root   Node
	byCode map[string]string // code -> dotted path
}

// NewCatalog builds a catalog from a nested map whose leaves are codes.
// Leaf codes must be non-empty and globally unique.
func NewCatalog(tree map[string]any) (*Catalog, error) {
	c := &Catalog{byCode: make(map[string]string)}
	root, err := c.build(tree, "")
	if err != nil {
		return nil, err
	}
	c.root = root
	return c, nil
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parse permission catalog: %w", err)
	}
	return NewCatalog(tree)
}

// LoadCatalog reads a YAML catalog from disk.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read permission catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// DefaultCatalog returns the catalog shipped with the console.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) build(v any, path string) (Node, error) {
	switch t := v.(type) {
	case string:
		if t == "" {
			return Node{}, fmt.Errorf("%w: empty code at %q", ErrInvalidNode, path)
		}
		if prev, ok := c.byCode[t]; ok {
			return Node{}, fmt.Errorf("%w: %q at %q and %q", ErrDuplicateCode, t, prev, path)
		}
		c.byCode[t] = path
		return Node{code: t}, nil
	case map[string]string:
		m := make(map[string]any, len(t))
		for k, code := range t {
			m[k] = code
		}
		return c.build(m, path)
	case map[string]any:
		children := make(map[string]Node, len(t))
		for _, name := range sortedKeys(t) {
			if name == "" || strings.Contains(name, ".") {
				return Node{}, fmt.Errorf("%w: bad segment %q under %q", ErrInvalidNode, name, path)
			}
			child, err := c.build(t[name], join(path, name))
			if err != nil {
				return Node{}, err
			}
			children[name] = child
		}
		return Node{children: children}, nil
	default:
		return Node{}, fmt.Errorf("%w: unsupported %T at %q", ErrInvalidNode, v, path)
	}
}

// Lookup descends the catalog along a dotted path. Missing segments yield
// the empty node; an empty path yields the root.
func (c *Catalog) Lookup(path string) Node {
	if c == nil {
		return Node{}
	}
	node := c.root
	if path == "" {
		return node
	}
	for _, seg := range strings.Split(path, ".") {
		next, ok := node.children[seg]
		if !ok {
			return Node{}
		}
		node = next
	}
	return node
}

// Code returns the leaf code stored at path.
func (c *Catalog) Code(path string) (string, bool) {
	n := c.Lookup(path)
	return n.code, n.IsLeaf()
}

// Contains reports whether code is one of the catalog's leaves.
func (c *Catalog) Contains(code string) bool {
	if c == nil {
		return false
	}
	_, ok := c.byCode[code]
	return ok
}

// PathOf returns the dotted path of a code.
func (c *Catalog) PathOf(code string) (string, bool) {
	if c == nil {
		return "", false
	}
	p, ok := c.byCode[code]
	return p, ok
}

// Codes flattens every leaf code in path order, skipping exclude.
func (c *Catalog) Codes(exclude ...string) []string {
	if c == nil {
		return nil
	}
	skip := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		skip[e] = struct{}{}
	}
	paths := make([]string, 0, len(c.byCode))
	for code, p := range c.byCode {
		if _, ok := skip[code]; ok {
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)

	codes := make([]string, 0, len(paths))
	for _, p := range paths {
		code, _ := c.Code(p)
		codes = append(codes, code)
	}
	return codes
}

// Len returns the number of leaf codes.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byCode)
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
