// Package console holds the UI-independent state of the admin console:
// the permission-filtered sidebar with its open and active tracking, and
// the debounced search input.
package console

import (
	"sync"

	"go.uber.org/zap"

	"retail-admin/menu"
	"retail-admin/permission"
)

// Navigator is the router collaborator. The sidebar only requests
// navigation; it does not own routing.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Sidebar is the vertical navigation of the console.
type Sidebar struct {
	mu sync.Mutex

	catalog  *permission.Catalog
	source   []menu.Node
	held     permission.HeldSet
	visible  []menu.Node
	open     menu.OpenState
	active   string
	expanded bool

	nav    Navigator
	logger *zap.Logger
}

// NewSidebar builds an expanded sidebar for an anonymous user. The tree is
// copied; IDs are assigned where missing.
func NewSidebar(catalog *permission.Catalog, tree []menu.Node, nav Navigator, logger *zap.Logger) *Sidebar {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sidebar{
		catalog:  catalog,
		source:   menu.AssignIDs(tree),
		open:     menu.OpenState{},
		expanded: true,
		nav:      nav,
		logger:   logger,
	}
	s.visible = menu.Filter(s.source, s.held.MenuGrants())
	return s
}

// SetPermissions replaces the held codes wholesale, as on login, logout or
// a role change, and recomputes the visible menu.
// The whole replacement happens under the lock so concurrent changes apply
// in call order.
func (s *Sidebar) SetPermissions(codes []string) {
	s.mu.Lock()
	s.held = permission.NewHeldSet(codes)
	s.visible = menu.Filter(s.source, s.held.MenuGrants())
	held, roots := s.held.Len(), len(s.visible)
	s.mu.Unlock()

	s.logger.Debug("sidebar permissions replaced",
		zap.Int("held", held),
		zap.Int("visible_roots", roots))
}

// SetActivePath records a navigation event coming from the router. When
// the path belongs to a visible branch, that branch becomes the only open
// one.
func (s *Sidebar) SetActivePath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setActiveLocked(path)
}

func (s *Sidebar) setActiveLocked(path string) {
	if open, ok := menu.Track(s.visible, path); ok {
		s.open = open
	}
	s.active = path
}

// Navigate selects path and asks the router to go there.
func (s *Sidebar) Navigate(path string) {
	s.mu.Lock()
	s.setActiveLocked(path)
	nav := s.nav
	s.mu.Unlock()

	if nav != nil && path != "" {
		nav.Navigate(path)
	}
}

// Toggle flips a branch and closes every other one. It is ignored while
// the sidebar is collapsed.
func (s *Sidebar) Toggle(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.expanded {
		return
	}
	s.open = menu.OpenState{key: !s.open[key]}
}

// Click handles a press on a row: branches toggle, entries with a path
// navigate. A node may do both.
func (s *Sidebar) Click(key string) bool {
	s.mu.Lock()
	n, ok := menu.Find(s.visible, key)
	s.mu.Unlock()
	if !ok {
		return false
	}
	if n.HasChildren() {
		s.Toggle(key)
	}
	if n.Path != "" {
		s.Navigate(n.Path)
	}
	return true
}

// SetExpanded opens or collapses the sidebar. Collapsing forgets every
// expanded branch.
func (s *Sidebar) SetExpanded(expanded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expanded = expanded
	if !expanded {
		s.open = menu.OpenState{}
	}
}

// Items returns the render rows of the visible menu.
func (s *Sidebar) Items() []menu.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return menu.Walk(s.visible, s.active, s.open)
}

// Visible returns a copy of the filtered tree.
func (s *Sidebar) Visible() []menu.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return menu.Clone(s.visible)
}

// OpenItems returns a copy of the open state.
func (s *Sidebar) OpenItems() menu.OpenState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(menu.OpenState, len(s.open))
	for k, v := range s.open {
		out[k] = v
	}
	return out
}

// ActivePath returns the last recorded path.
func (s *Sidebar) ActivePath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Permission resolves action-level gates for a capability path against the
// current holder.
func (s *Sidebar) Permission(capabilityPath string, actions ...permission.Action) permission.ResolvedActionSet {
	s.mu.Lock()
	held := s.held
	s.mu.Unlock()
	return permission.Resolve(s.catalog, capabilityPath, actions, held)
}

// CanView is the page guard for a page declaring its required codes.
func (s *Sidebar) CanView(required ...string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held.HasAny(required...)
}

// CanDeleteSelection reports whether a bulk delete may be offered for the
// selected users, given each user's role codes. Admin accounts are never
// bulk deleted.
func CanDeleteSelection(selectedRoleCodes [][]string) bool {
	for _, codes := range selectedRoleCodes {
		if permission.NewHeldSet(codes).IsAdmin() {
			return false
		}
	}
	return true
}
