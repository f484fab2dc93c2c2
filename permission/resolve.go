package permission

import (
	"fmt"
	"sort"
	"strings"
)

// Action is one of the per-capability operations a UI can gate.
type Action string

const (
	Create Action = "CREATE"
	View   Action = "VIEW"
	Update Action = "UPDATE"
	Delete Action = "DELETE"
)

// AllActions lists every action in display order.
var AllActions = []Action{Create, View, Update, Delete}

// ParseAction accepts an action name in any case.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToUpper(strings.TrimSpace(s)))
	switch a {
	case Create, View, Update, Delete:
		return a, nil
	}
	return "", fmt.Errorf("unknown permission action %q", s)
}

// ParseActions splits a comma separated list. An empty list means all actions.
func ParseActions(s string) ([]Action, error) {
	if strings.TrimSpace(s) == "" {
		return AllActions, nil
	}
	var actions []Action
	for _, part := range strings.Split(s, ",") {
		a, err := ParseAction(part)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// ResolvedActionSet holds the outcome per action. Actions that were not
// requested stay false.
type ResolvedActionSet struct {
	Create bool `json:"CREATE"`
	View   bool `json:"VIEW"`
	Update bool `json:"UPDATE"`
	Delete bool `json:"DELETE"`
}

// Allowed returns the outcome for a single action.
func (r ResolvedActionSet) Allowed(a Action) bool {
	switch a {
	case Create:
		return r.Create
	case View:
		return r.View
	case Update:
		return r.Update
	case Delete:
		return r.Delete
	}
	return false
}

func (r *ResolvedActionSet) set(a Action, v bool) {
	switch a {
	case Create:
		r.Create = v
	case View:
		r.View = v
	case Update:
		r.Update = v
	case Delete:
		r.Delete = v
	}
}

// HeldSet is the immutable set of codes attached to a user's role.
// The zero HeldSet holds nothing.
type HeldSet struct {
	codes map[string]struct{}
}

// NewHeldSet copies codes into a set. Empty codes are ignored.
func NewHeldSet(codes []string) HeldSet {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		if c != "" {
			set[c] = struct{}{}
		}
	}
	return HeldSet{codes: set}
}

// Has reports whether code is held.
func (h HeldSet) Has(code string) bool {
	if code == "" {
		return false
	}
	_, ok := h.codes[code]
	return ok
}

// IsAdmin reports whether the set holds the Admin code.
func (h HeldSet) IsAdmin() bool { return h.Has(Admin) }

// Len returns the number of held codes.
func (h HeldSet) Len() int { return len(h.codes) }

// Codes returns the held codes sorted.
func (h HeldSet) Codes() []string {
	out := make([]string, 0, len(h.codes))
	for c := range h.codes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// HasAny is the page guard: admins and empty requirements pass, anyone
// else needs at least one of the codes.
func (h HeldSet) HasAny(codes ...string) bool {
	if len(codes) == 0 || h.IsAdmin() {
		return true
	}
	for _, c := range codes {
		if h.Has(c) {
			return true
		}
	}
	return false
}

// MenuGrants returns the set used to filter navigation. A Basic holder
// is reduced to BasicGrants.
func (h HeldSet) MenuGrants() HeldSet {
	if h.Has(Basic) && !h.IsAdmin() {
		return NewHeldSet(BasicGrants)
	}
	return h
}

// Resolve computes, for each requested action on capabilityPath, whether
// held grants it. Admin holders get every requested action. Unknown paths
// and unmodelled actions resolve to false.
func Resolve(c *Catalog, capabilityPath string, actions []Action, held HeldSet) ResolvedActionSet {
	var out ResolvedActionSet
	node := c.Lookup(capabilityPath)
	admin := held.IsAdmin()
	for _, a := range actions {
		if admin {
			out.set(a, true)
			continue
		}
		out.set(a, held.Has(node.Child(string(a)).Code()))
	}
	return out
}
