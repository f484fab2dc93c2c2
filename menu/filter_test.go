package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retail-admin/permission"
)

func held(codes ...string) permission.HeldSet {
	return permission.NewHeldSet(codes)
}

func sampleTree() []Node {
	return []Node{
		{Title: "Home", Path: "/"},
		{Title: "A", Permission: "p1", Children: []Node{
			{Title: "B", Path: "/b", Permission: "p2"},
			{Title: "C", Path: "/c"},
		}},
		{Title: "D", Children: []Node{
			{Title: "E", Path: "/e", Permission: "p3"},
		}},
		{Title: "Orphan"},
	}
}

func TestFilterAdminReturnsWholeTree(t *testing.T) {
	tree := sampleTree()
	got := Filter(tree, held(permission.Admin))
	assert.Equal(t, tree, got)

	got[1].Children[0].Title = "changed"
	assert.Equal(t, "B", tree[1].Children[0].Title, "admin copy must not alias input")
}

func TestFilterPrunesEmptyHeaders(t *testing.T) {
	tree := []Node{{Title: "A", Permission: "p1", Children: []Node{
		{Title: "B", Path: "/b", Permission: "p2"},
	}}}
	assert.Empty(t, Filter(tree, held("p1")))
}

func TestFilterKeepsPublicAndHeld(t *testing.T) {
	got := Filter(sampleTree(), held("p1", "p3"))
	require.Len(t, got, 3)

	assert.Equal(t, "Home", got[0].Title)
	assert.Equal(t, "A", got[1].Title)
	require.Len(t, got[1].Children, 1)
	assert.Equal(t, "C", got[1].Children[0].Title)
	assert.Equal(t, "D", got[2].Title)
}

func TestFilterFailingParentDropsSubtree(t *testing.T) {
	got := Filter(sampleTree(), held("p2"))
	titles := make([]string, 0, len(got))
	for _, n := range got {
		titles = append(titles, n.Title)
	}
	assert.Equal(t, []string{"Home"}, titles)
}

func TestFilterLeafPresentIffHeld(t *testing.T) {
	tree := []Node{{Title: "X", Path: "/x", Permission: "X"}}
	assert.Len(t, Filter(tree, held("X")), 1)
	assert.Empty(t, Filter(tree, held("Y")))
	assert.Empty(t, Filter(tree, permission.HeldSet{}))
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	tree := sampleTree()
	before := Clone(tree)
	_ = Filter(tree, held("p1"))
	assert.Equal(t, before, tree)
}

func TestFilterIsIdempotent(t *testing.T) {
	for _, s := range []permission.HeldSet{
		held(), held("p1"), held("p1", "p2"), held("p3"), held(permission.Admin),
	} {
		once := Filter(sampleTree(), s)
		assert.Equal(t, once, Filter(once, s))
	}
}

func TestFilterDefaultTreeForBasicHolder(t *testing.T) {
	got := Filter(DefaultTree(), held(permission.Basic, "SYSTEM.USER.VIEW").MenuGrants())
	require.Len(t, got, 1)
	assert.Equal(t, "/dashboard", got[0].Path)
}

func TestDefaultTreeHasPositionalIDs(t *testing.T) {
	tree := DefaultTree()
	assert.Equal(t, "0", tree[0].ID)
	assert.Equal(t, "1.0", tree[1].Children[0].ID)

	n, ok := Find(tree, "1.1")
	require.True(t, ok)
	assert.Equal(t, "/system/role", n.Path)
}

func TestParseRejectsUntitledNodes(t *testing.T) {
	_, err := Parse([]byte("- path: /x\n"))
	require.ErrorIs(t, err, ErrInvalidTree)
}
