package permission

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	code, ok := c.Code("SYSTEM.USER.VIEW")
	require.True(t, ok)
	assert.Equal(t, "SYSTEM.USER.VIEW", code)

	code, ok = c.Code("ADMIN")
	require.True(t, ok)
	assert.Equal(t, Admin, code)

	code, ok = c.Code("BASIC")
	require.True(t, ok)
	assert.Equal(t, Basic, code)

	assert.True(t, c.Contains("MANAGE_ORDER.ORDER.VIEW"))
	assert.False(t, c.Contains("MANAGE_ORDER.REVIEW.CREATE"))
}

func TestLookupMissingSegment(t *testing.T) {
	c := DefaultCatalog()

	assert.True(t, c.Lookup("SYSTEM.NOPE").IsEmpty())
	assert.True(t, c.Lookup("SYSTEM.USER.VIEW.DEEPER").IsEmpty())
	assert.True(t, c.Lookup("").Child("SYSTEM").Child("USER").Child("VIEW").IsLeaf())

	var nilCatalog *Catalog
	assert.True(t, nilCatalog.Lookup("SYSTEM").IsEmpty())
	assert.False(t, nilCatalog.Contains(Admin))
}

func TestNewCatalogRejectsDuplicateCodes(t *testing.T) {
	_, err := NewCatalog(map[string]any{
		"A": map[string]any{"VIEW": "dup"},
		"B": map[string]any{"VIEW": "dup"},
	})
	require.ErrorIs(t, err, ErrDuplicateCode)
}

func TestNewCatalogRejectsInvalidNodes(t *testing.T) {
	_, err := NewCatalog(map[string]any{"A": ""})
	require.ErrorIs(t, err, ErrInvalidNode)

	_, err = NewCatalog(map[string]any{"A": 42})
	require.ErrorIs(t, err, ErrInvalidNode)

	_, err = NewCatalog(map[string]any{"A.B": "x"})
	require.ErrorIs(t, err, ErrInvalidNode)
}

func TestNewCatalogAcceptsStringMaps(t *testing.T) {
	c, err := NewCatalog(map[string]any{
		"SYSTEM": map[string]any{
			"USER": map[string]string{"VIEW": "sys.user.view", "CREATE": "sys.user.create"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	p, ok := c.PathOf("sys.user.create")
	require.True(t, ok)
	assert.Equal(t, "SYSTEM.USER.CREATE", p)
}

func TestCodesExcludesSentinels(t *testing.T) {
	c := DefaultCatalog()

	codes := c.Codes(Admin, Basic)
	assert.NotContains(t, codes, Admin)
	assert.NotContains(t, codes, Basic)
	assert.Contains(t, codes, Dashboard)
	assert.Len(t, codes, c.Len()-2)
	assert.IsIncreasing(t, codes)
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := "ADMIN: ADMIN.GRANTED\nSHOP:\n  ITEM:\n    VIEW: shop.item.view\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	code, ok := c.Code("SHOP.ITEM.VIEW")
	require.True(t, ok)
	assert.Equal(t, "shop.item.view", code)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
