package service

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/invoice-agent-be/repository"
)

func newTestVendorService(t *testing.T) *VendorService {
	t.Helper()
	repo := repository.NewFileVendorRepo(filepath.Join(t.TempDir(), "vendors.json"))
	vendors, err := NewVendorService(repo)
	require.NoError(t, err)
	return vendors
}

func TestNormalize(t *testing.T) {
	vendors := newTestVendorService(t)

	tests := []struct {
		name string
		want string
	}{
		{"ACME Corp.", "acme"},
		{"ACME Corporation", "acme"},
		{"Globex, LLC", "globex"},
		{"ABC Ltd", "abc"},
		{"Initech Inc.", "initech"},
		{"Stark   Industries", "stark industries"},
		{"...", ""},
		{"", ""},
		// Only the trailing suffix is stripped, so the inner "corp" stays.
		{"Tech Corp Inc.", "tech corp"},
		{"Corporate Services", "corporate services"},
		// Non-ASCII letters are kept, only punctuation is stripped.
		{"Café Inc", "café"},
		{"Müller GmbH", "müller gmbh"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, vendors.Normalize(tt.name), "input %q", tt.name)
	}
}

func TestResolveEmptyNameNeverMatches(t *testing.T) {
	vendors := newTestVendorService(t)
	_, err := vendors.ResolveOrCreate("ACME Corp", VendorAttrs{})
	require.NoError(t, err)

	assert.Nil(t, vendors.Resolve(""))
	assert.Nil(t, vendors.Resolve("   "))
	assert.Nil(t, vendors.Resolve("..."))
}

func TestResolveExactBeatsSubstring(t *testing.T) {
	vendors := newTestVendorService(t)
	first, err := vendors.ResolveOrCreate("ACME International Corp", VendorAttrs{})
	require.NoError(t, err)
	second, err := vendors.ResolveOrCreate("ACME", VendorAttrs{})
	require.NoError(t, err)
	// "acme" is a substring of "acme international", so the second resolve
	// reuses the first entity.
	assert.Equal(t, first.VendorID, second.VendorID)

	resolved := vendors.Resolve("ACME International Corp")
	require.NotNil(t, resolved)
	assert.Equal(t, first.VendorID, resolved.VendorID)
}

func TestResolveSubstringMatchesShortNames(t *testing.T) {
	vendors := newTestVendorService(t)
	stark, err := vendors.ResolveOrCreate("Stark Industries", VendorAttrs{})
	require.NoError(t, err)

	// A very short query contained in an existing normalized name matches it.
	resolved := vendors.Resolve("Stark")
	require.NotNil(t, resolved)
	assert.Equal(t, stark.VendorID, resolved.VendorID)
}

func TestResolveOrCreateIsStable(t *testing.T) {
	vendors := newTestVendorService(t)
	address := "1 Main St"

	created, err := vendors.ResolveOrCreate("Globex LLC", VendorAttrs{Address: &address})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.VendorID, "VEN-"))
	assert.Len(t, created.VendorID, 12)
	assert.Equal(t, "Globex LLC", created.Name)
	assert.Equal(t, "globex", created.NormalizedName)
	require.NotNil(t, created.Address)
	assert.Equal(t, address, *created.Address)

	again, err := vendors.ResolveOrCreate("Globex, LLC.", VendorAttrs{})
	require.NoError(t, err)
	assert.Equal(t, created.VendorID, again.VendorID)
	assert.Len(t, vendors.ListVendors(), 1)
}

func TestResolveOrCreateKeepsFirstAttributes(t *testing.T) {
	vendors := newTestVendorService(t)
	first := "1 Main St"
	second := "2 Other Ave"

	created, err := vendors.ResolveOrCreate("Initech Inc", VendorAttrs{Address: &first})
	require.NoError(t, err)
	resolved, err := vendors.ResolveOrCreate("Initech", VendorAttrs{Address: &second})
	require.NoError(t, err)

	assert.Equal(t, created.VendorID, resolved.VendorID)
	require.NotNil(t, resolved.Address)
	assert.Equal(t, first, *resolved.Address)
}

func TestVendorsSurviveReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vendors.json")
	repo := repository.NewFileVendorRepo(path)

	vendors, err := NewVendorService(repo)
	require.NoError(t, err)
	created, err := vendors.ResolveOrCreate("ACME Corp", VendorAttrs{})
	require.NoError(t, err)

	reloaded, err := NewVendorService(repo)
	require.NoError(t, err)
	resolved := reloaded.Resolve("ACME")
	require.NotNil(t, resolved)
	assert.Equal(t, created.VendorID, resolved.VendorID)
}
