package barcode

import (
	"testing"

	itemdomain "github.com/smallbiznis/stocktake/internal/item/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func catalog() []itemdomain.Response {
	return []itemdomain.Response{
		{ID: "1", BrandName: "Ketel One", Barcode: strptr("0835229000838")},
		{ID: "2", BrandName: "Campari", Barcode: strptr("ABC-123")},
		{ID: "3", BrandName: "House Syrup"},
	}
}

func TestResolveExactMatch(t *testing.T) {
	item, ok := Resolve("0835229000838", catalog())
	require.True(t, ok)
	assert.Equal(t, "1", item.ID)
	assert.Equal(t, "Ketel One", item.BrandName)
}

func TestResolveMissIsNotAnError(t *testing.T) {
	item, ok := Resolve("9999999999999", catalog())
	assert.False(t, ok)
	assert.Nil(t, item)
}

func TestResolveIsCaseSensitive(t *testing.T) {
	_, ok := Resolve("abc-123", catalog())
	assert.False(t, ok)

	item, ok := Resolve("ABC-123", catalog())
	require.True(t, ok)
	assert.Equal(t, "2", item.ID)
}

func TestResolveNeverMatchesPartially(t *testing.T) {
	_, ok := Resolve("0835229", catalog())
	assert.False(t, ok)
}

func TestResolveEmptyCodeAndMissingBarcodes(t *testing.T) {
	_, ok := Resolve("", catalog())
	assert.False(t, ok)

	// Items without a barcode are skipped, never matched on "".
	_, ok = Resolve("House Syrup", catalog())
	assert.False(t, ok)
}
