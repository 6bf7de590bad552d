package invoice

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineStoreInsertDefaults(t *testing.T) {
	store := NewLineStore(nil)

	index := store.Insert(ProductLine{})
	require.Equal(t, 0, index)

	lines := store.Snapshot()
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Qty)
	assert.Equal(t, 0.0, lines[0].Discount)
	assert.NotEqual(t, uuid.Nil, lines[0].ID)

	second := store.Insert(ProductLine{ProductName: "USB Cable", HSNCode: "8544", Qty: 3, SalePrice: 50, Discount: 120})
	require.Equal(t, 1, second)
	line := store.Snapshot()[1]
	assert.Equal(t, 100.0, line.Discount)
	assert.Equal(t, 0.0, line.TotalValue)
	assert.NotEqual(t, lines[0].ID, line.ID)
}

func TestLineStoreUpdateFieldRecomputes(t *testing.T) {
	store := NewLineStore(nil)
	store.Insert(ProductLine{})

	require.NoError(t, store.UpdateField(0, FieldQty, "2"))
	require.NoError(t, store.UpdateField(0, FieldSalePrice, 100))
	require.NoError(t, store.UpdateField(0, FieldDiscount, "10"))

	line := store.Snapshot()[0]
	assert.Equal(t, 2, line.Qty)
	assert.Equal(t, 180.0, line.TaxableValue)
	assert.Equal(t, 32.4, line.TaxAmount)
	assert.Equal(t, 212.4, line.TotalValue)

	require.NoError(t, store.UpdateField(0, FieldDiscount, -30))
	line = store.Snapshot()[0]
	assert.Equal(t, 0.0, line.Discount)
	assert.Equal(t, 236.0, line.TotalValue)
}

func TestLineStoreUpdateFieldCoercesNonNumeric(t *testing.T) {
	store := NewLineStore(nil)
	store.Insert(ProductLine{Qty: 2, SalePrice: 10})

	require.NoError(t, store.UpdateField(0, FieldSalePrice, "abc"))
	line := store.Snapshot()[0]
	assert.Equal(t, 0.0, line.SalePrice)
	assert.Equal(t, 0.0, line.TotalValue)

	require.NoError(t, store.UpdateField(0, FieldQty, nil))
	assert.Equal(t, 0, store.Snapshot()[0].Qty)

	require.NoError(t, store.UpdateField(0, FieldQty, "08"))
	assert.Equal(t, 8, store.Snapshot()[0].Qty)
}

func TestLineStoreUpdateFieldErrors(t *testing.T) {
	store := NewLineStore(nil)
	store.Insert(ProductLine{})

	err := store.UpdateField(3, FieldQty, 1)
	require.ErrorIs(t, err, ErrOutOfRange)

	err = store.UpdateField(0, LineField("taxableValue"), 99)
	require.ErrorIs(t, err, ErrUnknownField)
	assert.Equal(t, 0.0, store.Snapshot()[0].TaxableValue)
}

func TestLineStoreRemove(t *testing.T) {
	store := NewLineStore(nil)
	store.Insert(ProductLine{ProductName: "a"})
	store.Insert(ProductLine{ProductName: "b"})
	store.Insert(ProductLine{ProductName: "c"})
	ids := []uuid.UUID{store.Snapshot()[0].ID, store.Snapshot()[2].ID}

	require.NoError(t, store.Remove(1))
	lines := store.Snapshot()
	require.Len(t, lines, 2)
	assert.Equal(t, "c", lines[1].ProductName)
	assert.Equal(t, ids, []uuid.UUID{lines[0].ID, lines[1].ID})

	require.ErrorIs(t, store.Remove(2), ErrOutOfRange)
	require.ErrorIs(t, store.Remove(-1), ErrOutOfRange)

	require.NoError(t, store.Remove(0))
	require.NoError(t, store.Remove(0))
	assert.Equal(t, 0, store.Len())
}

func TestLineStoreSelectCatalogItem(t *testing.T) {
	store := NewLineStore(nil)
	store.Insert(ProductLine{ProductName: "custom", HSNCode: "0000"})

	require.NoError(t, store.SelectCatalogItem(0, "Smart Watch"))
	line := store.Snapshot()[0]
	assert.Equal(t, "Smart Watch", line.ProductName)
	assert.Equal(t, "9102", line.HSNCode)

	require.NoError(t, store.SelectCatalogItem(0, "Hover Board"))
	assert.Equal(t, line, store.Snapshot()[0])

	require.ErrorIs(t, store.SelectCatalogItem(5, "Smart Watch"), ErrOutOfRange)
}

func TestLineStoreSnapshotIsACopy(t *testing.T) {
	store := NewLineStore(nil)
	store.Insert(ProductLine{ProductName: "Power Bank"})

	snap := store.Snapshot()
	snap[0].ProductName = "mutated"
	assert.Equal(t, "Power Bank", store.Snapshot()[0].ProductName)
}

func TestLineStoreReplaceRescans(t *testing.T) {
	store := NewLineStore(nil)
	keep := uuid.New()
	store.Replace([]ProductLine{
		{ID: keep, Qty: 2, SalePrice: 100, Discount: 10, TotalValue: 1},
		{Qty: 1, SalePrice: 10.03, Discount: -1},
	})

	lines := store.Snapshot()
	require.Len(t, lines, 2)
	assert.Equal(t, keep, lines[0].ID)
	assert.Equal(t, 212.4, lines[0].TotalValue)
	assert.NotEqual(t, uuid.Nil, lines[1].ID)
	assert.Equal(t, 0.0, lines[1].Discount)
	assert.Equal(t, 11.84, lines[1].TotalValue)
}

func TestStaticCatalog(t *testing.T) {
	catalog := NewStaticCatalog([]CatalogItem{
		{Name: "A", HSNCode: "1"},
		{Name: "B", HSNCode: "2"},
		{Name: "A", HSNCode: "3"},
	})
	item, ok := catalog.Lookup("A")
	require.True(t, ok)
	assert.Equal(t, "1", item.HSNCode)
	assert.Len(t, catalog.Items(), 2)

	_, ok = catalog.Lookup("a")
	assert.False(t, ok)
	assert.Len(t, DefaultCatalog.Items(), 10)
}
