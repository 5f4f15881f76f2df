package cart

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"MiniShelf/internal/catalog"
)

func product(id string, inStock bool) catalog.EnrichedProduct {
	return catalog.EnrichedProduct{
		Product: catalog.Product{ID: id, Name: "Item " + id, Price: decimal.RequireFromString("9.99")},
		InStock: inStock,
	}
}

func TestAddProduct_RefusesOutOfStock(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	require.ErrorIs(t, AddProduct(ctx, s, product("p2", false)), ErrOutOfStock)

	in, err := s.Contains(ctx, "p2")
	require.NoError(t, err)
	require.False(t, in)
}

func TestToggle(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	p := product("p1", true)

	in, err := Toggle(ctx, s, p)
	require.NoError(t, err)
	require.True(t, in)

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "p1", items[0].ProductID)
	require.Equal(t, "9.99", items[0].Price.String())

	in, err = Toggle(ctx, s, p)
	require.NoError(t, err)
	require.False(t, in)

	ok, err := s.Contains(ctx, "p1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestToggle_OutOfStockStaysOut(t *testing.T) {
	in, err := Toggle(context.Background(), NewMemStore(), product("p5", false))
	require.ErrorIs(t, err, ErrOutOfStock)
	require.False(t, in)
}

func TestMemStore_AddIdempotentAndOrdered(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Add(ctx, Item{ProductID: "b", AddedAt: t0.Add(time.Second)}))
	require.NoError(t, s.Add(ctx, Item{ProductID: "a", AddedAt: t0}))
	require.NoError(t, s.Add(ctx, Item{ProductID: "a", AddedAt: t0.Add(time.Hour)}))

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "a", items[0].ProductID)
	require.True(t, items[0].AddedAt.Equal(t0))
	require.Equal(t, "b", items[1].ProductID)

	require.NoError(t, s.Remove(ctx, "missing"))
}
