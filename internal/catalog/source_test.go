package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestFileSource_LoadsSpreadsheetColumns(t *testing.T) {
	dir := t.TempDir()
	pp := writeFile(t, dir, "products.json", `[
		{"Product ID": "A1", "Product Name": "Kettle", "Price": "24.99"},
		{"Product ID": 102, "Product Name": "Toaster", "Price": 31.5},
		{"Product ID": "A3", "Product Name": "Mug", "Price": "4.00"}
	]`)
	sp := writeFile(t, dir, "stock.json", `[
		{"Product ID": "A1", "Stock Available": "True"},
		{"Product ID": 102, "Stock Available": "False"},
		{"Product ID": "A3"}
	]`)

	src := NewFileSource(pp, sp)
	require.NoError(t, src.Ping(context.Background()))

	idx, err := Load(context.Background(), src, nil)
	require.NoError(t, err)
	require.Equal(t, 3, idx.Len())

	toaster, ok := idx.Get("102")
	require.True(t, ok)
	require.False(t, toaster.InStock)
	require.Equal(t, "31.5", toaster.Price.String())

	mug, ok := idx.Get("A3")
	require.True(t, ok)
	require.True(t, mug.InStock)
	require.Equal(t, 2, idx.AvailableCount())
}

func TestFileSource_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.json", `{"not": "an array"}`)

	_, err := Load(context.Background(), NewFileSource(bad, ""), nil)
	require.ErrorContains(t, err, "load products")

	src := NewFileSource(filepath.Join(dir, "missing.json"), "")
	require.Error(t, src.Ping(context.Background()))
}

func TestFileSource_StockOptional(t *testing.T) {
	dir := t.TempDir()
	pp := writeFile(t, dir, "products.json", `[{"Product ID": "A1", "Product Name": "Kettle", "Price": 1}]`)

	src := NewFileSource(pp, "")
	require.NoError(t, src.Ping(context.Background()))

	idx, err := Load(context.Background(), src, nil)
	require.NoError(t, err)
	require.Equal(t, 1, idx.AvailableCount())

	src.StockPath = filepath.Join(dir, "missing-stock.json")
	require.Error(t, src.Ping(context.Background()))
}

func TestFileSource_MalformedPriceKeepsRow(t *testing.T) {
	dir := t.TempDir()
	pp := writeFile(t, dir, "products.json", `[
		{"Product ID": "A1", "Product Name": "Kettle", "Price": ""},
		{"Product ID": "A2", "Product Name": "Toaster", "Price": "n/a"},
		{"Product ID": "A3", "Product Name": "Mug"},
		{"Product ID": "A4", "Product Name": "Plate", "Price": "3.25"}
	]`)

	core, logs := observer.New(zapcore.WarnLevel)
	src := NewFileSource(pp, "")
	src.Log = zap.New(core)

	idx, err := Load(context.Background(), src, nil)
	require.NoError(t, err)
	require.Equal(t, 4, idx.Len())

	for _, id := range []string{"A1", "A2", "A3"} {
		p, ok := idx.Get(id)
		require.True(t, ok)
		require.True(t, p.Price.IsZero(), "price of %s", id)
	}
	plate, _ := idx.Get("A4")
	require.Equal(t, "3.25", plate.Price.StringFixed(2))

	require.Equal(t, 3, logs.FilterMessage("unparseable price, using zero").Len())
	require.Equal(t, "A2", logs.All()[1].ContextMap()["product_id"])
}

func TestOpen_PicksSource(t *testing.T) {
	src, closeFn, err := Open(OpenOptions{})
	require.NoError(t, err)
	require.NoError(t, closeFn())
	require.Equal(t, "memory", Kind(src))

	src, _, err = Open(OpenOptions{ProductsPath: "p.json", StockPath: "s.json"})
	require.NoError(t, err)
	require.Equal(t, "file", Kind(src))

	src, closeFn, err = Open(OpenOptions{DatabaseURL: "postgres://u:p@localhost:5432/shelf"})
	require.NoError(t, err)
	require.Equal(t, "postgres", Kind(src))
	require.NoError(t, closeFn())
}

func TestMemSource_Seeded(t *testing.T) {
	idx, err := Load(context.Background(), NewMemSource(), nil)
	require.NoError(t, err)
	require.Equal(t, 12, idx.Len())
	// p2, p5 and p11 are "False"; p7 has no stock record.
	require.Equal(t, 9, idx.AvailableCount())
}
