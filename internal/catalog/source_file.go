package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FileSource reads the catalog and stock tables from JSON arrays using the
// column names of the exported spreadsheets ("Product ID", "Price", ...).
type FileSource struct {
	ProductsPath string
	StockPath    string
	Log          *zap.Logger
}

func NewFileSource(productsPath, stockPath string) *FileSource {
	return &FileSource{ProductsPath: productsPath, StockPath: stockPath}
}

type fileProduct struct {
	ID    looseString `json:"Product ID"`
	Name  looseString `json:"Product Name"`
	Price looseString `json:"Price"`
}

type fileStock struct {
	ProductID looseString `json:"Product ID"`
	Available looseString `json:"Stock Available"`
}

// Ping checks the configured files exist. The stock file is optional.
func (s *FileSource) Ping(ctx context.Context) error {
	if _, err := os.Stat(s.ProductsPath); err != nil {
		return err
	}
	if s.StockPath == "" {
		return nil
	}
	_, err := os.Stat(s.StockPath)
	return err
}

func (s *FileSource) Products(ctx context.Context) ([]Product, error) {
	var rows []fileProduct
	if err := readJSON(s.ProductsPath, &rows); err != nil {
		return nil, err
	}

	out := make([]Product, 0, len(rows))
	for i, r := range rows {
		out = append(out, Product{ID: string(r.ID), Name: string(r.Name), Price: s.price(i, r)})
	}
	return out, nil
}

// price keeps a malformed row in the catalog at zero rather than failing the
// whole load.
func (s *FileSource) price(row int, r fileProduct) decimal.Decimal {
	d, err := decimal.NewFromString(string(r.Price))
	if err == nil {
		return d
	}

	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	log.Warn("unparseable price, using zero",
		zap.Int("row", row),
		zap.String("product_id", string(r.ID)),
		zap.String("price", string(r.Price)),
	)
	return decimal.Zero
}

func (s *FileSource) Stock(ctx context.Context) ([]StockRecord, error) {
	if s.StockPath == "" {
		return nil, nil
	}

	var rows []fileStock
	if err := readJSON(s.StockPath, &rows); err != nil {
		return nil, err
	}

	out := make([]StockRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, StockRecord{ProductID: string(r.ProductID), Availability: string(r.Available)})
	}
	return out, nil
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// looseString accepts JSON strings, numbers and booleans. Spreadsheet exports
// are inconsistent about quoting ids and flags.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	*s = looseString(strings.TrimSpace(string(b)))
	return nil
}
