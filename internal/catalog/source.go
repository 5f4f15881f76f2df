package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var ErrNotFound = errors.New("product not found")

// Source yields the two static tables the index is built from. Sources are
// read once at startup.
type Source interface {
	Products(ctx context.Context) ([]Product, error)
	Stock(ctx context.Context) ([]StockRecord, error)
	Ping(ctx context.Context) error
}

// Load reads both tables from src and builds the index.
func Load(ctx context.Context, src Source, log *zap.Logger) (*Index, error) {
	products, err := src.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	stock, err := src.Stock(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stock: %w", err)
	}

	return Build(products, stock, log), nil
}
