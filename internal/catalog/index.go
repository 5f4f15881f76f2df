package catalog

import (
	"context"
	"strconv"

	"go.uber.org/zap"
)

// Index is the enriched, read-only catalog. It is built once and shared by
// every pager session.
type Index struct {
	items     []EnrichedProduct
	byID      map[string]int
	available int
}

// Build joins products with stock by product id. The first stock record for
// an id wins.
func Build(products []Product, stock []StockRecord, log *zap.Logger) *Index {
	if log == nil {
		log = zap.NewNop()
	}

	byStockID := make(map[string]StockRecord, len(stock))
	for _, rec := range stock {
		if _, dup := byStockID[rec.ProductID]; dup {
			log.Debug("duplicate stock record ignored", zap.String("product_id", rec.ProductID))
			continue
		}
		if !knownAvailability(rec.Availability) {
			log.Warn("unrecognized stock availability, treating as in stock",
				zap.String("product_id", rec.ProductID),
				zap.String("availability", rec.Availability),
			)
		}
		byStockID[rec.ProductID] = rec
	}

	idx := &Index{
		items: make([]EnrichedProduct, 0, len(products)),
		byID:  make(map[string]int, len(products)),
	}

	for i, p := range products {
		rec, found := byStockID[p.ID]
		ep := EnrichedProduct{
			Product:  p,
			InStock:  InStock(rec, found),
			Key:      strconv.Itoa(i) + "-" + p.ID,
			Position: i,
		}
		if ep.InStock {
			idx.available++
		}
		if _, seen := idx.byID[p.ID]; !seen {
			idx.byID[p.ID] = i
		}
		idx.items = append(idx.items, ep)
	}

	log.Info("catalog index built",
		zap.Int("products", len(products)),
		zap.Int("stock_records", len(stock)),
		zap.Int("available", idx.available),
	)
	return idx
}

func (x *Index) Len() int { return len(x.items) }

func (x *Index) AvailableCount() int { return x.available }

func (x *Index) At(i int) EnrichedProduct { return x.items[i] }

// Products returns a copy of the whole enriched catalog in catalog order.
func (x *Index) Products() []EnrichedProduct {
	out := make([]EnrichedProduct, len(x.items))
	copy(out, x.items)
	return out
}

// Get returns the first product with the given id.
func (x *Index) Get(id string) (EnrichedProduct, bool) {
	i, ok := x.byID[id]
	if !ok {
		return EnrichedProduct{}, false
	}
	return x.items[i], true
}

// Fetch returns a copy of items [start, end), clamped to the catalog bounds.
func (x *Index) Fetch(ctx context.Context, start, end int) ([]EnrichedProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = clamp(start, 0, len(x.items))
	end = clamp(end, start, len(x.items))

	out := make([]EnrichedProduct, end-start)
	copy(out, x.items[start:end])
	return out, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
