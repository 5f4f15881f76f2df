package cart

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"MiniShelf/internal/catalog"
)

var ErrOutOfStock = errors.New("product out of stock")

type Item struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	AddedAt   time.Time       `json:"added_at"`
}

// Store is the cart the product list talks to. The list never owns cart
// state; it only adds, removes and asks.
type Store interface {
	Add(ctx context.Context, it Item) error
	Remove(ctx context.Context, productID string) error
	Contains(ctx context.Context, productID string) (bool, error)
	List(ctx context.Context) ([]Item, error)
	Ping(ctx context.Context) error
}

// AddProduct puts p in the cart. Out-of-stock products are refused.
func AddProduct(ctx context.Context, s Store, p catalog.EnrichedProduct) error {
	if !p.InStock {
		return ErrOutOfStock
	}
	return s.Add(ctx, Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		AddedAt:   time.Now().UTC(),
	})
}

// Toggle removes p when it is in the cart and adds it otherwise. It reports
// whether p is in the cart afterwards.
func Toggle(ctx context.Context, s Store, p catalog.EnrichedProduct) (bool, error) {
	in, err := s.Contains(ctx, p.ID)
	if err != nil {
		return false, err
	}
	if in {
		return false, s.Remove(ctx, p.ID)
	}
	if err := AddProduct(ctx, s, p); err != nil {
		return false, err
	}
	return true, nil
}
