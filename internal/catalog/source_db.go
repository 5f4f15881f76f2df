package catalog

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 5 * time.Second
)

// PostgresSource reads the static tables from Postgres. Open the *sql.DB with
// the pgx stdlib driver.
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresSource) Products(ctx context.Context) ([]Product, error) {
	var out []Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT product_id, product_name, price::text
			FROM products
			ORDER BY position ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Product, 0, 64)
		for rows.Next() {
			var (
				p     Product
				price string
			)
			if err := rows.Scan(&p.ID, &p.Name, &price); err != nil {
				return err
			}
			if p.Price, err = decimal.NewFromString(price); err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresSource) Stock(ctx context.Context) ([]StockRecord, error) {
	var out []StockRecord

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT product_id, COALESCE(stock_available, '')
			FROM stock
			ORDER BY position ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]StockRecord, 0, 64)
		for rows.Next() {
			var r StockRecord
			if err := rows.Scan(&r.ProductID, &r.Availability); err != nil {
				return err
			}
			out = append(out, r)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
