package catalog

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

type OpenOptions struct {
	DatabaseURL  string
	ProductsPath string
	StockPath    string
	Log          *zap.Logger
}

// Open picks a source: Postgres when a database URL is set, the JSON files
// when a products path is set, the seeded tables otherwise. The returned
// close func is never nil.
func Open(opts OpenOptions) (Source, func() error, error) {
	switch {
	case opts.DatabaseURL != "":
		db, err := sql.Open("pgx", opts.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return NewPostgresSource(db), db.Close, nil
	case opts.ProductsPath != "":
		fs := NewFileSource(opts.ProductsPath, opts.StockPath)
		fs.Log = opts.Log
		return fs, noClose, nil
	default:
		return NewMemSource(), noClose, nil
	}
}

// Kind names the source for logs.
func Kind(src Source) string {
	switch src.(type) {
	case *PostgresSource:
		return "postgres"
	case *FileSource:
		return "file"
	case *MemSource:
		return "memory"
	default:
		return fmt.Sprintf("%T", src)
	}
}

func noClose() error { return nil }
