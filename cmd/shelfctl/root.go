package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"MiniShelf/internal/catalog"
	"MiniShelf/internal/display"
	"MiniShelf/internal/pager"
)

type rootOptions struct {
	productsFile string
	stockFile    string
	databaseURL  string
	verbose      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "shelfctl",
		Short:        "Inspect the product catalog the feed serves",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.productsFile, "products", "", "products JSON file (seeded catalog when empty)")
	root.PersistentFlags().StringVar(&opts.stockFile, "stock", "", "stock JSON file")
	root.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "read the catalog from Postgres instead of files")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(
		newSummaryCmd(opts),
		newPagesCmd(opts),
		newGetCmd(opts),
	)
	return root
}

func (o *rootOptions) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func (o *rootOptions) load(ctx context.Context, log *zap.Logger) (*catalog.Index, error) {
	src, closeSrc, err := catalog.Open(catalog.OpenOptions{
		DatabaseURL:  o.databaseURL,
		ProductsPath: o.productsFile,
		StockPath:    o.stockFile,
		Log:          log,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = closeSrc() }()

	return catalog.Load(ctx, src, log)
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print catalog size and availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := opts.load(cmd.Context(), opts.logger())
			if err != nil {
				return err
			}

			sum := display.Summarize(pager.State{}, idx)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "products:     %d\n", sum.TotalCount)
			fmt.Fprintf(out, "availability: %s\n", sum.AvailabilityLabel())
			return nil
		},
	}
}

func newPagesCmd(opts *rootOptions) *cobra.Command {
	var (
		pageSize int
		delay    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "pages",
		Short: "Walk the catalog page by page, as a scrolling client would",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.logger()
			idx, err := opts.load(cmd.Context(), log)
			if err != nil {
				return err
			}

			p := pager.New(pager.Delayed(idx, delay), pager.Options{PageSize: pageSize, Log: log})
			defer p.Close()

			out := cmd.OutOrStdout()
			for p.State().HasMore {
				pg, err := p.Next(cmd.Context())
				if err != nil {
					return err
				}
				printPage(out, pg)
			}

			st := p.State()
			sum := display.Summarize(st, idx)
			fmt.Fprintln(out, sum.Headline())
			if footer := display.Footer(st); footer != "" {
				fmt.Fprintln(out, footer)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&pageSize, "page-size", pager.DefaultPageSize, "items per page")
	cmd.Flags().DurationVar(&delay, "delay", 0, "artificial delay before each page")
	return cmd
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <product-id>",
		Short: "Print one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := opts.load(cmd.Context(), opts.logger())
			if err != nil {
				return err
			}

			p, ok := idx.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", catalog.ErrNotFound, args[0])
			}
			printItem(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func printPage(w io.Writer, pg pager.Page) {
	fmt.Fprintf(w, "page %d (%d items)\n", pg.Index+1, len(pg.Items))
	for _, it := range pg.Items {
		printItem(w, it)
	}
}

func printItem(w io.Writer, it catalog.EnrichedProduct) {
	stock := "in stock"
	if !it.InStock {
		stock = "out of stock"
	}
	fmt.Fprintf(w, "  %-6s %-32s %8s (was %s)  %s\n",
		it.ID, it.Name, it.Price.StringFixed(2), display.ListPrice(it.Price).StringFixed(2), stock)
}
