package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

type MemSource struct {
	products []Product
	stock    []StockRecord
}

// NewMemSource returns a source seeded with a small demo catalog.
func NewMemSource() *MemSource {
	price := decimal.RequireFromString
	return NewMemSourceFrom(
		[]Product{
			{ID: "p1", Name: "Mechanical Keyboard", Price: price("49.90")},
			{ID: "p2", Name: "Wireless Mouse", Price: price("19.90")},
			{ID: "p3", Name: "USB-C Hub", Price: price("34.50")},
			{ID: "p4", Name: "Laptop Stand", Price: price("27.00")},
			{ID: "p5", Name: "Webcam 1080p", Price: price("59.99")},
			{ID: "p6", Name: "Noise Cancelling Headphones", Price: price("149.00")},
			{ID: "p7", Name: "Desk Mat", Price: price("12.49")},
			{ID: "p8", Name: "Monitor Light Bar", Price: price("39.95")},
			{ID: "p9", Name: "Portable SSD 1TB", Price: price("89.00")},
			{ID: "p10", Name: "Cable Organizer", Price: price("8.75")},
			{ID: "p11", Name: "Bluetooth Speaker", Price: price("44.20")},
			{ID: "p12", Name: "Phone Tripod", Price: price("15.60")},
		},
		[]StockRecord{
			{ProductID: "p1", Availability: AvailabilityTrue},
			{ProductID: "p2", Availability: AvailabilityFalse},
			{ProductID: "p3", Availability: AvailabilityTrue},
			{ProductID: "p4", Availability: AvailabilityTrue},
			{ProductID: "p5", Availability: AvailabilityFalse},
			{ProductID: "p6", Availability: AvailabilityTrue},
			{ProductID: "p8", Availability: AvailabilityTrue},
			{ProductID: "p9", Availability: AvailabilityTrue},
			{ProductID: "p10", Availability: AvailabilityTrue},
			{ProductID: "p11", Availability: AvailabilityFalse},
			{ProductID: "p12", Availability: AvailabilityTrue},
		},
	)
}

// NewMemSourceFrom wraps caller-provided tables. The slices are copied.
func NewMemSourceFrom(products []Product, stock []StockRecord) *MemSource {
	return &MemSource{
		products: append([]Product(nil), products...),
		stock:    append([]StockRecord(nil), stock...),
	}
}

func (s *MemSource) Ping(ctx context.Context) error { return nil }

func (s *MemSource) Products(ctx context.Context) ([]Product, error) {
	return append([]Product(nil), s.products...), nil
}

func (s *MemSource) Stock(ctx context.Context) ([]StockRecord, error) {
	return append([]StockRecord(nil), s.stock...), nil
}
