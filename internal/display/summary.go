// Package display derives the read-only figures the product list shows
// around the grid: counts, availability share, price labels.
package display

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"MiniShelf/internal/catalog"
	"MiniShelf/internal/pager"
)

const (
	DiscountLabel = "SAVE 10%"
	EndOfList     = "No more products to load"
)

var listPriceMarkup = decimal.RequireFromString("1.2")

// Summary is computed on demand; it holds no state of its own.
//
// AvailableCount spans the whole catalog, so it does not move while the user
// scrolls. ShownAvailableCount covers the revealed items only.
type Summary struct {
	ShownCount             int     `json:"shown_count"`
	TotalCount             int     `json:"total_count"`
	AvailableCount         int     `json:"available_count"`
	ShownAvailableCount    int     `json:"shown_available_count"`
	AvailabilityPercentage float64 `json:"availability_percentage"`
	Known                  bool    `json:"availability_known"`
}

func Summarize(st pager.State, idx *catalog.Index) Summary {
	s := Summary{
		ShownCount:     len(st.Shown),
		TotalCount:     idx.Len(),
		AvailableCount: idx.AvailableCount(),
	}
	for _, it := range st.Shown {
		if it.InStock {
			s.ShownAvailableCount++
		}
	}
	s.AvailabilityPercentage, s.Known = Percentage(s.AvailableCount, s.TotalCount)
	return s
}

// Percentage returns part/total*100 rounded to two decimals. A zero total
// yields (0, false) instead of NaN.
func Percentage(part, total int) (float64, bool) {
	if total <= 0 {
		return 0, false
	}
	v := float64(part) / float64(total) * 100
	return math.Round(v*100) / 100, true
}

func (s Summary) Headline() string {
	return fmt.Sprintf("Showing %d of %d items", s.ShownCount, s.TotalCount)
}

// AvailabilityLabel renders the percentage, or "unknown" for an empty catalog.
func (s Summary) AvailabilityLabel() string {
	if !s.Known {
		return "availability unknown"
	}
	return fmt.Sprintf("%d of %d in stock (%.2f%%)", s.AvailableCount, s.TotalCount, s.AvailabilityPercentage)
}

// Footer is the end-of-list message, shown once the last page is in and the
// list is not empty.
func Footer(st pager.State) string {
	if !st.HasMore && len(st.Shown) > 0 {
		return EndOfList
	}
	return ""
}

// ListPrice is the struck-through reference price next to the selling price.
func ListPrice(price decimal.Decimal) decimal.Decimal {
	return price.Mul(listPriceMarkup).Round(2)
}
