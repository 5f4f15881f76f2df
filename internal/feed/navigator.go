package feed

import (
	"net/url"
	"strings"

	"MiniShelf/internal/catalog"
)

// Navigator resolves where selecting an item leads.
type Navigator interface {
	ProductDetail(p catalog.EnrichedProduct) string
}

// PathNavigator points at this service's own product detail route.
type PathNavigator struct {
	BasePath string
}

func (n PathNavigator) ProductDetail(p catalog.EnrichedProduct) string {
	return strings.TrimRight(n.BasePath, "/") + "/products/" + url.PathEscape(p.ID)
}
