package feed

import (
	"context"

	"MiniShelf/internal/catalog"
	"MiniShelf/internal/display"
	"MiniShelf/internal/pager"
)

type itemView struct {
	Key           string `json:"key"`
	ID            string `json:"id"`
	Name          string `json:"name"`
	Price         string `json:"price"`
	ListPrice     string `json:"list_price"`
	DiscountLabel string `json:"discount_label"`
	InStock       bool   `json:"in_stock"`
	InCart        bool   `json:"in_cart"`
	DetailURL     string `json:"detail_url"`
}

type sessionView struct {
	ID             string          `json:"id"`
	Items          []itemView      `json:"items"`
	PageIndex      int             `json:"page_index"`
	PageSize       int             `json:"page_size"`
	HasMore        bool            `json:"has_more"`
	Loading        bool            `json:"loading"`
	InitialLoading bool            `json:"initial_loading"`
	Summary        display.Summary `json:"summary"`
	Headline       string          `json:"headline"`
	Availability   string          `json:"availability"`
	Footer         string          `json:"footer,omitempty"`
}

type pageView struct {
	SessionID string          `json:"session_id"`
	Page      int             `json:"page"`
	Items     []itemView      `json:"items"`
	HasMore   bool            `json:"has_more"`
	Loading   bool            `json:"loading"`
	Summary   display.Summary `json:"summary"`
	Headline  string          `json:"headline"`
	Footer    string          `json:"footer,omitempty"`
}

type cartStatus struct {
	ProductID string `json:"product_id"`
	InCart    bool   `json:"in_cart"`
}

func (s *Server) itemViews(ctx context.Context, items []catalog.EnrichedProduct) ([]itemView, error) {
	out := make([]itemView, 0, len(items))
	for _, it := range items {
		v, err := s.itemView(ctx, it)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Server) itemView(ctx context.Context, it catalog.EnrichedProduct) (itemView, error) {
	inCart, err := s.Cart.Contains(ctx, it.ID)
	if err != nil {
		return itemView{}, err
	}
	return itemView{
		Key:           it.Key,
		ID:            it.ID,
		Name:          it.Name,
		Price:         it.Price.StringFixed(2),
		ListPrice:     display.ListPrice(it.Price).StringFixed(2),
		DiscountLabel: display.DiscountLabel,
		InStock:       it.InStock,
		InCart:        inCart,
		DetailURL:     s.navigator().ProductDetail(it),
	}, nil
}

func (s *Server) sessionView(ctx context.Context, id string, st pager.State) (sessionView, error) {
	items, err := s.itemViews(ctx, st.Shown)
	if err != nil {
		return sessionView{}, err
	}

	sum := display.Summarize(st, s.Catalog)
	return sessionView{
		ID:             id,
		Items:          items,
		PageIndex:      st.PageIndex,
		PageSize:       st.PageSize,
		HasMore:        st.HasMore,
		Loading:        st.Loading,
		InitialLoading: st.InitialLoading,
		Summary:        sum,
		Headline:       sum.Headline(),
		Availability:   sum.AvailabilityLabel(),
		Footer:         display.Footer(st),
	}, nil
}
