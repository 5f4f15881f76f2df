package feed

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MiniShelf/internal/cart"
	"MiniShelf/internal/catalog"
	"MiniShelf/internal/display"
	"MiniShelf/internal/pager"
	"MiniShelf/pkg/kit"
)

const readyTimeout = 1 * time.Second

type Server struct {
	Catalog   *catalog.Index
	Source    catalog.Source
	Cart      cart.Store
	Sessions  *Sessions
	Navigator Navigator
	Limiter   *kit.IPRateLimiter
	Log       *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.NotFound(kit.NotFound)
	r.MethodNotAllowed(kit.MethodNotAllowed)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.ready)

	r.Get("/products", s.listProducts)
	r.Get("/products/{id}", s.getProduct)

	r.Route("/sessions", func(sr chi.Router) {
		sr.With(s.limitSessions).Post("/", s.openSession)
		sr.Get("/{id}", s.getSession)
		sr.Post("/{id}/next", s.nextPage)
		sr.Delete("/{id}", s.closeSession)
	})

	r.Route("/cart/items", func(cr chi.Router) {
		cr.Get("/", s.listCart)
		cr.Get("/{id}", s.cartContains)
		cr.Put("/{id}", s.addToCart)
		cr.Delete("/{id}", s.removeFromCart)
		cr.Post("/{id}/toggle", s.toggleCart)
	})

	return r
}

func (s *Server) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) navigator() Navigator {
	if s.Navigator == nil {
		return PathNavigator{}
	}
	return s.Navigator
}

func (s *Server) limitSessions(next http.Handler) http.Handler {
	if s.Limiter == nil {
		return next
	}
	return s.Limiter.Middleware(next)
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if s.Source != nil {
		if err := s.Source.Ping(ctx); err != nil {
			s.log().Warn("readyz failed: catalog source", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog not ready", nil)
			return
		}
	}
	if err := s.Cart.Ping(ctx); err != nil {
		s.log().Warn("readyz failed: cart", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "cart not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	items, err := s.itemViews(r.Context(), s.Catalog.Products())
	if err != nil {
		s.serverError(w, r, "list products failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, items)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := s.product(w, r)
	if !ok {
		return
	}

	v, err := s.itemView(r.Context(), p)
	if err != nil {
		s.serverError(w, r, "get product failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, v)
}

func (s *Server) openSession(w http.ResponseWriter, r *http.Request) {
	id, pg := s.Sessions.Open()

	// The list shows a full-screen loader until the first page is in, so the
	// response waits for it.
	if _, err := pg.Next(r.Context()); err != nil {
		if r.Context().Err() != nil {
			// The client left before it learned the id, so nobody can close it.
			_ = s.Sessions.Close(id)
			s.log().Debug("session abandoned during initial load", zap.String("session_id", id))
			return
		}
		s.log().Warn("initial page load failed", zap.String("session_id", id), zap.Error(err))
	}

	v, err := s.sessionView(r.Context(), id, pg.State())
	if err != nil {
		s.serverError(w, r, "render session failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, v)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pg, ok := s.session(w, r, id)
	if !ok {
		return
	}

	v, err := s.sessionView(r.Context(), id, pg.State())
	if err != nil {
		s.serverError(w, r, "render session failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, v)
}

func (s *Server) nextPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pg, ok := s.session(w, r, id)
	if !ok {
		return
	}

	page, err := pg.Next(r.Context())
	s.Sessions.touch(id)
	switch {
	case errors.Is(err, pager.ErrClosed):
		kit.WriteError(w, r, http.StatusNotFound, "session closed", map[string]any{"id": id})
		return
	case isTimeoutErr(err):
		kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
		return
	case err != nil:
		s.serverError(w, r, "load page failed", err)
		return
	}

	items, err := s.itemViews(r.Context(), page.Items)
	if err != nil {
		s.serverError(w, r, "render page failed", err)
		return
	}

	st := pg.State()
	sum := display.Summarize(st, s.Catalog)
	kit.WriteJSON(w, http.StatusOK, pageView{
		SessionID: id,
		Page:      page.Index,
		Items:     items,
		HasMore:   st.HasMore,
		Loading:   st.Loading,
		Summary:   sum,
		Headline:  sum.Headline(),
		Footer:    display.Footer(st),
	})
}

func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Sessions.Close(id); err != nil {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listCart(w http.ResponseWriter, r *http.Request) {
	items, err := s.Cart.List(r.Context())
	if err != nil {
		s.serverError(w, r, "list cart failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, items)
}

func (s *Server) cartContains(w http.ResponseWriter, r *http.Request) {
	p, ok := s.product(w, r)
	if !ok {
		return
	}

	in, err := s.Cart.Contains(r.Context(), p.ID)
	if err != nil {
		s.serverError(w, r, "cart lookup failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, cartStatus{ProductID: p.ID, InCart: in})
}

func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	p, ok := s.product(w, r)
	if !ok {
		return
	}

	if err := cart.AddProduct(r.Context(), s.Cart, p); err != nil {
		s.writeCartError(w, r, p, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, cartStatus{ProductID: p.ID, InCart: true})
}

func (s *Server) removeFromCart(w http.ResponseWriter, r *http.Request) {
	p, ok := s.product(w, r)
	if !ok {
		return
	}

	if err := s.Cart.Remove(r.Context(), p.ID); err != nil {
		s.writeCartError(w, r, p, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, cartStatus{ProductID: p.ID, InCart: false})
}

func (s *Server) toggleCart(w http.ResponseWriter, r *http.Request) {
	p, ok := s.product(w, r)
	if !ok {
		return
	}

	in, err := cart.Toggle(r.Context(), s.Cart, p)
	if err != nil {
		s.writeCartError(w, r, p, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, cartStatus{ProductID: p.ID, InCart: in})
}

func (s *Server) product(w http.ResponseWriter, r *http.Request) (catalog.EnrichedProduct, bool) {
	id := chi.URLParam(r, "id")
	p, ok := s.Catalog.Get(id)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return catalog.EnrichedProduct{}, false
	}
	return p, true
}

func (s *Server) session(w http.ResponseWriter, r *http.Request, id string) (*pager.Pager, bool) {
	pg, err := s.Sessions.Get(id)
	if err != nil {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return nil, false
	}
	return pg, true
}

func (s *Server) writeCartError(w http.ResponseWriter, r *http.Request, p catalog.EnrichedProduct, err error) {
	if errors.Is(err, cart.ErrOutOfStock) {
		kit.WriteError(w, r, http.StatusConflict, "out of stock", map[string]any{"id": p.ID})
		return
	}
	s.serverError(w, r, "cart update failed", err)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if isTimeoutErr(err) {
		kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
		return
	}
	s.log().Error(msg, zap.Error(err), zap.String("path", r.URL.Path))
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}

func isTimeoutErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
