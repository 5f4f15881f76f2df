// Package pager reveals a static catalog page by page. One Pager backs one
// open product-list screen; at most one page load is in flight at a time.
package pager

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"MiniShelf/internal/catalog"
)

const DefaultPageSize = 10

// ErrClosed is reported to a pending load that completed after Close.
var ErrClosed = errors.New("pager closed")

// Source is the unit of work a page load runs. *catalog.Index implements it;
// a remote source can be swapped in without changing the Pager.
type Source interface {
	Len() int
	Fetch(ctx context.Context, start, end int) ([]catalog.EnrichedProduct, error)
}

type Page struct {
	Index   int                       `json:"index"`
	Items   []catalog.EnrichedProduct `json:"items"`
	HasMore bool                      `json:"has_more"`
}

// State is a snapshot; Shown is a copy owned by the caller.
type State struct {
	PageIndex      int
	PageSize       int
	Shown          []catalog.EnrichedProduct
	HasMore        bool
	Loading        bool
	InitialLoading bool
	Closed         bool
}

type Options struct {
	PageSize int
	Log      *zap.Logger

	// OnPage is called after every published page with the load duration.
	OnPage func(Page, time.Duration)
}

type Pager struct {
	src    Source
	size   int
	log    *zap.Logger
	onPage func(Page, time.Duration)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	pageIndex int
	shown     []catalog.EnrichedProduct
	hasMore   bool
	loading   bool
	initial   bool
	closed    bool
}

func New(src Source, opts Options) *Pager {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	// An empty catalog has nothing to wait for, so it is never "initially loading".
	nonEmpty := src.Len() > 0

	ctx, cancel := context.WithCancel(context.Background())
	return &Pager{
		src:     src,
		size:    opts.PageSize,
		log:     opts.Log,
		onPage:  opts.OnPage,
		ctx:     ctx,
		cancel:  cancel,
		hasMore: nonEmpty,
		initial: nonEmpty,
	}
}

func (p *Pager) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return State{
		PageIndex:      p.pageIndex,
		PageSize:       p.size,
		Shown:          append([]catalog.EnrichedProduct(nil), p.shown...),
		HasMore:        p.hasMore,
		Loading:        p.loading,
		InitialLoading: p.initial,
		Closed:         p.closed,
	}
}

// Request starts loading the next page in the background and reports whether
// it did. It is a no-op while a load is in flight, after the last page, and
// after Close. done may be nil; it must not call Close.
func (p *Pager) Request(done func(Page, error)) bool {
	p.mu.Lock()
	if p.closed || p.loading || !p.hasMore {
		p.mu.Unlock()
		return false
	}
	p.loading = true
	page := p.pageIndex
	p.wg.Add(1)
	p.mu.Unlock()

	go p.load(page, done)
	return true
}

// Next is the blocking form of Request. When the call is guarded it returns
// an empty page carrying the current HasMore and a nil error.
func (p *Pager) Next(ctx context.Context) (Page, error) {
	type result struct {
		page Page
		err  error
	}
	ch := make(chan result, 1)

	if !p.Request(func(pg Page, err error) { ch <- result{pg, err} }) {
		st := p.State()
		return Page{Index: st.PageIndex, HasMore: st.HasMore}, nil
	}

	select {
	case r := <-ch:
		return r.page, r.err
	case <-ctx.Done():
		return Page{}, ctx.Err()
	}
}

// Close cancels a pending load and waits for it to unwind. A load finishing
// after Close never touches the state. Close is idempotent.
func (p *Pager) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}

func (p *Pager) load(page int, done func(Page, error)) {
	defer p.wg.Done()

	start := page * p.size
	end := start + p.size
	began := time.Now()

	items, err := p.src.Fetch(p.ctx, start, end)

	p.mu.Lock()
	if p.closed {
		p.loading = false
		p.mu.Unlock()
		p.log.Debug("page load finished after close, dropped", zap.Int("page", page))
		notify(done, Page{}, ErrClosed)
		return
	}
	if err != nil {
		p.loading = false
		p.mu.Unlock()
		p.log.Warn("page load failed", zap.Int("page", page), zap.Error(err))
		notify(done, Page{}, err)
		return
	}

	out := Page{Index: page, Items: items, HasMore: end < p.src.Len()}
	p.shown = append(p.shown, items...)
	p.pageIndex++
	p.hasMore = out.HasMore
	p.loading = false
	p.initial = false
	p.mu.Unlock()

	took := time.Since(began)
	p.log.Debug("page loaded",
		zap.Int("page", page),
		zap.Int("items", len(items)),
		zap.Bool("has_more", out.HasMore),
		zap.Duration("took", took),
	)
	if p.onPage != nil {
		p.onPage(out, took)
	}
	notify(done, out, nil)
}

func notify(done func(Page, error), pg Page, err error) {
	if done != nil {
		done(pg, err)
	}
}
