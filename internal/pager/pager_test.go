package pager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"MiniShelf/internal/catalog"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newIndex(n int) *catalog.Index {
	ps := make([]catalog.Product, n)
	for i := range ps {
		ps[i] = catalog.Product{
			ID:    fmt.Sprintf("P%d", i+1),
			Name:  fmt.Sprintf("Product %d", i+1),
			Price: decimal.NewFromInt(int64(10 + i)),
		}
	}
	return catalog.Build(ps, nil, nil)
}

func keys(items []catalog.EnrichedProduct) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Key
	}
	return out
}

// gatedSource blocks every fetch until release is closed or ctx ends.
type gatedSource struct {
	Source
	release chan struct{}
	calls   atomic.Int32
}

func newGated(src Source) *gatedSource {
	return &gatedSource{Source: src, release: make(chan struct{})}
}

func (g *gatedSource) Fetch(ctx context.Context, start, end int) ([]catalog.EnrichedProduct, error) {
	g.calls.Add(1)
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.Source.Fetch(ctx, start, end)
}

type failingSource struct{ Source }

var errBoom = errors.New("boom")

func (failingSource) Fetch(context.Context, int, int) ([]catalog.EnrichedProduct, error) {
	return nil, errBoom
}

func drain(t *testing.T, p *Pager) []Page {
	t.Helper()
	var pages []Page
	for i := 0; i < 100; i++ {
		if !p.State().HasMore {
			return pages
		}
		pg, err := p.Next(context.Background())
		require.NoError(t, err)
		pages = append(pages, pg)
	}
	t.Fatalf("pager did not exhaust")
	return nil
}

func TestPager_TwentyFiveByTen(t *testing.T) {
	idx := newIndex(25)
	p := New(idx, Options{PageSize: 10})
	defer p.Close()

	pages := drain(t, p)

	var sizes []int
	var more []bool
	for _, pg := range pages {
		sizes = append(sizes, len(pg.Items))
		more = append(more, pg.HasMore)
	}
	require.Equal(t, []int{10, 10, 5}, sizes)
	require.Equal(t, []bool{true, true, false}, more)
	require.Equal(t, []int{0, 1, 2}, []int{pages[0].Index, pages[1].Index, pages[2].Index})
}

func TestPager_PagesConcatenateToCatalog(t *testing.T) {
	for _, tc := range []struct{ n, size int }{
		{0, 10}, {1, 10}, {9, 10}, {10, 10}, {11, 10}, {25, 7}, {40, 1}, {3, 100},
	} {
		t.Run(fmt.Sprintf("n=%d/size=%d", tc.n, tc.size), func(t *testing.T) {
			idx := newIndex(tc.n)
			p := New(idx, Options{PageSize: tc.size})
			defer p.Close()

			pages := drain(t, p)

			wantPages := (tc.n + tc.size - 1) / tc.size
			require.Len(t, pages, wantPages)

			var got []catalog.EnrichedProduct
			for _, pg := range pages {
				require.NotEmpty(t, pg.Items)
				require.LessOrEqual(t, len(pg.Items), tc.size)
				got = append(got, pg.Items...)
			}
			if diff := cmp.Diff(keys(idx.Products()), keys(got)); diff != "" {
				t.Fatalf("pages differ from catalog order (-want +got):\n%s", diff)
			}

			st := p.State()
			if diff := cmp.Diff(keys(got), keys(st.Shown)); diff != "" {
				t.Fatalf("shown differs from pages (-want +got):\n%s", diff)
			}
			require.False(t, st.HasMore)
		})
	}
}

func TestPager_InvariantsHoldAfterEveryPage(t *testing.T) {
	idx := newIndex(23)
	p := New(idx, Options{PageSize: 4})
	defer p.Close()

	for {
		st := p.State()
		require.Equal(t, min(st.PageIndex*st.PageSize, idx.Len()), len(st.Shown))
		require.Equal(t, st.PageIndex*st.PageSize < idx.Len(), st.HasMore)
		if !st.HasMore {
			break
		}
		_, err := p.Next(context.Background())
		require.NoError(t, err)
	}
}

func TestPager_ExhaustedIsIdempotent(t *testing.T) {
	p := New(newIndex(3), Options{PageSize: 10})
	defer p.Close()

	_, err := p.Next(context.Background())
	require.NoError(t, err)
	before := p.State()
	require.False(t, before.HasMore)

	for i := 0; i < 3; i++ {
		require.False(t, p.Request(nil))
		pg, err := p.Next(context.Background())
		require.NoError(t, err)
		require.Empty(t, pg.Items)
		require.False(t, pg.HasMore)
	}

	after := p.State()
	require.Equal(t, before.PageIndex, after.PageIndex)
	require.Equal(t, keys(before.Shown), keys(after.Shown))
}

func TestPager_EmptyCatalogNeverLoads(t *testing.T) {
	p := New(newIndex(0), Options{})
	defer p.Close()

	st := p.State()
	require.False(t, st.HasMore)
	require.False(t, st.InitialLoading)
	require.Equal(t, DefaultPageSize, st.PageSize)
	require.False(t, p.Request(nil))
}

func TestPager_DoubleTriggerWhileLoading(t *testing.T) {
	src := newGated(newIndex(25))
	p := New(src, Options{PageSize: 10})
	defer p.Close()

	type result struct {
		page Page
		err  error
	}
	done := make(chan result, 1)
	require.True(t, p.State().InitialLoading)
	require.True(t, p.Request(func(pg Page, err error) { done <- result{pg, err} }))
	require.True(t, p.State().Loading)

	require.False(t, p.Request(func(Page, error) { t.Error("second trigger must not load") }))
	pg, err := p.Next(context.Background())
	require.NoError(t, err)
	require.Empty(t, pg.Items)

	close(src.release)
	first := <-done
	require.NoError(t, first.err)
	require.Len(t, first.page.Items, 10)

	st := p.State()
	require.Len(t, st.Shown, 10)
	require.Equal(t, 1, st.PageIndex)
	require.False(t, st.Loading)
	require.False(t, st.InitialLoading)
	require.EqualValues(t, 1, src.calls.Load())
}

func TestPager_ConcurrentTriggersLoadEachPageOnce(t *testing.T) {
	idx := newIndex(50)
	p := New(idx, Options{PageSize: 5})
	defer p.Close()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p.State().HasMore {
				_, _ = p.Next(context.Background())
			}
		}()
	}
	wg.Wait()

	if diff := cmp.Diff(keys(idx.Products()), keys(p.State().Shown)); diff != "" {
		t.Fatalf("shown items duplicated or reordered (-want +got):\n%s", diff)
	}
}

func TestPager_CloseCancelsPendingLoad(t *testing.T) {
	src := newGated(newIndex(25))
	p := New(src, Options{PageSize: 10})

	errCh := make(chan error, 1)
	require.True(t, p.Request(func(_ Page, err error) { errCh <- err }))

	p.Close()

	require.ErrorIs(t, <-errCh, ErrClosed)
	st := p.State()
	require.True(t, st.Closed)
	require.Empty(t, st.Shown)
	require.Equal(t, 0, st.PageIndex)
	require.False(t, p.Request(nil))

	p.Close()
}

func TestPager_CloseDuringDelay(t *testing.T) {
	p := New(Delayed(newIndex(5), time.Hour), Options{})

	errCh := make(chan error, 1)
	require.True(t, p.Request(func(_ Page, err error) { errCh <- err }))

	closed := make(chan struct{})
	go func() {
		p.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatalf("Close did not cancel the delay timer")
	}
	require.ErrorIs(t, <-errCh, ErrClosed)
}

func TestPager_FetchErrorLeavesStateIntact(t *testing.T) {
	p := New(failingSource{newIndex(5)}, Options{PageSize: 2})
	defer p.Close()

	_, err := p.Next(context.Background())
	require.ErrorIs(t, err, errBoom)

	st := p.State()
	require.False(t, st.Loading)
	require.True(t, st.HasMore)
	require.Equal(t, 0, st.PageIndex)
	require.True(t, p.Request(nil))
}

func TestPager_NextHonorsCallerContext(t *testing.T) {
	src := newGated(newIndex(5))
	p := New(src, Options{})
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Next(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.True(t, p.State().Loading)

	close(src.release)
	require.Eventually(t, func() bool { return !p.State().Loading }, time.Second, 5*time.Millisecond)
	require.Len(t, p.State().Shown, 5)
}

func TestPager_OnPageHook(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []int
	)
	p := New(newIndex(7), Options{PageSize: 3, OnPage: func(pg Page, took time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, len(pg.Items))
	}})
	defer p.Close()

	drain(t, p)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{3, 3, 1}, seen)
}

func TestDelayed(t *testing.T) {
	idx := newIndex(3)
	require.Equal(t, Source(idx), Delayed(idx, 0))

	p := New(Delayed(idx, 30*time.Millisecond), Options{})
	defer p.Close()

	start := time.Now()
	pg, err := p.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, pg.Items, 3)
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}
