package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"MiniShelf/internal/pager"
)

var ErrSessionNotFound = errors.New("session not found")

const minReapInterval = 10 * time.Millisecond

type SessionOptions struct {
	PageSize int

	// IdleTimeout closes sessions nobody has touched for this long. A client
	// that vanishes never sends DELETE. Zero keeps sessions until closed.
	IdleTimeout time.Duration

	Log     *zap.Logger
	Metrics *Metrics
}

type session struct {
	pg      *pager.Pager
	touched time.Time
}

// Sessions owns one pager per open product list. Closing a session is the
// unmount: its pending page load is cancelled.
type Sessions struct {
	src      pager.Source
	pageSize int
	idle     time.Duration
	log      *zap.Logger
	metrics  *Metrics
	now      func() time.Time

	mu sync.Mutex
	m  map[string]*session
}

func NewSessions(src pager.Source, opts SessionOptions) *Sessions {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Sessions{
		src:      src,
		pageSize: opts.PageSize,
		idle:     opts.IdleTimeout,
		log:      opts.Log,
		metrics:  opts.Metrics,
		now:      time.Now,
		m:        map[string]*session{},
	}
}

func (s *Sessions) Open() (string, *pager.Pager) {
	id := "s_" + uuid.NewString()

	metrics := s.metrics
	pg := pager.New(s.src, pager.Options{
		PageSize: s.pageSize,
		Log:      s.log.With(zap.String("session_id", id)),
		OnPage:   func(p pager.Page, took time.Duration) { metrics.pageLoaded(p, took) },
	})

	s.mu.Lock()
	s.m[id] = &session{pg: pg, touched: s.now()}
	s.mu.Unlock()
	metrics.sessionOpened()

	s.log.Debug("session opened", zap.String("session_id", id))
	return id, pg
}

// Get returns the session's pager and marks it as used.
func (s *Sessions) Get(id string) (*pager.Pager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss, ok := s.m[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	ss.touched = s.now()
	return ss.pg, nil
}

func (s *Sessions) touch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ss, ok := s.m[id]; ok {
		ss.touched = s.now()
	}
}

// Close removes the session and waits for its pending load to unwind.
func (s *Sessions) Close(id string) error {
	s.mu.Lock()
	ss, ok := s.m[id]
	if ok {
		delete(s.m, id)
	}
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.metrics.sessionClosed()
	ss.pg.Close()
	s.log.Debug("session closed", zap.String("session_id", id))
	return nil
}

// Reap closes every session idle for longer than the idle timeout and
// reports how many it closed.
func (s *Sessions) Reap() int {
	if s.idle <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idle)

	s.mu.Lock()
	var stale []*pager.Pager
	for id, ss := range s.m {
		if ss.touched.Before(cutoff) {
			delete(s.m, id)
			stale = append(stale, ss.pg)
		}
	}
	s.mu.Unlock()

	for _, pg := range stale {
		s.metrics.sessionClosed()
		pg.Close()
	}
	if len(stale) > 0 {
		s.log.Info("idle sessions reaped", zap.Int("count", len(stale)), zap.Duration("idle_timeout", s.idle))
	}
	return len(stale)
}

// Run reaps idle sessions until ctx is done. It returns at once when no idle
// timeout is set.
func (s *Sessions) Run(ctx context.Context) {
	if s.idle <= 0 {
		return
	}

	t := time.NewTicker(max(s.idle/2, minReapInterval))
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Reap()
		}
	}
}

func (s *Sessions) CloseAll() {
	s.mu.Lock()
	open := s.m
	s.m = map[string]*session{}
	s.mu.Unlock()

	for _, ss := range open {
		s.metrics.sessionClosed()
		ss.pg.Close()
	}
	if len(open) > 0 {
		s.log.Info("sessions closed", zap.Int("count", len(open)))
	}
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
