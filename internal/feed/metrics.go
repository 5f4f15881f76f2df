package feed

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"MiniShelf/internal/pager"
)

// Metrics covers pager activity. A nil *Metrics records nothing.
type Metrics struct {
	PagesLoaded  prometheus.Counter
	ItemsShown   prometheus.Counter
	PageLoad     prometheus.Histogram
	SessionsOpen prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PagesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feed_pages_loaded_total",
			Help: "Pages published to product list sessions",
		}),
		ItemsShown: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feed_items_shown_total",
			Help: "Products revealed across all sessions",
		}),
		PageLoad: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "feed_page_load_seconds",
			Help:    "Time from page request to publish, including the artificial delay",
			Buckets: []float64{.001, .01, .1, .25, .5, .75, 1, 2},
		}),
		SessionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feed_sessions_open",
			Help: "Product list sessions currently open",
		}),
	}

	reg.MustRegister(m.PagesLoaded, m.ItemsShown, m.PageLoad, m.SessionsOpen)
	return m
}

func (m *Metrics) pageLoaded(p pager.Page, took time.Duration) {
	if m == nil {
		return
	}
	m.PagesLoaded.Inc()
	m.ItemsShown.Add(float64(len(p.Items)))
	m.PageLoad.Observe(took.Seconds())
}

func (m *Metrics) sessionOpened() {
	if m != nil {
		m.SessionsOpen.Inc()
	}
}

func (m *Metrics) sessionClosed() {
	if m != nil {
		m.SessionsOpen.Dec()
	}
}
