package feed

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"MiniShelf/pkg/kit"
)

// HTTPDeps carries the transport concerns around a Server. Feed metrics are
// handed to the Sessions directly; Registry here serves HTTP metrics and the
// /metrics endpoint.
type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, kit.Recoverer, kit.Logging(deps.Log))

	if deps.Registry != nil {
		r.Use(kit.NewMetrics(deps.Registry).Middleware(deps.Service, kit.ChiRoutePatternOrPath))
		if deps.MetricsEnabled {
			r.With(kit.MetricsAuth(deps.MetricsToken)).
				Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
		}
	}

	r.Mount("/", s.Routes())
	return r
}
