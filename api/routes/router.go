package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/enochaseks/lokal-sub003/api/controllers"
	analyticscontrollers "github.com/enochaseks/lokal-sub003/api/controllers/analytics"
	"github.com/enochaseks/lokal-sub003/api/middleware"
	"github.com/enochaseks/lokal-sub003/internal/analytics"
	"github.com/enochaseks/lokal-sub003/pkg/config"
	"github.com/enochaseks/lokal-sub003/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	registry *prometheus.Registry,
	analyticsService analytics.Service,
	pingers ...controllers.Pinger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers...))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/stores/{storeID}/analytics", func(r chi.Router) {
		r.Use(middleware.StoreContext(logg))
		r.Get("/", analyticscontrollers.StoreSnapshot(analyticsService, logg))
		r.Get("/orders", analyticscontrollers.StoreOrders(analyticsService, logg))
	})

	return r
}
