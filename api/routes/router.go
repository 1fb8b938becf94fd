package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maajod/maajod-backend/api/controllers"
	"github.com/maajod/maajod-backend/api/middleware"
	"github.com/maajod/maajod-backend/internal/access"
	"github.com/maajod/maajod-backend/internal/auth"
	"github.com/maajod/maajod-backend/internal/stores"
	"github.com/maajod/maajod-backend/internal/summary"
	"github.com/maajod/maajod-backend/internal/transactions"
	"github.com/maajod/maajod-backend/pkg/config"
	"github.com/maajod/maajod-backend/pkg/logger"
	"github.com/maajod/maajod-backend/pkg/metrics"
)

// Dependencies bundles everything the router wires together.
type Dependencies struct {
	Config        *config.Config
	Logger        *logger.Logger
	DBPinger      controllers.Pinger
	RedisPinger   controllers.Pinger
	Resolver      *access.Resolver
	AuthService   auth.Service
	StoreService  stores.Service
	TxService     transactions.Service
	Summaries     summary.Service
	Registry      *prometheus.Registry
	HTTPMetrics   *metrics.HTTPMetrics
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		// Bare /health answers the liveness probe for load balancers
		// that cannot be pointed at a sub-path.
		r.Get("/", controllers.HealthLive(cfg))
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DBPinger,
			"redis":    deps.RedisPinger,
		}))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", controllers.Login(deps.AuthService, logg))
		r.Post("/register", controllers.Register(deps.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, logg)).Get("/me", controllers.Me(deps.AuthService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/stores", func(r chi.Router) {
			r.Post("/", controllers.StoreCreate(deps.StoreService, logg))
			r.Get("/", controllers.StoreList(deps.StoreService, logg))
			r.Route("/{storeId}", func(r chi.Router) {
				r.Get("/", controllers.StoreGet(deps.StoreService, logg))
				r.Put("/", controllers.StoreUpdate(deps.StoreService, logg))
				r.Get("/users", controllers.StoreUsersList(deps.StoreService, logg))
				r.Post("/users", controllers.StoreUserAdd(deps.StoreService, logg))
				r.Delete("/users/{userId}", controllers.StoreUserRemove(deps.StoreService, logg))
				r.Put("/default", controllers.StoreSetDefault(deps.StoreService, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.StoreContext(deps.Resolver, logg))

			r.Route("/transactions", func(r chi.Router) {
				r.Post("/", controllers.TransactionCreate(deps.TxService, logg))
				r.Get("/", controllers.TransactionList(deps.TxService, logg))
				r.Delete("/{transactionId}", controllers.TransactionDelete(deps.TxService, logg))
			})

			r.Route("/summary", func(r chi.Router) {
				r.Get("/daily", controllers.SummaryDaily(deps.Summaries, logg))
				r.Get("/monthly", controllers.SummaryMonthly(deps.Summaries, logg))
			})
		})
	})

	return r
}
