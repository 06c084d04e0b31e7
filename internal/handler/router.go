package handler

import (
	"net/http"
	"time"

	"github.com/casadocigano/fidelidade-api/internal/infra/observability"
	"github.com/casadocigano/fidelidade-api/internal/port"
	"github.com/casadocigano/fidelidade-api/internal/service"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles everything the router serves.
type Services struct {
	Auth      *service.AuthService
	Users     *service.UserService
	Clients   *service.ClientService
	Loyalty   *service.LoyaltyService
	Dashboard *service.DashboardService
	Seeder    port.Seeder
}

// NewRouter creates the HTTP router with all routes and middleware.
// The route shape matches the fidelidade frontend contract.
func NewRouter(svcs Services, metrics *observability.Metrics, logger *zap.Logger, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Heartbeat("/ping"))
	r.Use(requestDurationMiddleware(metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Get("/_health", healthHandler())
		r.Get("/_setup/seed", seedHandler(svcs.Seeder, logger))
		r.Post("/_setup/seed", seedHandler(svcs.Seeder, logger))
		r.Post("/auth/login", authLoginHandler(svcs.Auth, logger))

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			r.Get("/auth/me", authMeHandler(svcs.Auth, logger))

			r.Route("/admin", func(r chi.Router) {
				r.Get("/stores", listStoresHandler(svcs.Users, logger))
				r.Get("/users", listUsersHandler(svcs.Users, logger))
				r.Post("/users", createUserHandler(svcs.Users, logger))
				r.Put("/users/{id}", updateUserHandler(svcs.Users, logger))
				r.Delete("/users/{id}", deleteUserHandler(svcs.Users, logger))
				r.Get("/metrics", adminMetricsHandler(metrics, logger))
			})

			r.Get("/clientes", listClientsHandler(svcs.Clients, logger))
			r.Post("/clientes", createClientHandler(svcs.Clients, logger))

			r.Post("/visitas", registerVisitHandler(svcs.Loyalty, logger))
			r.Post("/resgates", redeemHandler(svcs.Loyalty, logger))

			r.Get("/dashboard/kpis", kpisHandler(svcs.Dashboard, logger))
			r.Get("/dashboard/aniversariantes", birthdaysHandler(svcs.Dashboard, logger))
		})
	})

	return r
}

// requestDurationMiddleware feeds the per-operation latency histogram with
// the chi route pattern, so path parameters don't explode the label set.
func requestDurationMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = "unmatched"
			}
			metrics.RecordRequestDuration(r.Method+" "+pattern, time.Since(start))
		})
	}
}
