package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hbnb-dev/hbnb-backend/api/controllers"
	"github.com/hbnb-dev/hbnb-backend/api/middleware"
	"github.com/hbnb-dev/hbnb-backend/internal/facade"
	"github.com/hbnb-dev/hbnb-backend/pkg/auth/session"
	"github.com/hbnb-dev/hbnb-backend/pkg/config"
	"github.com/hbnb-dev/hbnb-backend/pkg/logger"
)

// NewRouter wires the HTTP surface. redisP, sessions and gatherer are
// optional and must be passed as untyped nil when absent.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	sessions session.AccessSessionChecker,
	authService controllers.SessionService,
	app facade.API,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	deps := map[string]controllers.Pinger{"database": dbP}
	if redisP != nil {
		deps["redis"] = redisP
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps, logg))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", controllers.AuthLogin(authService, logg))
			r.Post("/refresh", controllers.AuthRefresh(authService, logg))
			r.Post("/logout", controllers.AuthLogout(authService, logg))
			r.Get("/me", controllers.AuthMe(app, logg))
		})

		r.Post("/admin/users", controllers.AdminCreateUser(app, logg))

		r.Route("/users", func(r chi.Router) {
			r.Post("/", controllers.CreateUser(app, logg))
			r.Get("/", controllers.ListUsers(app, logg))
			r.Get("/{userId}", controllers.GetUser(app, logg))
			r.Put("/{userId}", controllers.UpdateUser(app, logg))
			r.Delete("/{userId}", controllers.DeleteUser(app, logg))
		})

		r.Route("/places", func(r chi.Router) {
			r.Post("/", controllers.CreatePlace(app, logg))
			r.Get("/", controllers.ListPlaces(app, logg))
			r.Get("/{placeId}", controllers.GetPlace(app, logg))
			r.Put("/{placeId}", controllers.UpdatePlace(app, logg))
			r.Delete("/{placeId}", controllers.DeletePlace(app, logg))
			r.Get("/{placeId}/reviews", controllers.ListPlaceReviews(app, logg))
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Post("/", controllers.CreateReview(app, logg))
			r.Get("/", controllers.ListReviews(app, logg))
			r.Get("/{reviewId}", controllers.GetReview(app, logg))
			r.Put("/{reviewId}", controllers.UpdateReview(app, logg))
			r.Delete("/{reviewId}", controllers.DeleteReview(app, logg))
		})

		r.Route("/amenities", func(r chi.Router) {
			r.Post("/", controllers.CreateAmenity(app, logg))
			r.Get("/", controllers.ListAmenities(app, logg))
			r.Get("/{amenityId}", controllers.GetAmenity(app, logg))
			r.Put("/{amenityId}", controllers.UpdateAmenity(app, logg))
			r.Delete("/{amenityId}", controllers.DeleteAmenity(app, logg))
		})
	})

	return r
}
