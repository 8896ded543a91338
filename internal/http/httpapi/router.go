package httpapi

import (
	"net/http"
	"time"

	"vidver/internal/http/handlers"
	mw "vidver/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires all routes. Static uploads are served from the file store
// root; generation endpoints sit behind auth and wait for the provider.
func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		chimw.Recoverer,
		mw.RequestID,
		mw.Logger(app.Logger),
		mw.CORS(app.Config.AllowedOrigins),
		mw.Locale,
		mw.RateLimit(app.Config.RateLimitPerMin, time.Minute),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/catalog", app.Catalog)

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/register", app.Register)
		r.Post("/login", app.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.Auth(app.Config.JWTSecret))

		r.Route("/v1/me", func(r chi.Router) {
			r.Get("/", app.Me)
			r.Put("/", app.UpdateProfile)
		})

		r.Post("/v1/uploads", app.Upload)

		r.Route("/v1/assets", func(r chi.Router) {
			r.Get("/", app.ListAssets)
			r.Delete("/{id}", app.DeleteAsset)
		})

		r.Route("/v1/generate", func(r chi.Router) {
			r.Post("/image", app.GenerateImage)
			r.Post("/video", app.GenerateVideo)
		})

		r.Route("/v1/jobs", func(r chi.Router) {
			r.Get("/", app.ListJobs)
			r.Get("/{id}", app.GetJob)
			r.Get("/{id}/download", app.DownloadJob)
		})

		r.Get("/v1/tokens/history", app.TokensHistory)
	})

	if app.Store != nil {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(app.Store.BasePath())))
		r.Get("/static/*", fs.ServeHTTP)
	}

	return r
}
