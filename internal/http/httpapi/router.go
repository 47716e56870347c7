package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"boardserver/internal/http/handlers"
	"boardserver/internal/middleware"
)

// Options carries the cross-cutting router configuration.
type Options struct {
	Logger          zerolog.Logger
	JWTSecret       string
	AllowedOrigins  []string
	RateLimitPerMin int
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	auth := middleware.AuthJWT(opts.JWTSecret)

	// Health
	r.Get("/v1/healthz", app.Health)

	// Accounts and sessions
	r.Route("/account", func(r chi.Router) {
		r.Post("/", app.Signup)
		r.Post("/login", app.Login)
		r.Post("/find-id", app.FindLoginID)
		r.Post("/reset-password", app.ResetPassword)
		r.Get("/count-login", app.CountLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/logout", app.Logout)
			r.Get("/my", app.MyAccount)
			r.Put("/my", app.UpdateMyAccount)
			r.Delete("/my", app.DeleteMyAccount)
		})
	})

	// Board
	r.Route("/posts", func(r chi.Router) {
		r.Get("/", app.ListPosts)
		r.Get("/search", app.SearchPosts)
		r.Get("/{postID}", app.GetPost)
		r.Get("/{postID}/attachment", app.DownloadAttachment)
		r.Get("/{postID}/comments", app.ListComments)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/", app.CreatePost)
			r.Get("/recent-searches", app.RecentSearchTerms)
			r.Put("/{postID}", app.UpdatePost)
			r.Delete("/{postID}", app.DeletePost)
			r.Post("/{postID}/comments", app.CreateComment)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Put("/comments/{commentID}", app.UpdateComment)
		r.Delete("/comments/{commentID}", app.DeleteComment)
	})

	// Admin
	r.Group(func(r chi.Router) {
		r.Use(auth, middleware.RequireAdmin)
		r.Get("/history", app.HistoryQuery)
		r.Post("/admin/rollup", app.ForceRollup)
	})

	return r
}
