package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"linkmark-backend/internal/handlers"
	"linkmark-backend/internal/middleware"
)

func New(
	jwtAuth *middleware.JWTAuth,
	userHandler *handlers.UserHandler,
	contentHandler *handlers.ContentHandler,
	tagHandler *handlers.TagHandler,
	articleHandler *handlers.ArticleHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Registration/login rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── User Routes ────
		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authLimiter.Middleware)
				r.Post("/", userHandler.Create)
				r.Post("/login", userHandler.Login)
			})

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Get("/me", userHandler.GetMe)
			})
		})

		// ──── Content Routes ────
		r.Route("/contents", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/analyze", contentHandler.Analyze)
			r.Post("/save", contentHandler.Save)
			r.Delete("/{content_id}", contentHandler.Delete)
			r.Get("/user/{user_id}/all", contentHandler.ListAll)
			r.Get("/user/{user_id}/sub", contentHandler.ListByType)
			r.Get("/bookmarks/user/{user_id}", contentHandler.ListBookmarked)
			r.Post("/{content_id}/bookmark", contentHandler.ToggleBookmark)
			r.Put("/{content_id}/user/{user_id}", contentHandler.Edit)
			r.Get("/user/{user_id}/search/{keyword}", contentHandler.Search)
		})

		// ──── Tag Routes ────
		r.Route("/tags", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/user/{user_id}", tagHandler.List)
			r.Get("/{tag_id}/contents", tagHandler.ListContents)
			r.Post("/user/{user_id}", tagHandler.Create)
			r.Put("/{tag_id}/user/{user_id}", tagHandler.Update)
			r.Delete("/user/{user_id}", tagHandler.Delete)
		})

		// ──── Article Routes ────
		r.Route("/articles", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", articleHandler.Create)
			r.Get("/", articleHandler.List)
			r.Delete("/{article_id}", articleHandler.Delete)
			r.Post("/{article_id}/download", articleHandler.Download)
		})
	})

	return r
}
