package api

import (
	"github.com/avorn/posts-be/internal/api/handlers"
	"github.com/avorn/posts-be/internal/auth"
	"github.com/avorn/posts-be/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	authService services.AuthServiceProvider,
	userService services.UserServiceProvider,
	postService services.PostServiceProvider,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Initialize handlers
	helpHandler := handlers.NewHelpHandler()
	userHandler := handlers.NewUserHandler(userService)
	postHandler := handlers.NewPostHandler(postService)

	r.Get("/help/", helpHandler.Get)

	// User management is admin only.
	r.Route("/user", func(r chi.Router) {
		r.Use(auth.RequireAdmin(authService))
		r.Post("/create/", userHandler.Create)
		r.Get("/get/all/", userHandler.GetAll)
		r.Get("/get/{id}", userHandler.Get)
		r.Put("/update/{id}", userHandler.Update)
		r.Delete("/delete/{id}", userHandler.Delete)
	})

	// Posts require authentication; mutations are owner-scoped in the
	// service layer.
	r.Route("/post", func(r chi.Router) {
		r.Use(auth.RequireUser(authService))
		r.Post("/create/", postHandler.Create)
		r.Get("/get/all/", postHandler.GetAll)
		r.Get("/get/{id}", postHandler.Get)
		r.Put("/update/{id}", postHandler.Update)
		r.Delete("/delete/{id}", postHandler.Delete)
	})

	return r
}
