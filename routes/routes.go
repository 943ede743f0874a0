package routes

import (
	"time"

	"github.com/aryngazy/fest-system/auth"
	"github.com/aryngazy/fest-system/handlers"
	"github.com/aryngazy/fest-system/middleware"
	"github.com/aryngazy/fest-system/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	codec *auth.CookieCodec,
	sessions *services.SessionService,
	pages *handlers.PageHandler,
	authHandler *handlers.AuthHandler,
	registrationHandler *handlers.RegistrationHandler,
	userHandler *handlers.UserHandler,
	eventHandler *handlers.EventHandler,
	adminHandler *handlers.AdminHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	// Жёсткая верхняя граница на запрос: ни один поход в базу или сторадж
	// не живёт дольше минуты.
	router.Use(chiMiddleware.Timeout(time.Minute))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.LoadSession(codec, sessions))

	// Публичные страницы
	router.Get("/", pages.Home)
	router.Get("/login", pages.LoginPage)
	router.Get("/support", pages.Support)
	router.Get("/terms-of-service", pages.Terms)
	router.Get("/privacy-policy", pages.Privacy)
	router.Get("/cancellation", pages.Cancellation)

	// OAuth
	router.Route("/auth", func(r chi.Router) {
		r.Get("/{provider}/login", authHandler.Login)
		r.Get("/{provider}/callback", authHandler.Callback)
		r.Get("/logout", authHandler.Logout)
	})

	// Страницы только для вошедших
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePageUser(codec, sessions))
		r.Get("/register", pages.RegisterPage)
		r.Get("/user/events", pages.MyEventsPage)
	})

	// JSON API
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/events", eventHandler.List)
		r.Get("/events/{slug}", eventHandler.Get)

		// Регистрация сама отвечает 200 {error} анониму — без middleware.
		r.Post("/register", registrationHandler.Register)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAPIUser())
			r.Get("/me", userHandler.Me)
			r.Get("/me/registrations", userHandler.MyRegistrations)
		})
	})

	// Админка: для посторонних защищённые маршруты отвечают 404.
	router.Route("/admin", func(r chi.Router) {
		r.Post("/login", adminHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin())
			r.Get("/stats", adminHandler.Stats)
			r.Get("/live", adminHandler.Live)
			r.Get("/{registrationID}/{action}", adminHandler.Review)
		})
	})
}
