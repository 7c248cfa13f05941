package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/taskmaster-be/internal/api/handlers"
	"github.com/isdelr/taskmaster-be/internal/auth"
	"github.com/isdelr/taskmaster-be/internal/metrics"
	"github.com/isdelr/taskmaster-be/internal/monitoring"
	"github.com/isdelr/taskmaster-be/internal/services"
	"github.com/isdelr/taskmaster-be/internal/websocket"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	DB            *sql.DB
	Hub           *websocket.Hub
	Metrics       *metrics.Metrics
	Stats         *monitoring.StatUpdater
	Users         services.UserServiceProvider
	Auth          services.AuthServiceProvider
	Tasks         services.TaskServiceProvider
	Categories    services.CategoryServiceProvider
	Locations     services.LocationServiceProvider
	Devices       services.DeviceServiceProvider
	Notifications services.NotificationServiceProvider

	AllowedOrigins []string
	LoginRateLimit int // per minute per IP; 0 disables
	SecureCookies  bool
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(deps.Users, deps.Auth, deps.SecureCookies)
	taskHandler := handlers.NewTaskHandler(deps.Tasks)
	categoryHandler := handlers.NewCategoryHandler(deps.Categories)
	locationHandler := handlers.NewLocationHandler(deps.Locations)
	deviceHandler := handlers.NewDeviceHandler(deps.Devices)
	notificationHandler := handlers.NewNotificationHandler(deps.Notifications)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.AllowedOrigins)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Stats)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Welcome to TaskMaster API"}`))
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	requireAuth := auth.Middleware(deps.Auth)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.Get)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Register)
			r.Group(func(r chi.Router) {
				if deps.LoginRateLimit > 0 {
					r.Use(newIPRateLimiter(deps.LoginRateLimit).Middleware)
				}
				r.Post("/login", userHandler.Login)
			})

			r.Route("/me", func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/", userHandler.GetMe)
				r.Patch("/", userHandler.UpdateMe)
				r.Delete("/", userHandler.DeleteMe)

				r.Post("/devices", deviceHandler.Register)
				r.Get("/devices", deviceHandler.GetAll)
				r.Delete("/devices/{device_token}", deviceHandler.Delete)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			// WebSocket connection endpoint
			r.Get("/ws", wsHandler.Serve)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.GetAll)
				r.Post("/", taskHandler.Create)
				r.Get("/stats", taskHandler.Stats)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", taskHandler.Get)
					r.Put("/", taskHandler.Update)
					r.Patch("/", taskHandler.Update)
					r.Delete("/", taskHandler.Delete)
				})
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", categoryHandler.GetAll)
				r.Post("/", categoryHandler.Create)
				r.Post("/init", categoryHandler.InitDefaults)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", categoryHandler.Get)
					r.Put("/", categoryHandler.Update)
					r.Patch("/", categoryHandler.Update)
					r.Delete("/", categoryHandler.Delete)
				})
			})

			r.Route("/locations", func(r chi.Router) {
				r.Get("/", locationHandler.GetAll)
				r.Post("/", locationHandler.Create)
				r.Get("/nearby", locationHandler.Nearby)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", locationHandler.Get)
					r.Put("/", locationHandler.Update)
					r.Patch("/", locationHandler.Update)
					r.Delete("/", locationHandler.Delete)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.GetRecent)
				r.Post("/{id}/read", notificationHandler.MarkRead)
			})
		})
	})

	return r
}
