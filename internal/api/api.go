package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/carebook-io/carebook/internal/auth"
	"github.com/carebook-io/carebook/internal/config"
	"github.com/carebook-io/carebook/internal/models"
	"github.com/carebook-io/carebook/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type AppointmentRepository interface {
	ListAppointments(ctx context.Context) ([]*models.Appointment, error)
	ListAppointmentsByUser(ctx context.Context, userID string) ([]*models.Appointment, error)
	CreateAppointment(ctx context.Context, f models.AppointmentFields) (*models.Appointment, error)
	GetAppointment(ctx context.Context, id int64) (*models.Appointment, error)
	UpdateAppointment(ctx context.Context, id int64, f models.AppointmentFields) (*models.Appointment, error)
	DeleteAppointment(ctx context.Context, id int64) error
}

type DoctorRepository interface {
	ListDoctors(ctx context.Context) ([]*models.Doctor, error)
	CreateDoctor(ctx context.Context, f models.DoctorFields) (*models.Doctor, error)
	GetDoctor(ctx context.Context, id int64) (*models.Doctor, error)
	UpdateDoctor(ctx context.Context, id int64, f models.DoctorFields) (*models.Doctor, error)
	DeleteDoctor(ctx context.Context, id int64) error
}

type UserRepository interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type Api struct {
	Config config.Config
	Router *chi.Mux

	appointments AppointmentRepository
	doctors      DoctorRepository
	users        UserRepository
	credentials  auth.UserStore
	gate         *auth.Gate
	limiter      *RateLimiter
	metrics      *Metrics
}

func NewApi(cfg config.Config, st *store.Store) (*Api, error) {
	if cfg.APIPort == 0 {
		return nil, errors.New("Must have at least a port to start API")
	}
	if cfg.Auth.TokenSecret == "" {
		return nil, errors.New("a token secret is required")
	}

	tokens := auth.NewTokenService(st, cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	gate, err := auth.NewGate(st, tokens, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}

	api := &Api{
		Config:       cfg,
		Router:       chi.NewRouter(),
		appointments: st,
		doctors:      st,
		users:        st,
		credentials:  st,
		gate:         gate,
		limiter:      NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		metrics:      NewMetrics(),
	}
	api.setupRoutes()
	return api, nil
}

func (api *Api) setupRoutes() {
	r := api.Router

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   api.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.metrics.Middleware)

	r.Get("/heartbeat", api.Heartbeat)
	r.Handle("/metrics", api.metrics.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("The route %s could not be found.", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, fmt.Sprintf("The %s method is not supported for route %s.", r.Method, r.URL.Path))
	})

	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(api.limiter.Middleware)
		r.Post("/register", api.RegisterHandler)
		r.Post("/login", api.LoginHandler)
	})
	r.Get("/doctors", api.ListDoctorsHandler)
	r.Get("/doctors/{id}", api.GetDoctorHandler)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(api.gate.Tokens(), api.credentials))

		r.Post("/logout", api.LogoutHandler)
		r.Get("/profile", api.ProfileHandler)
		r.Post("/update", api.UpdateProfileHandler)
		r.Get("/user", api.CurrentUserHandler)

		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", api.ListAppointmentsHandler)
			r.Post("/", api.CreateAppointmentHandler)
			r.Get("/user/{userID}", api.ListUserAppointmentsHandler)
			r.Get("/{id}", api.GetAppointmentHandler)
			r.Put("/{id}", api.UpdateAppointmentHandler)
			r.Patch("/{id}", api.UpdateAppointmentHandler)
			r.Delete("/{id}", api.DeleteAppointmentHandler)
		})

		r.Post("/doctors", api.CreateDoctorHandler)
		r.Put("/doctors/{id}", api.UpdateDoctorHandler)
		r.Patch("/doctors/{id}", api.UpdateDoctorHandler)
		r.Delete("/doctors/{id}", api.DeleteDoctorHandler)

		r.Get("/users", api.ListUsersHandler)
		r.Delete("/users/{id}", api.DeleteUserHandler)
	})
}

// Serve listens on the configured port until ctx is cancelled, then shuts
// down gracefully.
func (api *Api) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", api.Config.APIPort),
		Handler:           api.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[API] Starting API server on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("[API] Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (api *Api) Heartbeat(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
