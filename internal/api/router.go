package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/devlohani99/sehat-scheduler/internal/scheduling"
)

type RouterConfig struct {
	Service   *scheduling.Service
	Directory *scheduling.Directory
	PgPool    *pgxpool.Pool
	Redis     *redis.Client
	Env       string
	Version   string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// Health endpoints; skipped when no infrastructure is wired (tests)
	if cfg.PgPool != nil && cfg.Redis != nil {
		health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
		r.Get("/health/live", health.Liveness)
		r.Get("/health/ready", health.Readiness)
	}

	// Directory endpoints
	r.Post("/hospitals", createHospitalHandler(cfg.Directory))
	r.Get("/hospitals", listHospitalsHandler(cfg.Directory))
	r.Get("/hospitals/{id}", getHospitalHandler(cfg.Directory))
	r.Put("/hospitals/{id}", updateHospitalHandler(cfg.Directory))
	r.Get("/hospitals/{id}/doctors", listHospitalDoctorsHandler(cfg.Directory))

	r.Post("/doctors", createDoctorHandler(cfg.Directory))
	r.Get("/doctors", listDoctorsHandler(cfg.Directory))
	r.Get("/doctors/{id}", getDoctorHandler(cfg.Directory))
	r.Put("/doctors/{id}", updateDoctorHandler(cfg.Directory))
	r.Delete("/doctors/{id}", deactivateDoctorHandler(cfg.Directory))

	r.Post("/users", createUserHandler(cfg.Directory))
	r.Get("/users/{id}", getUserHandler(cfg.Directory))

	// Scheduling endpoints
	r.Get("/doctors/{id}/slots", listAvailableSlotsHandler(cfg.Service))
	r.Get("/doctors/{id}/appointments", listDoctorAppointmentsHandler(cfg.Service))
	r.Get("/users/{id}/appointments", listUserAppointmentsHandler(cfg.Service))

	r.Post("/appointments", createAppointmentHandler(cfg.Service))
	r.Get("/appointments", listAllAppointmentsHandler(cfg.Service))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Service))
	r.Patch("/appointments/{id}/status", updateStatusHandler(cfg.Service))
	r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Service))

	r.Post("/appointments/{id}/call/start", startCallHandler(cfg.Service))
	r.Post("/appointments/{id}/call/end", endCallHandler(cfg.Service))
	r.Get("/appointments/{id}/call", callStateHandler(cfg.Service))

	return r
}
