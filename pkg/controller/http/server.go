// Package http exposes the scheduling engine over a JSON REST API.
// Every /api route resolves the calling user from a header into a role
// scope before touching the engine; responses never contain data the
// scope does not cover.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/slotline-io/slotline/pkg/metrics"
	"github.com/slotline-io/slotline/pkg/usecase"
	"github.com/slotline-io/slotline/pkg/utils/logging"
	"github.com/slotline-io/slotline/pkg/utils/safe"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

type Options func(*Server)

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		safe.Write(r.Context(), w, []byte("OK"))
	})
	r.Get("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}).ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Use(identityMiddleware(uc))

		r.Get("/calendar", calendarHandler(uc))
		r.Get("/capacity", capacityHandler(uc))
		r.Get("/availability/{employeeID}", availabilityHandler(uc))
		r.Get("/occupancy", occupancyHandler(uc))

		r.Route("/assignments", func(r chi.Router) {
			r.Post("/", createAssignmentHandler(uc))
			r.Post("/bulk", bulkCreateHandler(uc))
			r.Get("/validate", validatePlacementHandler(uc))
			r.Post("/{assignmentID}/move", moveAssignmentHandler(uc))
			r.Delete("/{assignmentID}", removeAssignmentHandler(uc))
		})

		r.Route("/absences", func(r chi.Router) {
			r.Post("/", requestAbsenceHandler(uc))
			r.Get("/{employeeID}", listAbsencesHandler(uc))
			r.Post("/{absenceID}/approve", approveAbsenceHandler(uc))
			r.Post("/{absenceID}/reject", rejectAbsenceHandler(uc))
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
