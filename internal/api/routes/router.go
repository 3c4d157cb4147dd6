package routes

import (
	"net/http"

	"github.com/healthfinder/backend/internal/api/handlers"
	"github.com/healthfinder/backend/internal/api/middleware"
	"github.com/healthfinder/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	clinicHandler *handlers.ClinicHandler
	reviewHandler *handlers.ReviewHandler

	readinessGate  *middleware.ReadinessGate
	metrics        *observability.Metrics
	allowedOrigins []string
}

// NewRouter creates a new router
func NewRouter(
	clinicHandler *handlers.ClinicHandler,
	reviewHandler *handlers.ReviewHandler,
	readinessGate *middleware.ReadinessGate,
	metrics *observability.Metrics,
	allowedOrigins []string,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		clinicHandler:  clinicHandler,
		reviewHandler:  reviewHandler,
		readinessGate:  readinessGate,
		metrics:        metrics,
		allowedOrigins: allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("API for health clinics in Sweden. See the repository README for documentation.")); err != nil {
			return
		}
	})

	// Health check endpoint, exempt from the readiness gate
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Clinic endpoints. The literal /clinics/reviews pattern is more
	// specific than /clinics/{id}, so the all-reviews listing wins there.
	r.mux.HandleFunc("GET /clinics", r.clinicHandler.ListClinics)
	r.mux.HandleFunc("GET /clinics/reviews", r.reviewHandler.ListAllReviews)
	r.mux.HandleFunc("GET /clinics/{id}", r.clinicHandler.GetClinic)

	// Review endpoints
	r.mux.HandleFunc("POST /clinics/{id}/review", r.reviewHandler.SubmitReview)
	r.mux.HandleFunc("GET /clinics/{id}/reviews", r.reviewHandler.ListClinicReviews)

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS is outermost so even 503s from the readiness gate carry CORS
	// headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	if r.readinessGate != nil {
		handler = r.readinessGate.Middleware(handler)
	}

	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
