package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"turnero/internal/auth"
	"turnero/internal/service"
)

const adminLoginPath = "/api/admin/login"

type RouterDeps struct {
	Booking        *service.BookingService
	Admin          *service.AdminService
	AdminAuth      service.AdminAuthService
	Logger         *zap.Logger
	AllowedOrigins []string
	BookingLimiter *RateLimiter

	// TrustedProxyHops is how many reverse proxies append to X-Forwarded-For.
	TrustedProxyHops int
}

func NewRouter(d RouterDeps) http.Handler {
	userHandler := NewUserAppointmentHandler(d.Booking, d.Logger)
	adminHandler := NewAdminHandler(d.Admin, d.Logger)
	authHandler := NewAdminAuthHandler(d.AdminAuth, d.Logger)

	limiter := d.BookingLimiter
	if limiter == nil {
		limiter = NewRateLimiter(0, d.TrustedProxyHops)
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeErrorMessage(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeErrorMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/health", Health).Methods(http.MethodGet)

	// Public endpoints
	r.HandleFunc("/api/availability", userHandler.GetAvailability).Methods(http.MethodGet)
	r.Handle("/api/appointments", limiter.Middleware(http.HandlerFunc(userHandler.CreateAppointment))).Methods(http.MethodPost)

	// Admin endpoints (protected when credentials are configured)
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware(d.AdminAuth, adminLoginPath))
	admin.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	admin.HandleFunc("/appointments", adminHandler.ListAppointments).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/{id}", adminHandler.UpdateAppointmentStatus).Methods(http.MethodPut)
	admin.HandleFunc("/availability", adminHandler.SetAvailability).Methods(http.MethodPost)
	admin.HandleFunc("/availability/{year}/{month}/{day}", adminHandler.GetAvailability).Methods(http.MethodGet)

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", requestIDHeader}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(d.Logger)),
		handlers.PrintRecoveryStack(true),
	)

	var h http.Handler = r
	h = LimitBody(h)
	h = cors(h)
	h = recovery(h)
	h = AccessLog(d.Logger, d.TrustedProxyHops)(h)
	h = WithRequestID(h)
	return h
}
