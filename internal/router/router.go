package router

import (
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/calyxhealth/hospital-records/internal/auth"
	"github.com/calyxhealth/hospital-records/internal/httputil"
	"github.com/calyxhealth/hospital-records/internal/patient"
	"github.com/calyxhealth/hospital-records/internal/user"
	"github.com/calyxhealth/hospital-records/pkg/utilities"
)

const serverVersion = "1.0.0"

type Config struct {
	// DevMode controls whether panic details are echoed to clients.
	DevMode     bool
	CORSOrigins []string
}

// ConfigFromEnv reads router config from environment variables.
func ConfigFromEnv() Config {
	origins := []string{"*"}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
	}
	return Config{
		DevMode:     os.Getenv("APP_ENV") == "dev",
		CORSOrigins: origins,
	}
}

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware returns a middleware that logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
				"request_id", lrw.Header().Get("X-Request-Id"),
			)
		})
	}
}

// RequestIDMiddleware stamps every response with a snowflake correlation ID.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-Id")
			if id == "" {
				id = utilities.NewRequestID()
			}
			w.Header().Set("X-Request-Id", id)
			next.ServeHTTP(w, r)
		})
	}
}

// RecoverMiddleware converts handler panics into 500 responses. The panic
// message is echoed only in dev mode.
func RecoverMiddleware(logger *zap.SugaredLogger, devMode bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					stack := make([]byte, 8*1024)
					stack = stack[:runtime.Stack(stack, false)]
					logger.Errorw("panic recovered",
						"panic", rec,
						"path", r.URL.Path,
						"stack", string(stack),
					)
					msg := "Something went wrong!"
					if devMode {
						if err, ok := rec.(error); ok {
							msg = err.Error()
						}
					}
					httputil.RespondError(w, http.StatusInternalServerError, msg)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux.
func RegisterRoutes(logger *zap.SugaredLogger, db *sqlx.DB, tokens *auth.TokenService, cfg Config) http.Handler {
	mux := http.NewServeMux()

	requireAuth := auth.RequireAuth(tokens)
	providerOnly := auth.RequireRoles(auth.RoleProvider)

	// server banner
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Hospital API Server is running",
			"version": serverVersion,
		})
	})

	// health, with a live store ping
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			logger.Warnw("health check db ping failed", "err", err)
			httputil.RespondError(w, http.StatusInternalServerError, "Database connection failed")
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"message":   "Server and database are healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// auth routes
	userHandler := user.NewHandler(db, tokens, logger)
	mux.HandleFunc("POST /api/auth/register", userHandler.Register)
	mux.HandleFunc("POST /api/auth/login", userHandler.Login)
	mux.Handle("GET /api/auth/whoMI", requireAuth(http.HandlerFunc(userHandler.WhoMI)))

	// patient routes
	patientHandler := patient.NewHandler(db, logger)
	mux.Handle("GET /api/patients", requireAuth(providerOnly(http.HandlerFunc(patientHandler.List))))
	mux.Handle("POST /api/patients", requireAuth(providerOnly(http.HandlerFunc(patientHandler.Create))))
	mux.Handle("GET /api/patients/{user_id}", requireAuth(http.HandlerFunc(patientHandler.Get)))
	mux.Handle("PUT /api/patients/{user_id}", requireAuth(http.HandlerFunc(patientHandler.Update)))

	// unknown routes
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondError(w, http.StatusNotFound, "Route not found")
	})

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	})

	// outermost first: logging sees the final status, recovery runs closest
	// to the handlers
	handler := RecoverMiddleware(logger, cfg.DevMode)(mux)
	handler = corsHandler(handler)
	handler = SecurityHeadersMiddleware()(handler)
	handler = RequestIDMiddleware()(handler)
	handler = LoggingMiddleware(logger)(handler)
	return handler
}
