// internal/api/middleware.go
package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"math"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codr1/CabinDesk/internal/api/apiutil"
	"github.com/codr1/CabinDesk/internal/api/authz"
	"github.com/codr1/CabinDesk/internal/ratelimit"
)

type Middleware func(http.Handler) http.Handler

type requestIDKey struct{}

func ChainMiddleware(h http.Handler, middleware ...Middleware) http.Handler {
	for _, m := range middleware {
		h = m(h)
	}
	return h
}

// RequestIDFromContext returns the ID WithRequestID assigned, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create response wrapper to capture status code
		wrapped := wrapResponseWriter(w)

		next.ServeHTTP(wrapped, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.status).
			Dur("duration", time.Since(start)).
			Str("request_id", RequestIDFromContext(r.Context())).
			Msg("Request completed")
	})
}

func WithRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger := log.Ctx(r.Context())
				// Log the full stack trace
				stack := debug.Stack()
				logger.Error().
					Interface("error", err).
					Str("stack", string(stack)).
					Msg("Panic recovered")

				_ = apiutil.WriteJSON(w, http.StatusInternalServerError, apiutil.ErrorResponse{Message: "Internal Server Error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()

		// Create a logger with the request ID
		logger := log.With().Str("request_id", requestID).Logger()

		// Add both the request ID and logger to context
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		ctx = logger.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func WithContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Set default content type if not set
		if r.Header.Get("Accept") == "" {
			r.Header.Set("Accept", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// AuthConfig configures WithAuth.
type AuthConfig struct {
	Secret string
	// Limiter locks out clients after repeated bad tokens. Nil disables lockout.
	Limiter    *ratelimit.Limiter
	TrustProxy bool
}

// WithAuth establishes the staff identity for requests carrying
// "Authorization: Bearer <secret>". Other requests continue anonymous.
func WithAuth(cfg AuthConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ip := ratelimit.GetClientIP(r, cfg.TrustProxy)
			if cfg.Limiter != nil {
				if result := cfg.Limiter.Check(ip); !result.Allowed {
					log.Ctx(r.Context()).Warn().
						Str("ip", ip).
						Str("reason", result.Reason).
						Dur("retry_after", result.RetryAfter).
						Msg("Staff authentication locked out")
					w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(result.RetryAfter.Seconds()))))
					_ = apiutil.WriteJSON(w, http.StatusTooManyRequests, apiutil.ErrorResponse{Message: "Too many failed attempts"})
					return
				}
			}

			if cfg.Secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(cfg.Secret)) != 1 {
				log.Ctx(r.Context()).Warn().Str("ip", ip).Msg("Rejected bearer token")
				if cfg.Limiter != nil && cfg.Limiter.RecordFailure(ip) {
					ratelimit.LogLockout(ip, r.URL.Path)
				}
				next.ServeHTTP(w, r)
				return
			}
			if cfg.Limiter != nil {
				cfg.Limiter.Reset(ip)
			}

			ctx := authz.ContextWithUser(r.Context(), &authz.AuthUser{
				ID:          "staff",
				IsStaff:     true,
				Role:        authz.RoleStaff,
				SessionType: "token",
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// WithStaffAuth guards /api/ routes. Everything else passes through.
func WithStaffAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		logger := log.Ctx(r.Context())
		user := authz.UserFromContext(r.Context())
		if err := authz.RequireRole(r.Context(), authz.RoleStaff); err != nil {
			switch {
			case errors.Is(err, authz.ErrUnauthenticated):
				logger.Warn().Str("path", r.URL.Path).Msg("Staff access denied: unauthenticated")
				_ = apiutil.WriteJSON(w, http.StatusUnauthorized, apiutil.ErrorResponse{Message: "Unauthorized"})
			case errors.Is(err, authz.ErrForbidden):
				logEvent := logger.Warn()
				if user != nil {
					logEvent = logEvent.Str("user_id", user.ID)
				}
				logEvent.Msg("Staff access denied: forbidden")
				_ = apiutil.WriteJSON(w, http.StatusForbidden, apiutil.ErrorResponse{Message: "Forbidden"})
			default:
				logger.Error().Err(err).Msg("Staff access denied: error")
				_ = apiutil.WriteJSON(w, http.StatusInternalServerError, apiutil.ErrorResponse{Message: "Failed to authorize request"})
			}
			return
		}

		next.ServeHTTP(w, r)
	})
}

// responseWriter wrapper to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
