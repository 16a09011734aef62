package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"recipehub/apperr"
	"recipehub/auth"
	"recipehub/globals"
	"recipehub/utils"
)

// Verifier checks a raw token and returns its claims.
type Verifier interface {
	Verify(raw string) (*auth.Claims, error)
}

// RevocationChecker answers whether a token was logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, raw string) (bool, error)
}

// Authenticate builds the bearer-token guard. The revocation list is
// consulted before the signature so a logged-out token is reported as such
// even after it expires.
func Authenticate(verifier Verifier, revocations RevocationChecker) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			raw := auth.ExtractBearer(r.Header.Get("Authorization"))
			if raw == "" {
				utils.RespondWithError(w, r, apperr.Unauthorized("Authentication token missing"))
				return
			}

			revoked, err := revocations.IsRevoked(r.Context(), raw)
			if err != nil {
				utils.RespondWithError(w, r, apperr.Internal("Failed to check token", err))
				return
			}
			if revoked {
				utils.RespondWithError(w, r, apperr.Unauthorized("Token has been invalidated"))
				return
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				utils.RespondWithError(w, r, &apperr.Error{
					Kind: apperr.KindUnauthorized, Message: "Invalid or expired token", Err: err,
				})
				return
			}

			ctx := context.WithValue(r.Context(), globals.UserIDKey, claims.UserID)
			next(w, r.WithContext(ctx), ps)
		}
	}
}

// SecurityHeaders applies a set of recommended HTTP security headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logging tags each request with an id and logs method, path, status and
// duration once it completes.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		ctx := context.WithValue(r.Context(), globals.RequestIDKey, id)
		next.ServeHTTP(rec, r.WithContext(ctx))

		entry := logrus.WithFields(logrus.Fields{
			"requestId": id,
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    rec.status,
			"remote":    r.RemoteAddr,
			"duration":  time.Since(start).String(),
		})
		if rec.status >= http.StatusInternalServerError {
			entry.Warn("request")
		} else {
			entry.Info("request")
		}
	})
}
