// Package middlewarectx contains the HTTP middleware of the booking API: the bearer
// gate that puts the caller's identity into the request context, CORS, per-client
// rate limiting, panic recovery and request metrics.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/beauty-booking/internal/http/response"
	"github.com/magabrotheeeer/beauty-booking/internal/lib/jwt"
	"github.com/magabrotheeeer/beauty-booking/internal/lib/sl"
	"github.com/magabrotheeeer/beauty-booking/internal/metrics"
)

// Key is the type of request context keys set by this package.
type Key string

const (
	// UserUID holds the authenticated user id.
	UserUID Key = "user_uid"
	// Name holds the user name when the token carries it.
	Name Key = "name"
	// Email holds the user email when the token carries it.
	Email Key = "email"
)

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*jwt.CustomClaims, error)
}

// JWTMiddleware rejects requests without a valid "Bearer <token>" Authorization header
// with 401 and otherwise attaches the token claims to the request context.
func JWTMiddleware(auth TokenValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tokenStr, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				metrics.IncTokenRejected(metrics.ReasonMissing)
				log.Debug("missing or malformed authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(response.MsgNoToken))
				return
			}

			claims, err := auth.ValidateToken(r.Context(), tokenStr)
			if err != nil {
				log.Info("token rejected", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(response.MsgInvalidToken))
				return
			}

			ctx := context.WithValue(r.Context(), UserUID, claims.UserUID)
			ctx = context.WithValue(ctx, Name, claims.Name)
			ctx = context.WithValue(ctx, Email, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// UserUIDFromContext returns the id stored by JWTMiddleware.
func UserUIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(UserUID).(string)
	return uid, ok && uid != ""
}
