package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/grams-api/internal/api/shared"
	"github.com/phrazzld/grams-api/internal/domain"
	"github.com/phrazzld/grams-api/internal/platform/logger"
	"github.com/phrazzld/grams-api/internal/redact"
	"github.com/phrazzld/grams-api/internal/service/auth"
)

// Sign-in redirect target and the alert that accompanies it.
const (
	SignInPath  = "/users/sign_in"
	SignInAlert = "You need to sign in or sign up before continuing."
)

// UserLookup reports whether the user behind a token still exists.
type UserLookup interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// AuthMiddleware resolves the signed-in user from the session cookie or a
// Bearer token.
type AuthMiddleware struct {
	jwtService auth.JWTService
	users      UserLookup
}

// NewAuthMiddleware creates an AuthMiddleware. When users is non-nil, tokens
// for users that no longer exist are treated as signed out.
func NewAuthMiddleware(jwtService auth.JWTService, users UserLookup) *AuthMiddleware {
	if jwtService == nil {
		panic("jwt service cannot be nil")
	}
	return &AuthMiddleware{jwtService: jwtService, users: users}
}

// LoadUser puts the signed-in user's ID in the request context when the
// request carries a valid access token. Requests without one, or with an
// invalid one, continue anonymously.
func (m *AuthMiddleware) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		token, malformed := shared.SessionToken(r)
		if malformed {
			log.Debug("ignoring malformed authorization header")
		}
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrExpiredToken) && !errors.Is(err, auth.ErrInvalidToken) &&
				!errors.Is(err, auth.ErrWrongTokenType) && !errors.Is(err, auth.ErrTokenNotYetValid) {
				log.Error("failed to validate token", slog.String("error", redact.Error(err)))
			} else {
				log.Debug("ignoring unusable access token", slog.String("error", err.Error()))
			}
			next.ServeHTTP(w, r)
			return
		}

		if m.users != nil {
			if _, err := m.users.GetUser(r.Context(), claims.UserID); err != nil {
				log.Debug("token user not available",
					slog.String("user_id", claims.UserID.String()),
					slog.String("error", redact.Error(err)))
				next.ServeHTTP(w, r)
				return
			}
		}

		ctx := shared.WithUserID(r.Context(), claims.UserID)
		ctx = logger.WithLogger(ctx, log.With(slog.String("user_id", claims.UserID.String())))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSignIn redirects anonymous requests to the sign-in page. It must
// run after LoadUser.
func (m *AuthMiddleware) RequireSignIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.UserIDFromContext(r.Context()); !ok {
			logger.FromContext(r.Context()).Debug("redirecting anonymous request to sign in",
				slog.String("path", r.URL.Path))
			shared.RespondWithRedirect(w, r, shared.RedirectResponse{
				Location: SignInPath,
				Alert:    SignInAlert,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserID extracts the signed-in user's ID from the request context.
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	return shared.UserIDFromContext(r.Context())
}
