package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/grams-api/internal/api/middleware"
	"github.com/phrazzld/grams-api/internal/api/shared"
	"github.com/phrazzld/grams-api/internal/config"
	"github.com/phrazzld/grams-api/internal/domain"
	"github.com/phrazzld/grams-api/internal/platform/logger"
	"github.com/phrazzld/grams-api/internal/service"
	"github.com/phrazzld/grams-api/internal/service/auth"
)

// Flash messages for account actions.
const (
	SignedInNotice  = "Signed in successfully."
	SignedUpNotice  = "Welcome! You have signed up successfully."
	SignedOutNotice = "Signed out successfully."
)

// AuthHandler handles sign-in, registration, sign-out and token refresh.
type AuthHandler struct {
	users            service.UserService
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	tokenLifetime    time.Duration
	cookieSecure     bool
	timeFunc         func() time.Time
	logger           *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	users service.UserService,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
	cfg config.AuthConfig,
	logger *slog.Logger,
) *AuthHandler {
	if users == nil {
		panic("user service cannot be nil")
	}
	if jwtService == nil {
		panic("jwt service cannot be nil")
	}
	if passwordVerifier == nil {
		panic("password verifier cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:            users,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
		tokenLifetime:    time.Duration(cfg.TokenLifetimeMinutes) * time.Minute,
		cookieSecure:     cfg.CookieSecure,
		timeFunc:         time.Now,
		logger:           logger.With(slog.String("component", "auth_handler")),
	}
}

// SignInForm handles GET /users/sign_in.
func (h *AuthHandler) SignInForm(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, AccountFormResponse{
		Action: middleware.SignInPath,
		Method: http.MethodPost,
	})
}

// SignUpForm handles GET /users/sign_up.
func (h *AuthHandler) SignUpForm(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, AccountFormResponse{
		Action: "/users",
		Method: http.MethodPost,
	})
}

// SignIn handles POST /users/sign_in.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	params, ok := decodeUserParams(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), params.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			err = ErrInvalidCredentials
		}
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, params.Password); err != nil {
		HandleAPIError(w, r, ErrInvalidCredentials, "")
		return
	}

	h.respondWithSession(w, r, http.StatusOK, user.ID, SignedInNotice)
}

// Register handles POST /users.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	params, ok := decodeUserParams(w, r)
	if !ok {
		return
	}

	user, err := h.users.CreateUser(r.Context(), params.Email, params.Password)
	if err != nil {
		var ve domain.ValidationErrors
		if errors.As(err, &ve) {
			shared.RespondWithJSON(w, r, http.StatusUnprocessableEntity, UserValidationErrorResponse{
				ValidationErrorResponse: shared.NewValidationErrorResponse(r, "Validation failed", ve.Fields()),
				User:                    UserFormValues{Email: params.Email},
			})
			return
		}
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	h.respondWithSession(w, r, http.StatusCreated, user.ID, SignedUpNotice)
}

// SignOut handles DELETE /users/sign_out.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	shared.ClearSessionCookie(w, h.cookieSecure)
	shared.RespondWithRedirect(w, r, shared.RedirectResponse{Location: RootPath, Notice: SignedOutNotice})
}

// Refresh handles POST /users/token/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RefreshTokenRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, fmt.Errorf("%w: refresh_token", ErrParameterMissing), "")
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if _, err := h.users.GetUser(r.Context(), claims.UserID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			err = auth.ErrInvalidRefreshToken
		}
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	access, refresh, expiresAt, err := h.issueTokens(r.Context(), claims.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}

	log.Debug("token pair refreshed", slog.String("user_id", claims.UserID.String()))
	shared.SetSessionCookie(w, access, expiresAt, h.cookieSecure)
	shared.RespondWithJSON(w, r, http.StatusOK, RefreshTokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt.Format(time.RFC3339),
	})
}

func (h *AuthHandler) respondWithSession(w http.ResponseWriter, r *http.Request, status int, userID uuid.UUID, notice string) {
	access, refresh, expiresAt, err := h.issueTokens(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}

	shared.SetSessionCookie(w, access, expiresAt, h.cookieSecure)
	shared.RespondWithJSON(w, r, status, AuthResponse{
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt.Format(time.RFC3339),
		Notice:       notice,
	})
}

func (h *AuthHandler) issueTokens(ctx context.Context, userID uuid.UUID) (string, string, time.Time, error) {
	access, err := h.jwtService.GenerateToken(ctx, userID)
	if err != nil {
		return "", "", time.Time{}, err
	}
	refresh, err := h.jwtService.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return access, refresh, h.timeFunc().Add(h.tokenLifetime).UTC(), nil
}

func decodeUserParams(w http.ResponseWriter, r *http.Request) (*UserParams, bool) {
	var req UserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	return req.User, true
}
