package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/grams-api/internal/api/shared"
	"github.com/phrazzld/grams-api/internal/domain"
	"github.com/phrazzld/grams-api/internal/platform/logger"
	"github.com/phrazzld/grams-api/internal/service"
	"github.com/phrazzld/grams-api/internal/service/auth"
	"github.com/phrazzld/grams-api/internal/store"
)

// ErrParameterMissing is returned when a required top-level parameter such
// as "gram" is absent or empty.
var ErrParameterMissing = errors.New("param is missing or the value is empty")

// ErrInvalidQueryParam is returned when a query parameter cannot be parsed.
var ErrInvalidQueryParam = errors.New("invalid query parameter")

// ErrInvalidCredentials is returned when an email and password do not match.
var ErrInvalidCredentials = errors.New("invalid email or password")

// MapErrorToStatusCode maps internal errors to HTTP status codes.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, ErrParameterMissing),
		errors.Is(err, ErrInvalidQueryParam),
		errors.Is(err, shared.ErrMalformedBody):
		return http.StatusBadRequest

	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrGramNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, service.ErrOwnerMissing),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err that never
// includes internal details.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"
	case errors.Is(err, ErrParameterMissing):
		return err.Error()
	case errors.Is(err, ErrInvalidQueryParam):
		return "Invalid query parameter"
	case errors.Is(err, shared.ErrMalformedBody):
		return "Invalid request format"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid Email or password."
	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"
	case errors.Is(err, service.ErrGramNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrNotFound):
		return "Not Found"
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, store.ErrDuplicate):
		return "Email has already been taken"
	case errors.Is(err, service.ErrOwnerMissing),
		errors.Is(err, store.ErrInvalidEntity):
		return "User must exist"
	case errors.Is(err, domain.ErrValidation):
		return "Validation failed"
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the error response for err. fallback replaces the
// safe message for 5xx responses when non-empty.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status >= http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// respondNotFound renders the 404 page.
func respondNotFound(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Debug("resource not found",
		slog.String("path", r.URL.Path))
	shared.RespondWithErrorAndLog(w, r, http.StatusNotFound, "Not Found", err)
}
