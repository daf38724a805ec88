package handlers

import (
	"errors"
	"strings"

	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/service"
	apperrors "github.com/spec-kit/identity-service/pkg/util"
)

// mapServiceError turns workflow errors into API errors. prefix is prepended to
// validation messages, e.g. "Password change failed!".
func mapServiceError(err error, prefix string) error {
	var validationErr *service.ValidationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &validationErr):
		message := strings.TrimSpace(prefix + " " + validationErr.Error())
		return apperrors.NewValidationError(message, map[string]any{"problems": validationErr.Problems})
	case errors.Is(err, service.ErrAccountExists):
		return apperrors.NewConflict("User already exists!", nil)
	case errors.Is(err, service.ErrAccountNotFound):
		return apperrors.NewNotFound("user", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperrors.NewUnauthorized(err)
	case errors.Is(err, service.ErrEmailNotConfirmed):
		return apperrors.NewBadRequest("Email is not confirmed!")
	case errors.Is(err, service.ErrInvalidConfirmation):
		return apperrors.NewBadRequest("Email confirmation failed.")
	case errors.Is(err, service.ErrInvalidRole), errors.Is(err, auth.ErrInvalidInput):
		return apperrors.NewValidationError(err.Error(), nil)
	default:
		return apperrors.NewInternalError(err)
	}
}
