package service

import (
	"errors"
	"net/http"

	commonerrors "github.com/AlibekovAA/bloglist/backend/internal/common/errors"
	"github.com/AlibekovAA/bloglist/backend/internal/post/repository"
)

var (
	ErrPostNotFound = repository.ErrPostNotFound

	ErrValidation = commonerrors.NewDomainError(
		"VALIDATION_FAILED",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"validation failed",
	)

	// ErrUnauthorized covers a well-formed token whose user no longer exists.
	ErrUnauthorized = commonerrors.NewDomainError(
		"UNKNOWN_USER",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid token",
	)

	ErrForbidden = commonerrors.NewDomainError(
		"FORBIDDEN",
		commonerrors.CategoryForbidden,
		http.StatusForbidden,
		"only the creator can delete a post",
	)

	ErrServiceUnavailable = commonerrors.NewDomainError(
		"SERVICE_UNAVAILABLE",
		commonerrors.CategoryExternal,
		http.StatusServiceUnavailable,
		"service temporarily unavailable",
	)
)

// mapRepositoryError keeps domain errors as they are and wraps everything
// else as an internal error so no driver detail reaches the client.
func mapRepositoryError(err error, code, message string) error {
	if errors.Is(err, commonerrors.ErrCircuitOpen) {
		return ErrServiceUnavailable.WithCause(err)
	}
	if commonerrors.IsDomainError(err) {
		return err
	}
	return commonerrors.NewDomainError(
		code,
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		message,
	).WithCause(err)
}
