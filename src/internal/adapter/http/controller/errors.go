package controller

import (
	"errors"
	"net/http"

	"github.com/api-sage/bank-one-one/src/internal/commons"
	"github.com/api-sage/bank-one-one/src/internal/domain"
)

// statusForError maps service errors onto HTTP statuses. Order matters:
// account lookups are transfer rejections too but answer 404.
func statusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, commons.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUserNotVerified):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrRecordNotFound),
		errors.Is(err, domain.ErrInvalidToken):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest
	case domain.IsTransferRejection(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
