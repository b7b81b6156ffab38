package handlers

import (
	"errors"
	"net/http"

	"github.com/upb/rbac-dashboard/services"
	"github.com/upb/rbac-dashboard/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses. Handlers stay
// thin: they surface typed errors and this function owns the translation.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	switch {
	case services.IsNotFoundError(err):
		_ = utils.WriteNotFound(w, userMessage(err))

	case services.IsValidationError(err):
		_ = utils.WriteBadRequest(w, userMessage(err), services.GetErrorDetails(err))

	case services.IsUnauthorizedError(err):
		_ = utils.WriteUnauthorized(w, userMessage(err))

	case services.IsForbiddenError(err):
		_ = utils.WriteForbidden(w, userMessage(err))

	case services.IsRateLimitError(err):
		_ = utils.WriteTooManyRequests(w, userMessage(err))

	default:
		// Internal and unknown errors are logged with detail but answered
		// with a generic message.
		logger.Error("internal server error", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Server error.")
	}
}

// userMessage extracts the user-facing message of a domain error
func userMessage(err error) string {
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}
