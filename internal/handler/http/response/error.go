package response

import (
	"errors"
	"net/http"

	"github.com/wakatta-dev/workbot/internal/domain/attendance"
	"github.com/wakatta-dev/workbot/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
