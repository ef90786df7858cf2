package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, jwt.ErrInvalidClaims),
		errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, user.ErrPrincipalMissing):
		Unauthorized(w, "Invalid access token")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")

	// Leave domain errors
	case errors.Is(err, leave.ErrInvalidRange),
		errors.Is(err, leave.ErrSpanTooLong):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrOverlapConflict),
		errors.Is(err, leave.ErrInvalidState):
		Conflict(w, err.Error())
	case errors.Is(err, leave.ErrSelfApproval),
		errors.Is(err, leave.ErrForbidden):
		Forbidden(w, err.Error())

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrAlreadyCheckedOut),
		errors.Is(err, attendance.ErrNoCheckIn):
		Conflict(w, err.Error())

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
