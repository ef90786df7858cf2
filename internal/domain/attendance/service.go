package attendance

import (
	"context"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// CheckIn opens the principal's session for the given date
	CheckIn(ctx context.Context, principal user.Principal, req CheckInRequest) (AttendanceResponse, error)

	// CheckOut closes the principal's session for the given date
	CheckOut(ctx context.Context, principal user.Principal, req CheckOutRequest) (AttendanceResponse, error)

	// GetByDate returns the principal's record for a date
	GetByDate(ctx context.Context, principal user.Principal, date string) (AttendanceResponse, error)

	// ListMine lists the principal's own records
	ListMine(ctx context.Context, principal user.Principal, filter AttendanceFilter) (ListAttendanceResponse, error)

	// ListAll lists records across users (admin/hr)
	ListAll(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
}
