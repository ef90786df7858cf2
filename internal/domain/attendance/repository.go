package attendance

import (
	"context"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Create inserts a new session. A second session for the same user and
	// date is rejected with ErrAlreadyCheckedIn by the storage unique index.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetByUserAndDate returns ErrAttendanceNotFound when absent.
	GetByUserAndDate(ctx context.Context, userID string, date string) (Attendance, error)

	// CloseSession stores the check-out facts only if the session is still
	// open and returns ErrAlreadyCheckedOut otherwise.
	CloseSession(ctx context.Context, id string, session Session) (Attendance, error)

	// List returns records matching the filter, newest date first.
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, error)
}
