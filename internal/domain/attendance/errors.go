package attendance

import "errors"

// Attendance domain errors
var (
	ErrAlreadyCheckedIn   = errors.New("you have already checked in for this date")
	ErrNoCheckIn          = errors.New("you have not checked in for this date")
	ErrAlreadyCheckedOut  = errors.New("you have already checked out for this date")
	ErrAttendanceNotFound = errors.New("attendance record not found")
)
