package attendance

import (
	"time"
)

// Attendance is one user's session for one calendar day.
type Attendance struct {
	ID     string
	UserID string

	// Day-key (YYYY-MM-DD) in the caller's local convention
	Date string

	CheckIn  time.Time
	CheckOut *time.Time

	WorkedMinutes  int
	ShortByMinutes int
	SalaryCut      bool

	// Check-in metadata, all optional
	Latitude     *float64
	Longitude    *float64
	LocationName *string
	DeviceType   *string
	PhotoURL     *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCheckedOut reports whether the session has been closed.
func (a Attendance) IsCheckedOut() bool {
	return a.CheckOut != nil
}

// Session is the outcome of closing an attendance session.
type Session struct {
	CheckOut       time.Time
	WorkedMinutes  int
	ShortByMinutes int
	SalaryCut      bool
}

// CloseSession computes the check-out facts for a session opened at checkIn
// and closed at now. A now earlier than checkIn is treated as zero elapsed
// time so that CheckOut never precedes CheckIn.
func CloseSession(checkIn, now time.Time, minDailyWorkMinutes int) Session {
	checkOut := now
	if checkOut.Before(checkIn) {
		checkOut = checkIn
	}

	worked := int(checkOut.Sub(checkIn) / time.Minute)
	short := minDailyWorkMinutes - worked
	if short < 0 {
		short = 0
	}

	return Session{
		CheckOut:       checkOut,
		WorkedMinutes:  worked,
		ShortByMinutes: short,
		SalaryCut:      short > 0,
	}
}
