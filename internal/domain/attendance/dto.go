package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/validator"
)

const maxMetadataLength = 255

type CheckInRequest struct {
	Date         string   `json:"date"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	LocationName *string  `json:"location_name,omitempty"`
	DeviceType   *string  `json:"device_type,omitempty"`
	PhotoURL     *string  `json:"photo_url,omitempty"`
}

func (r *CheckInRequest) Validate() error {
	errs := validateDate(r.Date)

	if r.Latitude != nil && !validator.IsValidLatitude(*r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude != nil && !validator.IsValidLongitude(*r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	for field, value := range map[string]*string{
		"location_name": r.LocationName,
		"device_type":   r.DeviceType,
		"photo_url":     r.PhotoURL,
	} {
		if value != nil && len(*value) > maxMetadataLength {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " must not exceed 255 characters",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CheckOutRequest struct {
	Date string `json:"date"`
}

func (r *CheckOutRequest) Validate() error {
	return ValidateDate(r.Date)
}

// AttendanceFilter narrows attendance listings. Empty fields are ignored.
type AttendanceFilter struct {
	UserID string `json:"user_id,omitempty"`
	From   string `json:"from,omitempty"` // YYYY-MM-DD, inclusive
	To     string `json:"to,omitempty"`   // YYYY-MM-DD, inclusive
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.UserID != "" && !validator.IsValidUUID(f.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id must be a valid UUID",
		})
	}

	from, fromOK := validator.IsValidDate(f.From)
	if f.From != "" && !fromOK {
		errs = append(errs, validator.ValidationError{
			Field:   "from",
			Message: "from must be in YYYY-MM-DD format",
		})
	}

	to, toOK := validator.IsValidDate(f.To)
	if f.To != "" && !toOK {
		errs = append(errs, validator.ValidationError{
			Field:   "to",
			Message: "to must be in YYYY-MM-DD format",
		})
	}

	if fromOK && toOK && to.Before(from) {
		errs = append(errs, validator.ValidationError{
			Field:   "to",
			Message: "to must not be before from",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateDate checks a YYYY-MM-DD attendance day, reporting failures
// against the "date" field.
func ValidateDate(date string) error {
	if errs := validateDate(date); len(errs) > 0 {
		return errs
	}
	return nil
}

func validateDate(date string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if validator.IsEmpty(date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, ok := validator.IsValidDate(date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}
	return errs
}

type AttendanceResponse struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Date           string     `json:"date"`
	CheckIn        time.Time  `json:"check_in"`
	CheckOut       *time.Time `json:"check_out,omitempty"`
	WorkedMinutes  int        `json:"worked_minutes"`
	ShortByMinutes int        `json:"short_by_minutes"`
	SalaryCut      bool       `json:"salary_cut"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	LocationName   *string    `json:"location_name,omitempty"`
	DeviceType     *string    `json:"device_type,omitempty"`
	PhotoURL       *string    `json:"photo_url,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func NewAttendanceResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:             a.ID,
		UserID:         a.UserID,
		Date:           a.Date,
		CheckIn:        a.CheckIn,
		CheckOut:       a.CheckOut,
		WorkedMinutes:  a.WorkedMinutes,
		ShortByMinutes: a.ShortByMinutes,
		SalaryCut:      a.SalaryCut,
		Latitude:       a.Latitude,
		Longitude:      a.Longitude,
		LocationName:   a.LocationName,
		DeviceType:     a.DeviceType,
		PhotoURL:       a.PhotoURL,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Attendances []AttendanceResponse `json:"attendances"`
}
