package leave

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/validator"
)

const maxReasonLength = 1000

var decisionStatuses = []string{
	string(LeaveRequestStatusApproved),
	string(LeaveRequestStatusRejected),
}

type CreateLeaveRequestRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

func (r *CreateLeaveRequestRequest) Validate() error {
	errs := validateLeaveFields(r.StartDate, r.EndDate, r.Reason)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateLeaveRequestRequest struct {
	ID        string `json:"-"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

func (r *UpdateLeaveRequestRequest) Validate() error {
	errs := validateLeaveFields(r.StartDate, r.EndDate, r.Reason)
	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DecideLeaveRequestRequest carries a reviewer's decision. Status is matched
// case-insensitively against "approved" and "rejected".
type DecideLeaveRequestRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

func (r *DecideLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if !validator.IsInSlice(string(r.Decision()), decisionStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: approved, rejected",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Decision returns the normalised target status.
func (r *DecideLeaveRequestRequest) Decision() LeaveRequestStatus {
	return LeaveRequestStatus(strings.ToLower(strings.TrimSpace(r.Status)))
}

func validateLeaveFields(startDate, endDate, reason string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	var start, end time.Time
	var startOK, endOK bool

	if validator.IsEmpty(startDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date is required",
		})
	} else if start, startOK = validator.IsValidDate(startDate); !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	if validator.IsEmpty(endDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date is required",
		})
	} else if end, endOK = validator.IsValidDate(endDate); !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if startOK && endOK && DayCount(start, end) > MaxSpanDays {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "leave may not span more than 366 days",
		})
	}

	if validator.IsEmpty(reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	} else if len(reason) > maxReasonLength {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 1000 characters",
		})
	}

	return errs
}

type LeaveRequestResponse struct {
	ID          string     `json:"id"`
	RequesterID string     `json:"requester_id"`
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	TotalDays   int        `json:"total_days"`
	PaidDays    int        `json:"paid_days"`
	UnpaidDays  int        `json:"unpaid_days"`
	SalaryCut   bool       `json:"salary_cut"`
	ApproverID  *string    `json:"approver_id,omitempty"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewLeaveRequestResponse maps the entity to its API shape.
func NewLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:          r.ID,
		RequesterID: r.RequesterID,
		StartDate:   DayKey(r.StartDate),
		EndDate:     DayKey(r.EndDate),
		Reason:      r.Reason,
		Status:      string(r.Status),
		TotalDays:   r.TotalDays,
		PaidDays:    r.PaidDays,
		UnpaidDays:  r.UnpaidDays,
		SalaryCut:   r.SalaryCut,
		ApproverID:  r.ApproverID,
		DecidedAt:   r.DecidedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type ListLeaveRequestResponse struct {
	TotalCount    int64                  `json:"total_count"`
	LeaveRequests []LeaveRequestResponse `json:"leave_requests"`
}

type YearlySummaryResponse struct {
	Year      int             `json:"year"`
	Summaries []YearlySummary `json:"summaries"`
}
