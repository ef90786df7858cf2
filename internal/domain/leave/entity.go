package leave

import (
	"time"
)

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending  LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected LeaveRequestStatus = "rejected"
)

// IsTerminal reports whether no further transition is defined out of s.
func (s LeaveRequestStatus) IsTerminal() bool {
	return s == LeaveRequestStatusApproved || s == LeaveRequestStatusRejected
}

// LeaveRequest entity
type LeaveRequest struct {
	ID          string
	RequesterID string

	// Inclusive, calendar-day granularity (UTC midnight)
	StartDate time.Time
	EndDate   time.Time

	Reason string

	Status     LeaveRequestStatus
	ApproverID *string
	DecidedAt  *time.Time

	TotalDays  int
	PaidDays   int
	UnpaidDays int
	SalaryCut  bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DaysByYear decomposes the request's date range into per-year day sets.
func (r LeaveRequest) DaysByYear() (DaysByYear, error) {
	return DecomposeByYear(r.StartDate, r.EndDate)
}

// ApplyAllocation copies the computed day fields onto the request.
func (r *LeaveRequest) ApplyAllocation(a Allocation) {
	r.TotalDays = a.TotalDays
	r.PaidDays = a.PaidDays
	r.UnpaidDays = a.UnpaidDays
	r.SalaryCut = a.SalaryCut
}

// YearAllocation is the paid/unpaid split of one calendar year of a request.
type YearAllocation struct {
	Year          int
	RequestedDays int
	PaidDays      int
	UnpaidDays    int
}

// Allocation is the allocator's output for a single request.
type Allocation struct {
	TotalDays  int
	PaidDays   int
	UnpaidDays int
	SalaryCut  bool
	Years      []YearAllocation
}

// YearlySummary aggregates one requester's leave days within a target year.
type YearlySummary struct {
	RequesterID        string `json:"requester_id"`
	ApprovedPaidDays   int    `json:"approved_paid_days"`
	ApprovedUnpaidDays int    `json:"approved_unpaid_days"`
	PendingPaidDays    int    `json:"pending_paid_days"`
	PendingUnpaidDays  int    `json:"pending_unpaid_days"`
}
