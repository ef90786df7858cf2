package leave

import (
	"context"
	"time"
)

// LeaveRequestRepository - interface for leave_requests table.
// Methods that mutate a request only touch rows still in the expected state
// and report ErrInvalidState otherwise, so callers get compare-and-swap
// semantics without a separate read.
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)

	// ListByRequester returns every request of the requester, newest first.
	ListByRequester(ctx context.Context, requesterID string) ([]LeaveRequest, error)
	// ListActiveByRequester returns the requester's non-rejected requests,
	// skipping excludeID when it is not empty.
	ListActiveByRequester(ctx context.Context, requesterID string, excludeID string) ([]LeaveRequest, error)
	ListByStatus(ctx context.Context, status LeaveRequestStatus) ([]LeaveRequest, error)
	// ListOverlappingYear returns non-rejected requests intersecting the
	// calendar year.
	ListOverlappingYear(ctx context.Context, year int) ([]LeaveRequest, error)

	CheckOverlapping(ctx context.Context, requesterID string, startDate, endDate time.Time, excludeID string) (bool, error)

	// UpdateDetails rewrites dates, reason and day fields of a pending request.
	UpdateDetails(ctx context.Context, request LeaveRequest) error
	// UpdateStatus moves a pending request to a terminal status.
	UpdateStatus(ctx context.Context, id string, status LeaveRequestStatus, approverID string, decidedAt time.Time) error
	// Delete removes a request that is not approved.
	Delete(ctx context.Context, id string) error

	// LockRequester serialises writers for one requester until the current
	// transaction ends.
	LockRequester(ctx context.Context, requesterID string) error
}
