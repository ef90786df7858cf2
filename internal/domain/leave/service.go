package leave

import (
	"context"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
)

type LeaveService interface {
	// Request lifecycle
	CreateLeaveRequest(ctx context.Context, principal user.Principal, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)
	UpdateLeaveRequest(ctx context.Context, principal user.Principal, req UpdateLeaveRequestRequest) (LeaveRequestResponse, error)
	DeleteLeaveRequest(ctx context.Context, principal user.Principal, requestID string) error
	DecideLeaveRequest(ctx context.Context, principal user.Principal, req DecideLeaveRequestRequest) (LeaveRequestResponse, error)

	// Queries
	GetLeaveRequest(ctx context.Context, principal user.Principal, requestID string) (LeaveRequestResponse, error)
	ListMyLeaveRequests(ctx context.Context, principal user.Principal) (ListLeaveRequestResponse, error)
	ListPendingLeaveRequests(ctx context.Context, principal user.Principal) (ListLeaveRequestResponse, error)

	// Reporting
	GetYearlySummary(ctx context.Context, year int) (YearlySummaryResponse, error)
}
