package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/clock"
)

type LeaveServiceImpl struct {
	leave.LeaveRequestRepository
	directory      user.DirectoryRepository
	requestService *RequestService
	reporter       *Reporter
	clock          clock.Clock
}

func NewLeaveService(
	leaveRequestRepository leave.LeaveRequestRepository,
	directory user.DirectoryRepository,
	requestService *RequestService,
	reporter *Reporter,
	clk clock.Clock,
) leave.LeaveService {
	return &LeaveServiceImpl{
		LeaveRequestRepository: leaveRequestRepository,
		directory:              directory,
		requestService:         requestService,
		reporter:               reporter,
		clock:                  clk,
	}
}

// CreateLeaveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) CreateLeaveRequest(ctx context.Context, principal user.Principal, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	startDate, endDate, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	created, err := l.requestService.Create(ctx, principal, startDate, endDate, req.Reason)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return leave.NewLeaveRequestResponse(created), nil
}

// UpdateLeaveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) UpdateLeaveRequest(ctx context.Context, principal user.Principal, req leave.UpdateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	startDate, endDate, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	updated, err := l.requestService.Edit(ctx, req.ID, principal, startDate, endDate, req.Reason)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to update leave request: %w", err)
	}
	return leave.NewLeaveRequestResponse(updated), nil
}

// DeleteLeaveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) DeleteLeaveRequest(ctx context.Context, principal user.Principal, requestID string) error {
	if err := l.requestService.Delete(ctx, requestID, principal); err != nil {
		return fmt.Errorf("failed to delete leave request: %w", err)
	}
	return nil
}

// DecideLeaveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) DecideLeaveRequest(ctx context.Context, principal user.Principal, req leave.DecideLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	decided, err := l.requestService.Decide(ctx, req.ID, principal, req.Decision())
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to decide leave request: %w", err)
	}
	return leave.NewLeaveRequestResponse(decided), nil
}

// GetLeaveRequest implements leave.LeaveService. Requests the principal
// neither owns nor may decide are reported as not found.
func (l *LeaveServiceImpl) GetLeaveRequest(ctx context.Context, principal user.Principal, requestID string) (leave.LeaveRequestResponse, error) {
	request, err := l.requestService.find(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if request.RequesterID != principal.UserID {
		err := l.requestService.authorizeDecision(ctx, principal, request)
		if errors.Is(err, leave.ErrForbidden) {
			return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
		}
		if err != nil {
			return leave.LeaveRequestResponse{}, err
		}
	}

	return leave.NewLeaveRequestResponse(request), nil
}

// ListMyLeaveRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ListMyLeaveRequests(ctx context.Context, principal user.Principal) (leave.ListLeaveRequestResponse, error) {
	requests, err := l.LeaveRequestRepository.ListByRequester(ctx, principal.UserID)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return newListResponse(requests), nil
}

// ListPendingLeaveRequests implements leave.LeaveService. Only requests the
// principal is allowed to decide are returned.
func (l *LeaveServiceImpl) ListPendingLeaveRequests(ctx context.Context, principal user.Principal) (leave.ListLeaveRequestResponse, error) {
	pending, err := l.LeaveRequestRepository.ListByStatus(ctx, leave.LeaveRequestStatusPending)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list pending leave requests: %w", err)
	}

	directReports := make(map[string]bool)
	if principal.Role == user.RoleManager {
		reports, err := l.directory.ListDirectReports(ctx, principal.UserID)
		if err != nil {
			return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list direct reports: %w", err)
		}
		for _, report := range reports {
			directReports[report.ID] = true
		}
	}

	roles := make(map[string]user.Role)
	var decidable []leave.LeaveRequest
	for _, request := range pending {
		if request.RequesterID == principal.UserID {
			continue
		}

		role, ok := roles[request.RequesterID]
		if !ok {
			role, err = l.directory.GetRole(ctx, request.RequesterID)
			if err != nil {
				return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to get requester role: %w", err)
			}
			roles[request.RequesterID] = role
		}

		if leave.CanDecide(principal.Role, role, directReports[request.RequesterID]) {
			decidable = append(decidable, request)
		}
	}

	return newListResponse(decidable), nil
}

// GetYearlySummary implements leave.LeaveService. A zero year means the
// current year.
func (l *LeaveServiceImpl) GetYearlySummary(ctx context.Context, year int) (leave.YearlySummaryResponse, error) {
	if year == 0 {
		year = l.clock.Now().Year()
	}

	summaries, err := l.reporter.YearlySummary(ctx, year)
	if err != nil {
		return leave.YearlySummaryResponse{}, fmt.Errorf("failed to build yearly summary: %w", err)
	}
	return leave.YearlySummaryResponse{Year: year, Summaries: summaries}, nil
}

func parseRange(start, end string) (startDate, endDate time.Time, err error) {
	startDate, err = leave.ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date: %w", err)
	}
	endDate, err = leave.ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date: %w", err)
	}
	return startDate, endDate, nil
}

func newListResponse(requests []leave.LeaveRequest) leave.ListLeaveRequestResponse {
	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, leave.NewLeaveRequestResponse(request))
	}
	return leave.ListLeaveRequestResponse{
		TotalCount:    int64(len(responses)),
		LeaveRequests: responses,
	}
}
