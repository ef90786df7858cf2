package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/validator"
	"github.com/google/uuid"
)

// RequestService owns the leave request lifecycle:
// pending -> approved | rejected, with no transition out of a terminal state.
type RequestService struct {
	tx        database.Transactor
	requests  leave.LeaveRequestRepository
	directory user.DirectoryRepository
	allocator *Allocator
	clock     clock.Clock
}

func NewRequestService(
	tx database.Transactor,
	requests leave.LeaveRequestRepository,
	directory user.DirectoryRepository,
	allocator *Allocator,
	clk clock.Clock,
) *RequestService {
	return &RequestService{
		tx:        tx,
		requests:  requests,
		directory: directory,
		allocator: allocator,
		clock:     clk,
	}
}

// Create submits a new pending request for the principal. The overlap check
// and the insert run in one transaction serialised per requester.
func (s *RequestService) Create(ctx context.Context, principal user.Principal, startDate, endDate time.Time, reason string) (leave.LeaveRequest, error) {
	startDate, endDate = leave.NormalizeDate(startDate), leave.NormalizeDate(endDate)
	if err := leave.ValidateSpan(startDate, endDate); err != nil {
		return leave.LeaveRequest{}, err
	}
	requested, err := leave.DecomposeByYear(startDate, endDate)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("generate leave request id: %w", err)
	}

	var created leave.LeaveRequest
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.requests.LockRequester(ctx, principal.UserID); err != nil {
			return err
		}

		overlapping, err := s.requests.CheckOverlapping(ctx, principal.UserID, startDate, endDate, "")
		if err != nil {
			return err
		}
		if overlapping {
			return leave.ErrOverlapConflict
		}

		allocation, err := s.allocate(ctx, principal, requested, "")
		if err != nil {
			return err
		}

		now := s.clock.Now()
		request := leave.LeaveRequest{
			ID:          id.String(),
			RequesterID: principal.UserID,
			StartDate:   startDate,
			EndDate:     endDate,
			Reason:      reason,
			Status:      leave.LeaveRequestStatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		request.ApplyAllocation(allocation)

		created, err = s.requests.Create(ctx, request)
		return err
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	return created, nil
}

// Edit replaces the dates and reason of the principal's own pending request
// and recomputes its allocation against the requester's other requests.
func (s *RequestService) Edit(ctx context.Context, requestID string, principal user.Principal, startDate, endDate time.Time, reason string) (leave.LeaveRequest, error) {
	startDate, endDate = leave.NormalizeDate(startDate), leave.NormalizeDate(endDate)

	var updated leave.LeaveRequest
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.requests.LockRequester(ctx, principal.UserID); err != nil {
			return err
		}

		request, err := s.getOwned(ctx, requestID, principal)
		if err != nil {
			return err
		}
		if request.Status != leave.LeaveRequestStatusPending {
			return leave.ErrInvalidState
		}

		if err := leave.ValidateSpan(startDate, endDate); err != nil {
			return err
		}
		requested, err := leave.DecomposeByYear(startDate, endDate)
		if err != nil {
			return err
		}

		overlapping, err := s.requests.CheckOverlapping(ctx, principal.UserID, startDate, endDate, request.ID)
		if err != nil {
			return err
		}
		if overlapping {
			return leave.ErrOverlapConflict
		}

		allocation, err := s.allocate(ctx, principal, requested, request.ID)
		if err != nil {
			return err
		}

		request.StartDate = startDate
		request.EndDate = endDate
		request.Reason = reason
		request.UpdatedAt = s.clock.Now()
		request.ApplyAllocation(allocation)

		if err := s.requests.UpdateDetails(ctx, request); err != nil {
			return err
		}
		updated = request
		return nil
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	return updated, nil
}

// Delete removes the principal's own request unless it has been approved.
func (s *RequestService) Delete(ctx context.Context, requestID string, principal user.Principal) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.requests.LockRequester(ctx, principal.UserID); err != nil {
			return err
		}

		request, err := s.getOwned(ctx, requestID, principal)
		if err != nil {
			return err
		}
		if request.Status == leave.LeaveRequestStatusApproved {
			return leave.ErrInvalidState
		}

		return s.requests.Delete(ctx, request.ID)
	})
}

// Decide moves a pending request to approved or rejected on behalf of the
// principal. The status and approver are written once, by a conditional
// update, so of two concurrent deciders exactly one wins.
func (s *RequestService) Decide(ctx context.Context, requestID string, principal user.Principal, decision leave.LeaveRequestStatus) (leave.LeaveRequest, error) {
	if !decision.IsTerminal() {
		return leave.LeaveRequest{}, leave.ErrInvalidState
	}

	request, err := s.find(ctx, requestID)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	if err := s.authorizeDecision(ctx, principal, request); err != nil {
		return leave.LeaveRequest{}, err
	}

	if request.Status != leave.LeaveRequestStatusPending {
		return leave.LeaveRequest{}, leave.ErrInvalidState
	}

	now := s.clock.Now()
	if err := s.requests.UpdateStatus(ctx, request.ID, decision, principal.UserID, now); err != nil {
		return leave.LeaveRequest{}, err
	}

	approverID := principal.UserID
	request.Status = decision
	request.ApproverID = &approverID
	request.DecidedAt = &now
	request.UpdatedAt = now
	return request, nil
}

// authorizeDecision returns ErrSelfApproval or ErrForbidden when the
// principal may not decide request.
func (s *RequestService) authorizeDecision(ctx context.Context, principal user.Principal, request leave.LeaveRequest) error {
	if request.RequesterID == principal.UserID {
		return leave.ErrSelfApproval
	}

	requesterRole, err := s.directory.GetRole(ctx, request.RequesterID)
	if err != nil {
		return fmt.Errorf("get requester role: %w", err)
	}

	isDirectManager := false
	if principal.Role == user.RoleManager {
		isDirectManager, err = s.directory.IsDirectManagerOf(ctx, principal.UserID, request.RequesterID)
		if err != nil {
			return fmt.Errorf("check reporting line: %w", err)
		}
	}

	if !leave.CanDecide(principal.Role, requesterRole, isDirectManager) {
		return leave.ErrForbidden
	}
	return nil
}

// getOwned hides requests of other users behind ErrLeaveRequestNotFound.
// find loads a request by ID. An ID that is not a UUID cannot name a stored
// request and is reported as not found.
func (s *RequestService) find(ctx context.Context, requestID string) (leave.LeaveRequest, error) {
	if !validator.IsValidUUID(requestID) {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return s.requests.GetByID(ctx, requestID)
}

func (s *RequestService) getOwned(ctx context.Context, requestID string, principal user.Principal) (leave.LeaveRequest, error) {
	request, err := s.find(ctx, requestID)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if request.RequesterID != principal.UserID {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return request, nil
}

// allocate runs the allocator against the union of the days of every other
// non-rejected request of the principal.
func (s *RequestService) allocate(ctx context.Context, principal user.Principal, requested leave.DaysByYear, excludeID string) (leave.Allocation, error) {
	others, err := s.requests.ListActiveByRequester(ctx, principal.UserID, excludeID)
	if err != nil {
		return leave.Allocation{}, err
	}

	consumed := make(leave.DaysByYear)
	for _, other := range others {
		days, err := other.DaysByYear()
		if err != nil {
			return leave.Allocation{}, fmt.Errorf("decompose leave request %s: %w", other.ID, err)
		}
		consumed.Union(days)
	}

	return s.allocator.Allocate(principal.Role, requested, consumed), nil
}
