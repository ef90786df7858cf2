package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const leaveRequestColumns = `
	id, requester_id, start_date, end_date, reason, status, approver_id, decided_at,
	total_days, paid_days, unpaid_days, salary_cut, created_at, updated_at
`

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			id, requester_id, start_date, end_date, reason, status,
			total_days, paid_days, unpaid_days, salary_cut,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $11
		)
	`

	_, err := q.Exec(ctx, query,
		request.ID, request.RequesterID, request.StartDate, request.EndDate, request.Reason, request.Status,
		request.TotalDays, request.PaidDays, request.UnpaidDays, request.SalaryCut,
		request.CreatedAt,
	)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("insert leave request: %w", err)
	}

	request.UpdatedAt = request.CreatedAt
	return request, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests WHERE id = $1`

	request, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidInput(err) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("get leave request: %w", err)
	}
	return request, nil
}

// ListByRequester implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListByRequester(ctx context.Context, requesterID string) ([]leave.LeaveRequest, error) {
	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests
		WHERE requester_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, query, requesterID)
}

// ListActiveByRequester implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListActiveByRequester(ctx context.Context, requesterID string, excludeID string) ([]leave.LeaveRequest, error) {
	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests
		WHERE requester_id = $1
			AND status <> 'rejected'
			AND ($2::uuid IS NULL OR id <> $2::uuid)
		ORDER BY start_date
	`
	return r.list(ctx, query, requesterID, nullableID(excludeID))
}

// ListByStatus implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListByStatus(ctx context.Context, status leave.LeaveRequestStatus) ([]leave.LeaveRequest, error) {
	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests
		WHERE status = $1
		ORDER BY created_at, id
	`
	return r.list(ctx, query, status)
}

// ListOverlappingYear implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListOverlappingYear(ctx context.Context, year int) ([]leave.LeaveRequest, error) {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests
		WHERE status <> 'rejected'
			AND start_date <= $2
			AND end_date >= $1
		ORDER BY requester_id, start_date
	`
	return r.list(ctx, query, yearStart, yearEnd)
}

// CheckOverlapping implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) CheckOverlapping(ctx context.Context, requesterID string, startDate, endDate time.Time, excludeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM leave_requests
			WHERE requester_id = $1
				AND status <> 'rejected'
				AND start_date <= $3
				AND end_date >= $2
				AND ($4::uuid IS NULL OR id <> $4::uuid)
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, requesterID, startDate, endDate, nullableID(excludeID)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlapping leave: %w", err)
	}
	return exists, nil
}

// UpdateDetails implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) UpdateDetails(ctx context.Context, request leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET start_date = $2, end_date = $3, reason = $4,
			total_days = $5, paid_days = $6, unpaid_days = $7, salary_cut = $8,
			updated_at = $9
		WHERE id = $1 AND status = 'pending'
	`

	tag, err := q.Exec(ctx, query,
		request.ID, request.StartDate, request.EndDate, request.Reason,
		request.TotalDays, request.PaidDays, request.UnpaidDays, request.SalaryCut,
		request.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update leave request: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return leave.ErrInvalidState
	}
	return nil
}

// UpdateStatus implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) UpdateStatus(ctx context.Context, id string, status leave.LeaveRequestStatus, approverID string, decidedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $2, approver_id = $3, decided_at = $4, updated_at = $4
		WHERE id = $1 AND status = 'pending'
	`

	tag, err := q.Exec(ctx, query, id, status, approverID, decidedAt)
	if err != nil {
		return fmt.Errorf("update leave request status: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return leave.ErrInvalidState
	}
	return nil
}

// Delete implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM leave_requests
		WHERE id = $1 AND status <> 'approved'
	`

	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete leave request: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return leave.ErrInvalidState
	}
	return nil
}

// LockRequester implements leave.LeaveRequestRepository. The advisory lock is
// released when the surrounding transaction ends.
func (r *leaveRequestRepositoryImpl) LockRequester(ctx context.Context, requesterID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, requesterID); err != nil {
		return fmt.Errorf("lock requester: %w", err)
	}
	return nil
}

func (r *leaveRequestRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		request, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan leave request: %w", err)
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID,
		&lr.RequesterID,
		&lr.StartDate,
		&lr.EndDate,
		&lr.Reason,
		&lr.Status,
		&lr.ApproverID,
		&lr.DecidedAt,
		&lr.TotalDays,
		&lr.PaidDays,
		&lr.UnpaidDays,
		&lr.SalaryCut,
		&lr.CreatedAt,
		&lr.UpdatedAt,
	)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	lr.StartDate = leave.NormalizeDate(lr.StartDate)
	lr.EndDate = leave.NormalizeDate(lr.EndDate)
	return lr, nil
}
