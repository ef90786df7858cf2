package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/database"
)

const leaveRequestColumns = `
	id, requester_id, start_date, end_date, reason, status, approver_id, decided_at,
	total_days, paid_days, unpaid_days, salary_cut, created_at, updated_at
`

type leaveRequestRepositoryImpl struct {
	db *database.SQLiteDB
}

func NewLeaveRequestRepository(db *database.SQLiteDB) leave.LeaveRequestRepository {
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
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := formatTime(request.CreatedAt)
	_, err := q.ExecContext(ctx, query,
		request.ID, request.RequesterID, leave.DayKey(request.StartDate), leave.DayKey(request.EndDate),
		request.Reason, string(request.Status),
		request.TotalDays, request.PaidDays, request.UnpaidDays, request.SalaryCut,
		createdAt, createdAt,
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

	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests WHERE id = ?`

	request, err := scanLeaveRequest(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
		WHERE requester_id = ?
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, query, requesterID)
}

// ListActiveByRequester implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListActiveByRequester(ctx context.Context, requesterID string, excludeID string) ([]leave.LeaveRequest, error) {
	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests
		WHERE requester_id = ?
			AND status <> 'rejected'
			AND id <> ?
		ORDER BY start_date
	`
	return r.list(ctx, query, requesterID, excludeID)
}

// ListByStatus implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListByStatus(ctx context.Context, status leave.LeaveRequestStatus) ([]leave.LeaveRequest, error) {
	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests
		WHERE status = ?
		ORDER BY created_at, id
	`
	return r.list(ctx, query, string(status))
}

// ListOverlappingYear implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListOverlappingYear(ctx context.Context, year int) ([]leave.LeaveRequest, error) {
	yearStart := fmt.Sprintf("%04d-01-01", year)
	yearEnd := fmt.Sprintf("%04d-12-31", year)

	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests
		WHERE status <> 'rejected'
			AND start_date <= ?
			AND end_date >= ?
		ORDER BY requester_id, start_date
	`
	return r.list(ctx, query, yearEnd, yearStart)
}

// CheckOverlapping implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) CheckOverlapping(ctx context.Context, requesterID string, startDate, endDate time.Time, excludeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM leave_requests
			WHERE requester_id = ?
				AND status <> 'rejected'
				AND start_date <= ?
				AND end_date >= ?
				AND id <> ?
		)
	`

	var exists bool
	err := q.QueryRowContext(ctx, query,
		requesterID, leave.DayKey(endDate), leave.DayKey(startDate), excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check overlapping leave: %w", err)
	}
	return exists, nil
}

// UpdateDetails implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) UpdateDetails(ctx context.Context, request leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET start_date = ?, end_date = ?, reason = ?,
			total_days = ?, paid_days = ?, unpaid_days = ?, salary_cut = ?,
			updated_at = ?
		WHERE id = ? AND status = 'pending'
	`

	res, err := q.ExecContext(ctx, query,
		leave.DayKey(request.StartDate), leave.DayKey(request.EndDate), request.Reason,
		request.TotalDays, request.PaidDays, request.UnpaidDays, request.SalaryCut,
		formatTime(request.UpdatedAt),
		request.ID,
	)
	if err != nil {
		return fmt.Errorf("update leave request: %w", err)
	}
	return expectOneRow(res, leave.ErrInvalidState)
}

// UpdateStatus implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) UpdateStatus(ctx context.Context, id string, status leave.LeaveRequestStatus, approverID string, decidedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = ?, approver_id = ?, decided_at = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'
	`

	ts := formatTime(decidedAt)
	res, err := q.ExecContext(ctx, query, string(status), approverID, ts, ts, id)
	if err != nil {
		return fmt.Errorf("update leave request status: %w", err)
	}
	return expectOneRow(res, leave.ErrInvalidState)
}

// Delete implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `DELETE FROM leave_requests WHERE id = ? AND status <> 'approved'`, id)
	if err != nil {
		return fmt.Errorf("delete leave request: %w", err)
	}
	return expectOneRow(res, leave.ErrInvalidState)
}

// LockRequester implements leave.LeaveRequestRepository. Transactions already
// hold the database write lock from BEGIN IMMEDIATE, so there is nothing
// finer to take.
func (r *leaveRequestRepositoryImpl) LockRequester(ctx context.Context, requesterID string) error {
	return nil
}

func (r *leaveRequestRepositoryImpl) list(ctx context.Context, query string, args ...any) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, query, args...)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLeaveRequest(row rowScanner) (leave.LeaveRequest, error) {
	var (
		lr                   leave.LeaveRequest
		startDate, endDate   string
		status               string
		decidedAt            sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(
		&lr.ID,
		&lr.RequesterID,
		&startDate,
		&endDate,
		&lr.Reason,
		&status,
		&lr.ApproverID,
		&decidedAt,
		&lr.TotalDays,
		&lr.PaidDays,
		&lr.UnpaidDays,
		&lr.SalaryCut,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	lr.Status = leave.LeaveRequestStatus(status)
	if lr.StartDate, err = leave.ParseDate(startDate); err != nil {
		return leave.LeaveRequest{}, err
	}
	if lr.EndDate, err = leave.ParseDate(endDate); err != nil {
		return leave.LeaveRequest{}, err
	}
	if lr.DecidedAt, err = parseNullTime(decidedAt); err != nil {
		return leave.LeaveRequest{}, err
	}
	if lr.CreatedAt, err = parseTime(createdAt); err != nil {
		return leave.LeaveRequest{}, err
	}
	if lr.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return leave.LeaveRequest{}, err
	}
	return lr, nil
}

func expectOneRow(res sql.Result, otherwise error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return otherwise
	}
	return nil
}
