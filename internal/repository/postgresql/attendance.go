package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	id, user_id, date::text, check_in, check_out,
	worked_minutes, short_by_minutes, salary_cut,
	latitude, longitude, location_name, device_type, photo_url,
	created_at, updated_at
`

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendances (
			id, user_id, date, check_in,
			latitude, longitude, location_name, device_type, photo_url,
			created_at, updated_at
		) VALUES (
			$1, $2, $3::date, $4,
			$5, $6, $7, $8, $9,
			$10, $10
		)
	`

	_, err := q.Exec(ctx, query,
		a.ID, a.UserID, a.Date, a.CheckIn,
		a.Latitude, a.Longitude, a.LocationName, a.DeviceType, a.PhotoURL,
		a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("insert attendance: %w", err)
	}

	a.UpdatedAt = a.CreatedAt
	return a, nil
}

// GetByUserAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByUserAndDate(ctx context.Context, userID string, date string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE user_id = $1 AND date = $2::date`

	a, err := scanAttendance(q.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("get attendance: %w", err)
	}
	return a, nil
}

// CloseSession implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) CloseSession(ctx context.Context, id string, session attendance.Session) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances
		SET check_out = $2, worked_minutes = $3, short_by_minutes = $4, salary_cut = $5,
			updated_at = $2
		WHERE id = $1 AND check_out IS NULL
		RETURNING ` + attendanceColumns

	a, err := scanAttendance(q.QueryRow(ctx, query,
		id, session.CheckOut, session.WorkedMinutes, session.ShortByMinutes, session.SalaryCut,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
		}
		return attendance.Attendance{}, fmt.Errorf("close attendance session: %w", err)
	}
	return a, nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	var (
		where []string
		args  []interface{}
	)
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.From != "" {
		args = append(args, filter.From)
		where = append(where, fmt.Sprintf("date >= $%d::date", len(args)))
	}
	if filter.To != "" {
		args = append(args, filter.To)
		where = append(where, fmt.Sprintf("date <= $%d::date", len(args)))
	}

	query := `SELECT ` + attendanceColumns + ` FROM attendances`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date DESC, check_in DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var a attendance.Attendance
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Date,
		&a.CheckIn,
		&a.CheckOut,
		&a.WorkedMinutes,
		&a.ShortByMinutes,
		&a.SalaryCut,
		&a.Latitude,
		&a.Longitude,
		&a.LocationName,
		&a.DeviceType,
		&a.PhotoURL,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}
