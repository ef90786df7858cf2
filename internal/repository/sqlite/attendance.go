package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/database"
)

const attendanceColumns = `
	id, user_id, date, check_in, check_out,
	worked_minutes, short_by_minutes, salary_cut,
	latitude, longitude, location_name, device_type, photo_url,
	created_at, updated_at
`

type attendanceRepositoryImpl struct {
	db *database.SQLiteDB
}

func NewAttendanceRepository(db *database.SQLiteDB) attendance.AttendanceRepository {
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
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := formatTime(a.CreatedAt)
	_, err := q.ExecContext(ctx, query,
		a.ID, a.UserID, a.Date, formatTime(a.CheckIn),
		a.Latitude, a.Longitude, a.LocationName, a.DeviceType, a.PhotoURL,
		createdAt, createdAt,
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

	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE user_id = ? AND date = ?`

	a, err := scanAttendance(q.QueryRowContext(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
		SET check_out = ?, worked_minutes = ?, short_by_minutes = ?, salary_cut = ?,
			updated_at = ?
		WHERE id = ? AND check_out IS NULL
		RETURNING ` + attendanceColumns

	checkOut := formatTime(session.CheckOut)
	a, err := scanAttendance(q.QueryRowContext(ctx, query,
		checkOut, session.WorkedMinutes, session.ShortByMinutes, session.SalaryCut,
		checkOut, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
		args  []any
	)
	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.From != "" {
		where = append(where, "date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		where = append(where, "date <= ?")
		args = append(args, filter.To)
	}

	query := `SELECT ` + attendanceColumns + ` FROM attendances`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date DESC, check_in DESC`

	rows, err := q.QueryContext(ctx, query, args...)
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

func scanAttendance(row rowScanner) (attendance.Attendance, error) {
	var (
		a                    attendance.Attendance
		checkIn              string
		checkOut             sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Date,
		&checkIn,
		&checkOut,
		&a.WorkedMinutes,
		&a.ShortByMinutes,
		&a.SalaryCut,
		&a.Latitude,
		&a.Longitude,
		&a.LocationName,
		&a.DeviceType,
		&a.PhotoURL,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}

	if a.CheckIn, err = parseTime(checkIn); err != nil {
		return attendance.Attendance{}, err
	}
	if a.CheckOut, err = parseNullTime(checkOut); err != nil {
		return attendance.Attendance{}, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return attendance.Attendance{}, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return attendance.Attendance{}, err
	}
	return a, nil
}
