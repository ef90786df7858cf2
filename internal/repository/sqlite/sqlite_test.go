package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-engine/internal/repository/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *database.SQLiteDB {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewSQLiteDB(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.MigrateSQLite(ctx, db))
	return db
}

func createTestUser(t *testing.T, repo sqlite.UserRepository, role user.Role, managerID *string) string {
	t.Helper()
	id := uuid.NewString()
	err := repo.Upsert(context.Background(), user.User{
		ID:        id,
		Name:      string(role) + " " + id[:8],
		Email:     id + "@example.com",
		Role:      role,
		ManagerID: managerID,
		CreatedAt: testNow,
	})
	require.NoError(t, err)
	return id
}

func newLeaveRequest(requesterID, start, end string) leave.LeaveRequest {
	s, _ := leave.ParseDate(start)
	e, _ := leave.ParseDate(end)
	days := leave.DayCount(s, e)
	return leave.LeaveRequest{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		StartDate:   s,
		EndDate:     e,
		Reason:      "family",
		Status:      leave.LeaveRequestStatusPending,
		TotalDays:   days,
		PaidDays:    days,
		CreatedAt:   testNow,
	}
}

func TestMigrateSQLite_Idempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, database.MigrateSQLite(context.Background(), db))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestUserRepository_Directory(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewUserRepository(newTestDB(t))

	managerID := createTestUser(t, repo, user.RoleManager, nil)
	employeeID := createTestUser(t, repo, user.RoleEmployee, &managerID)
	otherID := createTestUser(t, repo, user.RoleEmployee, nil)

	role, err := repo.GetRole(ctx, employeeID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleEmployee, role)

	_, err = repo.GetRole(ctx, uuid.NewString())
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	ok, err := repo.IsDirectManagerOf(ctx, managerID, employeeID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsDirectManagerOf(ctx, managerID, otherID)
	require.NoError(t, err)
	assert.False(t, ok)

	reports, err := repo.ListDirectReports(ctx, managerID)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, employeeID, reports[0].ID)
	assert.True(t, reports[0].ReportsTo(managerID))

	got, err := repo.GetByID(ctx, managerID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleManager, got.Role)
	assert.True(t, got.CreatedAt.Equal(testNow))
}

func TestLeaveRequestRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := sqlite.NewUserRepository(db)
	repo := sqlite.NewLeaveRequestRepository(db)

	requesterID := createTestUser(t, users, user.RoleEmployee, nil)
	req := newLeaveRequest(requesterID, "2024-12-30", "2025-01-02")

	created, err := repo.Create(ctx, req)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, requesterID, got.RequesterID)
	assert.Equal(t, "2024-12-30", leave.DayKey(got.StartDate))
	assert.Equal(t, "2025-01-02", leave.DayKey(got.EndDate))
	assert.Equal(t, 4, got.TotalDays)
	assert.Equal(t, leave.LeaveRequestStatusPending, got.Status)
	assert.Nil(t, got.ApproverID)
	assert.Nil(t, got.DecidedAt)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

func TestLeaveRequestRepository_CheckOverlapping(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := sqlite.NewUserRepository(db)
	repo := sqlite.NewLeaveRequestRepository(db)

	requesterID := createTestUser(t, users, user.RoleEmployee, nil)
	otherID := createTestUser(t, users, user.RoleEmployee, nil)
	existing, err := repo.Create(ctx, newLeaveRequest(requesterID, "2025-03-10", "2025-03-14"))
	require.NoError(t, err)

	date := func(s string) time.Time {
		d, _ := leave.ParseDate(s)
		return d
	}

	tests := []struct {
		name        string
		requesterID string
		start, end  string
		excludeID   string
		want        bool
	}{
		{"touches last day", requesterID, "2025-03-14", "2025-03-20", "", true},
		{"touches first day", requesterID, "2025-03-01", "2025-03-10", "", true},
		{"inside", requesterID, "2025-03-11", "2025-03-12", "", true},
		{"adjacent after", requesterID, "2025-03-15", "2025-03-16", "", false},
		{"adjacent before", requesterID, "2025-03-08", "2025-03-09", "", false},
		{"excluded self", requesterID, "2025-03-10", "2025-03-14", existing.ID, false},
		{"other requester", otherID, "2025-03-10", "2025-03-14", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.CheckOverlapping(ctx, tt.requesterID, date(tt.start), date(tt.end), tt.excludeID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	// Rejected requests no longer block the range
	require.NoError(t, repo.UpdateStatus(ctx, existing.ID, leave.LeaveRequestStatusRejected, otherID, testNow))
	got, err := repo.CheckOverlapping(ctx, requesterID, date("2025-03-10"), date("2025-03-14"), "")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestLeaveRequestRepository_ConditionalWrites(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := sqlite.NewUserRepository(db)
	repo := sqlite.NewLeaveRequestRepository(db)

	requesterID := createTestUser(t, users, user.RoleEmployee, nil)
	approverID := createTestUser(t, users, user.RoleHR, nil)
	created, err := repo.Create(ctx, newLeaveRequest(requesterID, "2025-05-05", "2025-05-06"))
	require.NoError(t, err)

	decidedAt := testNow.Add(time.Hour)
	require.NoError(t, repo.UpdateStatus(ctx, created.ID, leave.LeaveRequestStatusApproved, approverID, decidedAt))

	err = repo.UpdateStatus(ctx, created.ID, leave.LeaveRequestStatusRejected, approverID, decidedAt)
	assert.ErrorIs(t, err, leave.ErrInvalidState)

	created.Reason = "changed"
	assert.ErrorIs(t, repo.UpdateDetails(ctx, created), leave.ErrInvalidState)
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), leave.ErrInvalidState)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.LeaveRequestStatusApproved, got.Status)
	require.NotNil(t, got.ApproverID)
	assert.Equal(t, approverID, *got.ApproverID)
	require.NotNil(t, got.DecidedAt)
	assert.True(t, got.DecidedAt.Equal(decidedAt))
	assert.Equal(t, "family", got.Reason)
}

func TestLeaveRequestRepository_ListOverlappingYear(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := sqlite.NewUserRepository(db)
	repo := sqlite.NewLeaveRequestRepository(db)

	requesterID := createTestUser(t, users, user.RoleEmployee, nil)
	straddling, err := repo.Create(ctx, newLeaveRequest(requesterID, "2024-12-30", "2025-01-02"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newLeaveRequest(requesterID, "2024-06-01", "2024-06-02"))
	require.NoError(t, err)
	inYear, err := repo.Create(ctx, newLeaveRequest(requesterID, "2025-07-01", "2025-07-03"))
	require.NoError(t, err)
	rejected, err := repo.Create(ctx, newLeaveRequest(requesterID, "2025-08-01", "2025-08-01"))
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, rejected.ID, leave.LeaveRequestStatusRejected, requesterID, testNow))

	got, err := repo.ListOverlappingYear(ctx, 2025)
	require.NoError(t, err)

	var ids []string
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{straddling.ID, inYear.ID}, ids)
}

func TestAttendanceRepository_CheckInUnique(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := sqlite.NewUserRepository(db)
	repo := sqlite.NewAttendanceRepository(db)

	userID := createTestUser(t, users, user.RoleEmployee, nil)
	record := attendance.Attendance{
		ID:        uuid.NewString(),
		UserID:    userID,
		Date:      "2025-03-03",
		CheckIn:   testNow,
		CreatedAt: testNow,
	}

	_, err := repo.Create(ctx, record)
	require.NoError(t, err)

	record.ID = uuid.NewString()
	_, err = repo.Create(ctx, record)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	_, err = repo.GetByUserAndDate(ctx, userID, "2025-03-04")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestAttendanceRepository_CloseSessionOnce(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := sqlite.NewUserRepository(db)
	repo := sqlite.NewAttendanceRepository(db)

	userID := createTestUser(t, users, user.RoleEmployee, nil)
	lat, lon := -6.2, 106.8
	created, err := repo.Create(ctx, attendance.Attendance{
		ID:        uuid.NewString(),
		UserID:    userID,
		Date:      "2025-03-03",
		CheckIn:   testNow,
		Latitude:  &lat,
		Longitude: &lon,
		CreatedAt: testNow,
	})
	require.NoError(t, err)

	session := attendance.CloseSession(testNow, testNow.Add(7*time.Hour), 480)
	closed, err := repo.CloseSession(ctx, created.ID, session)
	require.NoError(t, err)
	require.NotNil(t, closed.CheckOut)
	assert.True(t, closed.CheckOut.Equal(testNow.Add(7*time.Hour)))
	assert.Equal(t, 420, closed.WorkedMinutes)
	assert.Equal(t, 60, closed.ShortByMinutes)
	assert.True(t, closed.SalaryCut)
	require.NotNil(t, closed.Latitude)
	assert.Equal(t, lat, *closed.Latitude)

	_, err = repo.CloseSession(ctx, created.ID, session)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestAttendanceRepository_ListFilter(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := sqlite.NewUserRepository(db)
	repo := sqlite.NewAttendanceRepository(db)

	alice := createTestUser(t, users, user.RoleEmployee, nil)
	bob := createTestUser(t, users, user.RoleEmployee, nil)
	for _, rec := range []struct{ userID, date string }{
		{alice, "2025-03-01"},
		{alice, "2025-03-02"},
		{alice, "2025-03-05"},
		{bob, "2025-03-02"},
	} {
		_, err := repo.Create(ctx, attendance.Attendance{
			ID: uuid.NewString(), UserID: rec.userID, Date: rec.date, CheckIn: testNow, CreatedAt: testNow,
		})
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	mine, err := repo.List(ctx, attendance.AttendanceFilter{UserID: alice, From: "2025-03-02", To: "2025-03-05"})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "2025-03-05", mine[0].Date)
	assert.Equal(t, "2025-03-02", mine[1].Date)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := sqlite.NewUserRepository(db)
	repo := sqlite.NewLeaveRequestRepository(db)
	tx := sqlite.NewTransactor(db)

	requesterID := createTestUser(t, users, user.RoleEmployee, nil)
	boom := errors.New("boom")

	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := repo.Create(ctx, newLeaveRequest(requesterID, "2025-04-01", "2025-04-02")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.ListByRequester(ctx, requesterID)
	require.NoError(t, err)
	assert.Empty(t, got)
}
