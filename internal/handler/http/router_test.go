package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/config"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-leave-engine/internal/repository/sqlite"
	attendanceService "github.com/cmlabs-hris/hris-leave-engine/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/hris-leave-engine/internal/service/leave"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type handlerTestEnv struct {
	router     http.Handler
	users      sqlite.UserRepository
	jwtService jwt.Service
	mu         sync.Mutex
	now        time.Time
}

func (e *handlerTestEnv) Now() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

func (e *handlerTestEnv) setNow(t time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = t
}

func handlerTestInit(t *testing.T) *handlerTestEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewSQLiteDB(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.MigrateSQLite(ctx, db))

	env := &handlerTestEnv{
		users:      sqlite.NewUserRepository(db),
		jwtService: jwt.NewJWTService(handlerTestSecret, "1h"),
		now:        time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC),
	}
	var clk clock.Clock = env

	policy := config.DefaultPolicy()
	requests := sqlite.NewLeaveRequestRepository(db)
	requestSvc := leaveService.NewRequestService(sqlite.NewTransactor(db), requests, env.users, leaveService.NewAllocator(policy), clk)
	leaveSvc := leaveService.NewLeaveService(requests, env.users, requestSvc, leaveService.NewReporter(requests), clk)
	attendanceSvc := attendanceService.NewAttendanceService(sqlite.NewAttendanceRepository(db), policy, clk)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	env.router = NewRouter(
		logger,
		config.AppConfig{FrontendURL: "http://localhost:3000"},
		env.jwtService,
		NewLeaveHandler(leaveSvc),
		NewAttendanceHandler(attendanceSvc),
	)
	return env
}

func (e *handlerTestEnv) createUser(t *testing.T, role user.Role, managerID *string) (user.Principal, string) {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, e.users.Upsert(context.Background(), user.User{
		ID:        id,
		Name:      string(role) + "-" + id[:8],
		Email:     id + "@example.com",
		Role:      role,
		ManagerID: managerID,
		CreatedAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}))
	principal := user.Principal{UserID: id, Role: role}
	token, _, err := e.jwtService.GenerateAccessToken(principal)
	require.NoError(t, err)
	return principal, token
}

func (e *handlerTestEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var resp response.Response
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func dataMap(t *testing.T, resp response.Response) map[string]any {
	t.Helper()
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	return data
}

func TestRouter_Heartbeat(t *testing.T) {
	env := handlerTestInit(t)
	rec, _ := env.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RequiresToken(t *testing.T) {
	env := handlerTestInit(t)
	rec, resp := env.do(t, http.MethodGet, "/api/v1/leave/requests/my", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, resp.Success)
}

func TestLeaveHandler_Lifecycle(t *testing.T) {
	env := handlerTestInit(t)
	manager, managerToken := env.createUser(t, user.RoleManager, nil)
	employee, employeeToken := env.createUser(t, user.RoleEmployee, &manager.UserID)
	_, outsiderToken := env.createUser(t, user.RoleEmployee, nil)

	// Invalid payload
	rec, resp := env.do(t, http.MethodPost, "/api/v1/leave/requests", employeeToken, map[string]string{
		"start_date": "2025-03-10",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Details, "reason")

	// Reversed range
	rec, _ = env.do(t, http.MethodPost, "/api/v1/leave/requests", employeeToken, map[string]string{
		"start_date": "2025-03-10", "end_date": "2025-03-05", "reason": "trip",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = env.do(t, http.MethodPost, "/api/v1/leave/requests", employeeToken, map[string]string{
		"start_date": "2025-03-10", "end_date": "2025-03-14", "reason": "family trip",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := dataMap(t, resp)
	requestID := created["id"].(string)
	assert.Equal(t, "pending", created["status"])
	assert.EqualValues(t, 5, created["total_days"])
	assert.EqualValues(t, 5, created["paid_days"])
	assert.Equal(t, employee.UserID, created["requester_id"])

	// Overlap
	rec, _ = env.do(t, http.MethodPost, "/api/v1/leave/requests", employeeToken, map[string]string{
		"start_date": "2025-03-14", "end_date": "2025-03-15", "reason": "again",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, resp = env.do(t, http.MethodGet, "/api/v1/leave/requests/my", employeeToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Meta)
	assert.EqualValues(t, 1, resp.Meta.TotalItems)

	// Non-owners that cannot decide see nothing
	rec, _ = env.do(t, http.MethodGet, "/api/v1/leave/requests/"+requestID, outsiderToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Employees lack the approve permission
	rec, _ = env.do(t, http.MethodPut, "/api/v1/leave/requests/"+requestID+"/decision", employeeToken, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = env.do(t, http.MethodGet, "/api/v1/leave/requests/pending", managerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, resp.Meta.TotalItems)

	rec, _ = env.do(t, http.MethodPut, "/api/v1/leave/requests/"+requestID+"/decision", managerToken, map[string]string{"status": "maybe"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, resp = env.do(t, http.MethodPut, "/api/v1/leave/requests/"+requestID+"/decision", managerToken, map[string]string{"status": "Approved"})
	require.Equal(t, http.StatusOK, rec.Code)
	decided := dataMap(t, resp)
	assert.Equal(t, "approved", decided["status"])
	assert.Equal(t, manager.UserID, decided["approver_id"])

	// Second decision loses
	rec, _ = env.do(t, http.MethodPut, "/api/v1/leave/requests/"+requestID+"/decision", managerToken, map[string]string{"status": "rejected"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Approved requests are frozen
	rec, _ = env.do(t, http.MethodPut, "/api/v1/leave/requests/"+requestID, employeeToken, map[string]string{
		"start_date": "2025-03-10", "end_date": "2025-03-11", "reason": "shorter",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec, _ = env.do(t, http.MethodDelete, "/api/v1/leave/requests/"+requestID, employeeToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLeaveHandler_EditAndDelete(t *testing.T) {
	env := handlerTestInit(t)
	_, token := env.createUser(t, user.RoleEmployee, nil)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/leave/requests", token, map[string]string{
		"start_date": "2025-06-02", "end_date": "2025-06-03", "reason": "errands",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	requestID := dataMap(t, resp)["id"].(string)

	rec, resp = env.do(t, http.MethodPut, "/api/v1/leave/requests/"+requestID, token, map[string]string{
		"start_date": "2025-06-02", "end_date": "2025-06-06", "reason": "longer errands",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 5, dataMap(t, resp)["total_days"])

	rec, _ = env.do(t, http.MethodDelete, "/api/v1/leave/requests/"+requestID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/leave/requests/"+requestID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeaveHandler_MalformedIDIsNotFound(t *testing.T) {
	env := handlerTestInit(t)
	_, employeeToken := env.createUser(t, user.RoleEmployee, nil)
	_, hrToken := env.createUser(t, user.RoleHR, nil)
	edit := map[string]string{"start_date": "2025-06-02", "end_date": "2025-06-03", "reason": "errands"}

	for _, id := range []string{"abc", "123", "not-a-uuid"} {
		path := "/api/v1/leave/requests/" + id

		rec, resp := env.do(t, http.MethodGet, path, hrToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, "GET %s", id)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)

		rec, _ = env.do(t, http.MethodPut, path, employeeToken, edit)
		assert.Equal(t, http.StatusNotFound, rec.Code, "PUT %s", id)

		rec, _ = env.do(t, http.MethodDelete, path, employeeToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, "DELETE %s", id)

		rec, _ = env.do(t, http.MethodPut, path+"/decision", hrToken, map[string]string{"status": "approved"})
		assert.Equal(t, http.StatusNotFound, rec.Code, "decide %s", id)
	}
}

func TestLeaveHandler_SpanLimit(t *testing.T) {
	env := handlerTestInit(t)
	_, token := env.createUser(t, user.RoleEmployee, nil)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/leave/requests", token, map[string]string{
		"start_date": "0001-01-01", "end_date": "9999-12-31", "reason": "forever",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Details, "end_date")

	rec, resp = env.do(t, http.MethodPost, "/api/v1/leave/requests", token, map[string]string{
		"start_date": "2024-01-01", "end_date": "2024-12-31", "reason": "sabbatical",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	requestID := dataMap(t, resp)["id"].(string)
	assert.EqualValues(t, 366, dataMap(t, resp)["total_days"])

	rec, _ = env.do(t, http.MethodPut, "/api/v1/leave/requests/"+requestID, token, map[string]string{
		"start_date": "2024-01-01", "end_date": "2025-01-01", "reason": "sabbatical",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLeaveHandler_EmptyListsReportZeroTotal(t *testing.T) {
	env := handlerTestInit(t)
	_, token := env.createUser(t, user.RoleEmployee, nil)

	rec, resp := env.do(t, http.MethodGet, "/api/v1/leave/requests/my", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, resp.Data)
	require.NotNil(t, resp.Meta)
	assert.Zero(t, resp.Meta.TotalItems)
	assert.Contains(t, rec.Body.String(), `"total_items":0`)
}

func TestLeaveHandler_YearlySummary(t *testing.T) {
	env := handlerTestInit(t)
	_, hrToken := env.createUser(t, user.RoleHR, nil)
	_, managerToken := env.createUser(t, user.RoleManager, nil)
	_, employeeToken := env.createUser(t, user.RoleEmployee, nil)

	rec, _ := env.do(t, http.MethodPost, "/api/v1/leave/requests", employeeToken, map[string]string{
		"start_date": "2025-12-30", "end_date": "2026-01-02", "reason": "new year",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/leave/summary?year=2025", managerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/leave/summary?year=abc", hrToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp := env.do(t, http.MethodGet, "/api/v1/leave/summary?year=2025", hrToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := dataMap(t, resp)
	assert.EqualValues(t, 2025, data["year"])
	summaries := data["summaries"].([]any)
	require.Len(t, summaries, 1)
	assert.EqualValues(t, 2, summaries[0].(map[string]any)["pending_paid_days"])

	// Year defaults to the clock's year
	rec, resp = env.do(t, http.MethodGet, "/api/v1/leave/summary", hrToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2025, dataMap(t, resp)["year"])
}

func TestAttendanceHandler_Flow(t *testing.T) {
	env := handlerTestInit(t)
	employee, token := env.createUser(t, user.RoleEmployee, nil)
	_, hrToken := env.createUser(t, user.RoleHR, nil)

	rec, _ := env.do(t, http.MethodPost, "/api/v1/attendance/check-out", token, map[string]string{"date": "2025-03-03"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/api/v1/attendance/check-in", token, map[string]any{"date": "2025-03-03", "latitude": 120.0})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/attendance/check-in", token, map[string]any{
		"date": "2025-03-03", "latitude": -6.2, "longitude": 106.8, "device_type": "ios",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, employee.UserID, dataMap(t, resp)["user_id"])

	rec, _ = env.do(t, http.MethodPost, "/api/v1/attendance/check-in", token, map[string]string{"date": "2025-03-03"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	env.setNow(time.Date(2025, time.March, 3, 14, 30, 0, 0, time.UTC))
	rec, resp = env.do(t, http.MethodPost, "/api/v1/attendance/check-out", token, map[string]string{"date": "2025-03-03"})
	require.Equal(t, http.StatusOK, rec.Code)
	out := dataMap(t, resp)
	assert.EqualValues(t, 330, out["worked_minutes"])
	assert.EqualValues(t, 150, out["short_by_minutes"])
	assert.Equal(t, true, out["salary_cut"])

	rec, _ = env.do(t, http.MethodPost, "/api/v1/attendance/check-out", token, map[string]string{"date": "2025-03-03"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/attendance/today?date=2025-03-03", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = env.do(t, http.MethodGet, "/api/v1/attendance/today?date=2025-03-04", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, resp = env.do(t, http.MethodGet, "/api/v1/attendance/my?from=2025-03-01&to=2025-03-31", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, resp.Meta.TotalItems)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/attendance", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = env.do(t, http.MethodGet, "/api/v1/attendance?user_id="+employee.UserID, hrToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, resp.Meta.TotalItems)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/attendance?user_id=nope", hrToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
