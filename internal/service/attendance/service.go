package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-engine/internal/config"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/clock"
	"github.com/google/uuid"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	policy config.PolicyConfig
	clock  clock.Clock
}

func NewAttendanceService(attendanceRepository attendance.AttendanceRepository, policy config.PolicyConfig, clk clock.Clock) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepository,
		policy:               policy,
		clock:                clk,
	}
}

// CheckIn implements attendance.AttendanceService. The (user, date) unique
// index decides races; the lookup only gives the common case a cheap answer.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, principal user.Principal, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	_, err := s.AttendanceRepository.GetByUserAndDate(ctx, principal.UserID, req.Date)
	if err == nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
	}
	if !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to look up attendance: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}

	now := s.clock.Now()
	record, err := s.AttendanceRepository.Create(ctx, attendance.Attendance{
		ID:           id.String(),
		UserID:       principal.UserID,
		Date:         req.Date,
		CheckIn:      now,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		LocationName: req.LocationName,
		DeviceType:   req.DeviceType,
		PhotoURL:     req.PhotoURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check in: %w", err)
	}

	return attendance.NewAttendanceResponse(record), nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, principal user.Principal, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := s.AttendanceRepository.GetByUserAndDate(ctx, principal.UserID, req.Date)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrNoCheckIn
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to look up attendance: %w", err)
	}
	if record.IsCheckedOut() {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
	}

	session := attendance.CloseSession(record.CheckIn, s.clock.Now(), s.policy.MinDailyWorkMinutes)

	closed, err := s.AttendanceRepository.CloseSession(ctx, record.ID, session)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedOut) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check out: %w", err)
	}

	return attendance.NewAttendanceResponse(closed), nil
}

// GetByDate implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetByDate(ctx context.Context, principal user.Principal, date string) (attendance.AttendanceResponse, error) {
	if err := attendance.ValidateDate(date); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := s.AttendanceRepository.GetByUserAndDate(ctx, principal.UserID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return attendance.NewAttendanceResponse(record), nil
}

// ListMine implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListMine(ctx context.Context, principal user.Principal, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	filter.UserID = principal.UserID
	return s.list(ctx, filter)
}

// ListAll implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAll(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	return s.list(ctx, filter)
}

func (s *AttendanceServiceImpl) list(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, err := s.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, attendance.NewAttendanceResponse(record))
	}
	return attendance.ListAttendanceResponse{
		TotalCount:  int64(len(responses)),
		Attendances: responses,
	}, nil
}
