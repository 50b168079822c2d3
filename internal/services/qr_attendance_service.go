package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"attendance_backend/internal/models"
	"attendance_backend/internal/repositories"
	"attendance_backend/internal/tokenstore"
	"attendance_backend/pkg/clock"
	"attendance_backend/pkg/utils"
)

const (
	DefaultQRTokenTTL = 60 * time.Second
	tokenEntropyBytes = 32
	workDateLayout    = "2006-01-02"
)

var ErrShiftNotFound = errors.New("work schedule not found")

// Scan rejection reasons. They double as API error codes.
const (
	ReasonMissingFields          = "MISSING_FIELDS"
	ReasonInvalidOrExpiredToken  = "INVALID_OR_EXPIRED_TOKEN"
	ReasonTokenExpired           = "TOKEN_EXPIRED"
	ReasonEmployeeNotFound       = "EMPLOYEE_NOT_FOUND"
	ReasonNotEligibleForShift    = "NOT_ELIGIBLE_FOR_SHIFT"
	ReasonAlreadyCheckedInToday  = "ALREADY_CHECKED_IN_TODAY"
	ReasonOutsideToleranceWindow = "OUTSIDE_TOLERANCE_WINDOW"
)

// ScanRejection is a business refusal of a check-in, as opposed to an
// infrastructure failure.
type ScanRejection struct {
	Reason  string
	Message string
}

func (r *ScanRejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Reason, r.Message)
}

// StatusCode is the HTTP status the rejection is reported with.
func (r *ScanRejection) StatusCode() int {
	switch r.Reason {
	case ReasonEmployeeNotFound:
		return http.StatusNotFound
	case ReasonNotEligibleForShift:
		return http.StatusForbidden
	case ReasonAlreadyCheckedInToday:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func reject(reason, format string, args ...interface{}) *ScanRejection {
	return &ScanRejection{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// --- DTOs ---

type ShiftSummary struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type IssueTokenResponse struct {
	QRToken   string       `json:"qr_token"`
	ExpiresIn int          `json:"expires_in"`
	ExpiresAt time.Time    `json:"expires_at"`
	Shift     ShiftSummary `json:"shift"`
}

type ScanRequest struct {
	Token      string `json:"qr_data"`
	EmployeeID int64  `json:"employee_id"`
}

type ScanResult struct {
	AttendanceID int64     `json:"attendance_id"`
	EmployeeID   int64     `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	ShiftID      int64     `json:"shift_id"`
	ShiftName    string    `json:"shift_name"`
	Timestamp    time.Time `json:"timestamp"`
	Status       string    `json:"status"`
}

// QRAttendanceService issues single-use check-in tokens and redeems them.
type QRAttendanceService interface {
	IssueToken(ctx context.Context, shiftID int64) (*IssueTokenResponse, error)
	Scan(ctx context.Context, req ScanRequest) (*ScanResult, error)
}

type qrAttendanceService struct {
	store      tokenstore.Store
	employees  repositories.EmployeeRepository
	schedules  repositories.WorkScheduleRepository
	attendance repositories.AttendanceRepository
	clock      clock.Clock
	ttl        time.Duration
	location   *time.Location
}

// NewQRAttendanceService creates a new instance of QRAttendanceService.
func NewQRAttendanceService(
	store tokenstore.Store,
	er repositories.EmployeeRepository,
	wr repositories.WorkScheduleRepository,
	ar repositories.AttendanceRepository,
	clk clock.Clock,
	ttl time.Duration,
	loc *time.Location,
) QRAttendanceService {
	if ttl <= 0 {
		ttl = DefaultQRTokenTTL
	}
	if loc == nil {
		loc = time.Local
	}
	return &qrAttendanceService{
		store:      store,
		employees:  er,
		schedules:  wr,
		attendance: ar,
		clock:      clk,
		ttl:        ttl,
		location:   loc,
	}
}

func newToken(shiftID int64, now time.Time) (string, error) {
	entropy := make([]byte, tokenEntropyBytes)
	if _, err := rand.Read(entropy); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	raw := fmt.Sprintf("%d:%s:%s", shiftID, now.Format(time.RFC3339Nano), base64.RawURLEncoding.EncodeToString(entropy))
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:]), nil
}

func (s *qrAttendanceService) IssueToken(ctx context.Context, shiftID int64) (*IssueTokenResponse, error) {
	shift, err := s.schedules.GetShiftByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrShiftNotFound, shiftID)
		}
		return nil, fmt.Errorf("failed to load work schedule %d: %w", shiftID, err)
	}

	now := s.clock.Now()
	token, err := newToken(shift.ID, now)
	if err != nil {
		return nil, err
	}

	info := tokenstore.TokenInfo{
		ShiftID:          shift.ID,
		ShiftName:        shift.Name,
		StartTime:        shift.StartTime,
		EndTime:          shift.EndTime,
		ToleranceMinutes: shift.ToleranceMinutes,
		IssuedAt:         now,
		ExpiresAt:        now.Add(s.ttl),
	}
	if err := s.store.Save(ctx, token, info); err != nil {
		return nil, fmt.Errorf("failed to store qr token: %w", err)
	}

	if purged, err := s.store.PurgeExpired(ctx, now); err != nil {
		utils.LogError(err, "Failed to purge expired QR tokens")
	} else if purged > 0 {
		utils.LogDebug("Purged expired QR tokens", map[string]interface{}{"count": purged})
	}

	utils.LogInfo("QR token issued", map[string]interface{}{
		"shift_id":   shift.ID,
		"expires_at": info.ExpiresAt,
	})

	return &IssueTokenResponse{
		QRToken:   token,
		ExpiresIn: int(s.ttl / time.Second),
		ExpiresAt: info.ExpiresAt,
		Shift: ShiftSummary{
			ID:        shift.ID,
			Name:      shift.Name,
			StartTime: shift.StartTime,
			EndTime:   shift.EndTime,
		},
	}, nil
}

// Scan redeems a token for one check-in. The token is held while the scan is
// evaluated and put back unless an attendance row was written, so only a
// successful scan consumes it. Concurrent scans of the same token queue
// behind the holder.
func (s *qrAttendanceService) Scan(ctx context.Context, req ScanRequest) (result *ScanResult, err error) {
	token := strings.TrimSpace(req.Token)
	if token == "" || req.EmployeeID <= 0 {
		return nil, reject(ReasonMissingFields, "qr_data and employee_id are required")
	}

	now := s.clock.Now().In(s.location)

	info, ok, err := s.store.Take(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up qr token: %w", err)
	}
	if !ok {
		return nil, reject(ReasonInvalidOrExpiredToken, "QR code is invalid or has already been used")
	}
	if info.Expired(now) {
		if rerr := s.store.Release(context.WithoutCancel(ctx), token); rerr != nil {
			utils.LogError(rerr, "Failed to release expired QR token")
		}
		return nil, reject(ReasonTokenExpired, "QR code expired at %s", info.ExpiresAt.In(s.location).Format(time.RFC3339))
	}

	consumed := false
	defer func() {
		if consumed {
			if rerr := s.store.Release(context.WithoutCancel(ctx), token); rerr != nil {
				utils.LogError(rerr, "Failed to release consumed QR token")
			}
			return
		}
		if rerr := s.store.Restore(context.WithoutCancel(ctx), token, info, s.clock.Now()); rerr != nil {
			utils.LogError(rerr, "Failed to restore QR token after unsuccessful scan")
		}
		var rejection *ScanRejection
		if errors.As(err, &rejection) {
			utils.LogWarn("QR scan rejected", map[string]interface{}{
				"reason":      rejection.Reason,
				"employee_id": req.EmployeeID,
				"shift_id":    info.ShiftID,
			})
		}
	}()

	employee, err := s.employees.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, reject(ReasonEmployeeNotFound, "employee %d not found", req.EmployeeID)
		}
		return nil, fmt.Errorf("failed to load employee %d: %w", req.EmployeeID, err)
	}

	shiftID := info.ShiftID
	assignments, err := s.schedules.FindAssignments(ctx, models.AssignmentFilter{EmployeeID: employee.ID, ShiftID: &shiftID})
	if err != nil {
		return nil, fmt.Errorf("failed to check assignments for employee %d: %w", employee.ID, err)
	}
	if len(assignments) == 0 {
		return nil, reject(ReasonNotEligibleForShift, "employee is not assigned to schedule %q", info.ShiftName)
	}

	workDate := now.Format(workDateLayout)
	existing, err := s.attendance.FindByEmployeeAndDate(ctx, employee.ID, workDate)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing attendance: %w", err)
	}
	if existing != nil {
		return nil, reject(ReasonAlreadyCheckedInToday, "already checked in today (attendance %d at %s)",
			existing.ID, utils.FormatClock(existing.Date.In(s.location)))
	}

	shift := models.WorkShift{StartTime: info.StartTime, ToleranceMinutes: info.ToleranceMinutes}
	start, err := shift.StartOn(now)
	if err != nil {
		return nil, fmt.Errorf("schedule %d has an unusable start time: %w", info.ShiftID, err)
	}
	earliest, latest := start.Add(-shift.Tolerance()), start.Add(shift.Tolerance())
	if now.Before(earliest) || now.After(latest) {
		return nil, reject(ReasonOutsideToleranceWindow, "check-in allowed between %s and %s (schedule starts at %s)",
			utils.FormatClock(earliest), utils.FormatClock(latest), utils.FormatClock(start))
	}

	status := models.AttendanceStatusOnTime
	if now.After(start) {
		status = models.AttendanceStatusLate
	}

	record, err := s.attendance.Create(ctx, &models.Attendance{
		EmployeeID:     employee.ID,
		Date:           now,
		WorkDate:       workDate,
		Status:         status,
		WorkScheduleID: &shiftID,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, reject(ReasonAlreadyCheckedInToday, "already checked in today")
		}
		return nil, fmt.Errorf("failed to record attendance: %w", err)
	}
	consumed = true

	utils.LogInfo("Attendance recorded", map[string]interface{}{
		"attendance_id": record.ID,
		"employee_id":   employee.ID,
		"shift_id":      info.ShiftID,
		"status":        status,
	})

	return &ScanResult{
		AttendanceID: record.ID,
		EmployeeID:   employee.ID,
		EmployeeName: employee.Name,
		ShiftID:      info.ShiftID,
		ShiftName:    info.ShiftName,
		Timestamp:    now,
		Status:       status,
	}, nil
}
