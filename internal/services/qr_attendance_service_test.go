package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"attendance_backend/internal/models"
	"attendance_backend/internal/repositories"
	"attendance_backend/internal/tokenstore"
	"attendance_backend/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday 2026-10-19, 08:00 UTC.
var mondayStart = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

type engineFixture struct {
	clock      *clock.Fake
	store      *tokenstore.MemoryStore
	employees  *fakeEmployeeRepo
	schedules  *fakeScheduleRepo
	attendance *fakeAttendanceRepo
	svc        QRAttendanceService
}

// newEngineFixture sets up shift 1 "Morning" 08:00-16:00 with 15 minutes
// tolerance. Alice (1) and Bob (2) work it on Monday; Carol (3) does not.
func newEngineFixture(t *testing.T, now time.Time) *engineFixture {
	t.Helper()
	f := &engineFixture{
		clock: clock.NewFake(now),
		store: tokenstore.NewMemoryStore(),
		employees: newFakeEmployeeRepo(
			&models.Employee{ID: 1, Name: "Alice", Email: "alice@example.com"},
			&models.Employee{ID: 2, Name: "Bob", Email: "bob@example.com"},
			&models.Employee{ID: 3, Name: "Carol", Email: "carol@example.com"},
		),
		schedules:  newFakeScheduleRepo(),
		attendance: &fakeAttendanceRepo{},
	}
	f.schedules.addShift(1, "Morning", "08:00", "16:00", 15)
	f.schedules.assign(1, 1, "Monday")
	f.schedules.assign(2, 1, "Monday")
	f.svc = NewQRAttendanceService(f.store, f.employees, f.schedules, f.attendance, f.clock, time.Minute, time.UTC)
	return f
}

func (f *engineFixture) issue(t *testing.T) string {
	t.Helper()
	resp, err := f.svc.IssueToken(context.Background(), 1)
	require.NoError(t, err)
	return resp.QRToken
}

func (f *engineFixture) scan(token string, employeeID int64) (*ScanResult, error) {
	return f.svc.Scan(context.Background(), ScanRequest{Token: token, EmployeeID: employeeID})
}

func requireRejection(t *testing.T, err error, reason string) *ScanRejection {
	t.Helper()
	var rejection *ScanRejection
	require.True(t, errors.As(err, &rejection), "expected a scan rejection, got %v", err)
	assert.Equal(t, reason, rejection.Reason)
	return rejection
}

func TestIssueToken(t *testing.T) {
	f := newEngineFixture(t, mondayStart)

	resp, err := f.svc.IssueToken(context.Background(), 1)
	require.NoError(t, err)

	assert.Len(t, resp.QRToken, 64)
	assert.Equal(t, 60, resp.ExpiresIn)
	assert.Equal(t, mondayStart.Add(time.Minute), resp.ExpiresAt)
	assert.Equal(t, ShiftSummary{ID: 1, Name: "Morning", StartTime: "08:00", EndTime: "16:00"}, resp.Shift)

	n, _ := f.store.Len(context.Background())
	assert.Equal(t, 1, n)
}

func TestIssueToken_TokensAreUnique(t *testing.T) {
	f := newEngineFixture(t, mondayStart)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		token := f.issue(t)
		assert.False(t, seen[token])
		seen[token] = true
	}
}

func TestIssueToken_UnknownShift(t *testing.T) {
	f := newEngineFixture(t, mondayStart)

	_, err := f.svc.IssueToken(context.Background(), 42)
	assert.ErrorIs(t, err, ErrShiftNotFound)
}

func TestIssueToken_PurgesExpiredTokens(t *testing.T) {
	f := newEngineFixture(t, mondayStart)
	f.issue(t)
	f.issue(t)

	f.clock.Advance(2 * time.Minute)
	f.issue(t)

	n, _ := f.store.Len(context.Background())
	assert.Equal(t, 1, n)
}

func TestScan_MissingFields(t *testing.T) {
	f := newEngineFixture(t, mondayStart)
	token := f.issue(t)

	tests := []struct {
		name       string
		token      string
		employeeID int64
	}{
		{"empty token", "", 1},
		{"blank token", "   ", 1},
		{"zero employee", token, 0},
		{"negative employee", token, -4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.scan(tt.token, tt.employeeID)
			rejection := requireRejection(t, err, ReasonMissingFields)
			assert.Equal(t, http.StatusBadRequest, rejection.StatusCode())
		})
	}

	_, err := f.scan(token, 1)
	assert.NoError(t, err)
}

func TestScan_UnknownToken(t *testing.T) {
	f := newEngineFixture(t, mondayStart)

	_, err := f.scan("not-a-token", 1)
	requireRejection(t, err, ReasonInvalidOrExpiredToken)
}

func TestScan_Success(t *testing.T) {
	f := newEngineFixture(t, mondayStart)
	token := f.issue(t)

	res, err := f.scan(token, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.AttendanceID)
	assert.Equal(t, "Alice", res.EmployeeName)
	assert.Equal(t, "Morning", res.ShiftName)
	assert.Equal(t, models.AttendanceStatusOnTime, res.Status)
	assert.Equal(t, mondayStart, res.Timestamp)

	require.Equal(t, 1, f.attendance.count())
	rec := f.attendance.records[0]
	assert.Equal(t, "2026-10-19", rec.WorkDate)
	require.NotNil(t, rec.WorkScheduleID)
	assert.Equal(t, int64(1), *rec.WorkScheduleID)
}

func TestScan_TokenIsSingleUse(t *testing.T) {
	f := newEngineFixture(t, mondayStart)
	token := f.issue(t)

	_, err := f.scan(token, 1)
	require.NoError(t, err)

	_, err = f.scan(token, 2)
	requireRejection(t, err, ReasonInvalidOrExpiredToken)
	assert.Equal(t, 1, f.attendance.count())
}

func TestScan_ExpiredToken(t *testing.T) {
	f := newEngineFixture(t, mondayStart.Add(-5*time.Minute))
	token := f.issue(t)

	f.clock.Advance(61 * time.Second)
	_, err := f.scan(token, 1)
	requireRejection(t, err, ReasonTokenExpired)

	_, err = f.scan(token, 1)
	requireRejection(t, err, ReasonInvalidOrExpiredToken)
	assert.Zero(t, f.attendance.count())
}

func TestScan_TokenValidUntilExpiry(t *testing.T) {
	f := newEngineFixture(t, mondayStart.Add(-5*time.Minute))
	token := f.issue(t)

	f.clock.Advance(time.Minute)
	_, err := f.scan(token, 1)
	assert.NoError(t, err)
}

func TestScan_EmployeeNotFoundKeepsToken(t *testing.T) {
	f := newEngineFixture(t, mondayStart)
	token := f.issue(t)

	_, err := f.scan(token, 99)
	rejection := requireRejection(t, err, ReasonEmployeeNotFound)
	assert.Equal(t, http.StatusNotFound, rejection.StatusCode())

	_, err = f.scan(token, 1)
	assert.NoError(t, err)
}

func TestScan_NotEligibleKeepsToken(t *testing.T) {
	f := newEngineFixture(t, mondayStart.Add(5*time.Minute))
	token := f.issue(t)

	_, err := f.scan(token, 3)
	rejection := requireRejection(t, err, ReasonNotEligibleForShift)
	assert.Equal(t, http.StatusForbidden, rejection.StatusCode())
	assert.Contains(t, rejection.Message, "Morning")
	assert.Zero(t, f.attendance.count())

	res, err := f.scan(token, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", res.EmployeeName)
}

func TestScan_EligibilityIsNotDayScoped(t *testing.T) {
	// Tuesday; assignments are on Monday only.
	f := newEngineFixture(t, mondayStart.AddDate(0, 0, 1))
	token := f.issue(t)

	_, err := f.scan(token, 1)
	assert.NoError(t, err)
}

func TestScan_AlreadyCheckedInToday(t *testing.T) {
	f := newEngineFixture(t, mondayStart)
	_, err := f.scan(f.issue(t), 1)
	require.NoError(t, err)

	f.clock.Advance(2 * time.Minute)
	second := f.issue(t)
	_, err = f.scan(second, 1)
	rejection := requireRejection(t, err, ReasonAlreadyCheckedInToday)
	assert.Equal(t, http.StatusConflict, rejection.StatusCode())
	assert.Contains(t, rejection.Message, "attendance 1 at 08:00")

	_, err = f.scan(second, 2)
	assert.NoError(t, err)
	assert.Equal(t, 2, f.attendance.count())
}

func TestScan_DuplicateKeyOnInsertIsAlreadyCheckedIn(t *testing.T) {
	f := newEngineFixture(t, mondayStart)
	f.attendance.createErr = fmt.Errorf("%w: attendance_employee_work_date_key", repositories.ErrDuplicateKey)
	token := f.issue(t)

	_, err := f.scan(token, 1)
	requireRejection(t, err, ReasonAlreadyCheckedInToday)
}

func TestScan_ToleranceWindow(t *testing.T) {
	tests := []struct {
		name       string
		offset     time.Duration
		wantStatus string
		wantReject bool
	}{
		{"one second before earliest", -15*time.Minute - time.Second, "", true},
		{"exactly earliest", -15 * time.Minute, models.AttendanceStatusOnTime, false},
		{"before start", -5 * time.Minute, models.AttendanceStatusOnTime, false},
		{"exactly start", 0, models.AttendanceStatusOnTime, false},
		{"one second after start", time.Second, models.AttendanceStatusLate, false},
		{"ten minutes after start", 10 * time.Minute, models.AttendanceStatusLate, false},
		{"exactly latest", 15 * time.Minute, models.AttendanceStatusLate, false},
		{"one second after latest", 15*time.Minute + time.Second, "", true},
		{"twenty minutes after start", 20 * time.Minute, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngineFixture(t, mondayStart.Add(tt.offset))
			token := f.issue(t)

			res, err := f.scan(token, 1)
			if tt.wantReject {
				rejection := requireRejection(t, err, ReasonOutsideToleranceWindow)
				assert.Contains(t, rejection.Message, "07:45")
				assert.Contains(t, rejection.Message, "08:15")
				assert.Contains(t, rejection.Message, "08:00")
				assert.Zero(t, f.attendance.count())
				n, _ := f.store.Len(context.Background())
				assert.Equal(t, 1, n, "rejected scan must not consume the token")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)
		})
	}
}

func TestScan_WindowUsesConfiguredLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	// 08:05 in Jakarta is 01:05 UTC.
	now := time.Date(2026, 10, 19, 1, 5, 0, 0, time.UTC)
	f := newEngineFixture(t, now)
	f.svc = NewQRAttendanceService(f.store, f.employees, f.schedules, f.attendance, f.clock, time.Minute, jakarta)

	res, err := f.scan(f.issue(t), 1)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusLate, res.Status)
	assert.Equal(t, "2026-10-19", f.attendance.records[0].WorkDate)
}

func TestScan_InfrastructureFailureKeepsToken(t *testing.T) {
	f := newEngineFixture(t, mondayStart)
	f.attendance.createErr = fmt.Errorf("%w: connection reset", repositories.ErrDatabaseError)
	token := f.issue(t)

	_, err := f.scan(token, 1)
	require.Error(t, err)
	var rejection *ScanRejection
	assert.False(t, errors.As(err, &rejection))
	assert.ErrorIs(t, err, repositories.ErrDatabaseError)

	f.attendance.createErr = nil
	_, err = f.scan(token, 1)
	assert.NoError(t, err)
}

func TestScan_LookupFailureKeepsToken(t *testing.T) {
	f := newEngineFixture(t, mondayStart)
	token := f.issue(t)
	f.employees.err = repositories.ErrDatabaseError

	_, err := f.scan(token, 1)
	assert.ErrorIs(t, err, repositories.ErrDatabaseError)

	f.employees.err = nil
	_, err = f.scan(token, 1)
	assert.NoError(t, err)
}

func TestScan_ConcurrentScansHaveOneWinner(t *testing.T) {
	f := newEngineFixture(t, mondayStart)
	for id := int64(10); id < 30; id++ {
		f.employees.employees[id] = &models.Employee{ID: id, Name: fmt.Sprintf("Worker %d", id)}
		f.schedules.assign(id, 1, "Monday")
	}
	token := f.issue(t)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		invalid   int
	)
	for id := int64(10); id < 30; id++ {
		wg.Add(1)
		go func(employeeID int64) {
			defer wg.Done()
			_, err := f.scan(token, employeeID)
			mu.Lock()
			defer mu.Unlock()
			var rejection *ScanRejection
			switch {
			case err == nil:
				successes++
			case errors.As(err, &rejection) && rejection.Reason == ReasonInvalidOrExpiredToken:
				invalid++
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 19, invalid)
	assert.Equal(t, 1, f.attendance.count())
}

func TestScan_RejectedHolderDoesNotBlockRightfulEmployee(t *testing.T) {
	f := newEngineFixture(t, mondayStart.Add(5*time.Minute))
	token := f.issue(t)

	carolHolds := make(chan struct{})
	letCarolGo := make(chan struct{})
	f.employees.onGet = func(id int64) {
		if id == 3 {
			close(carolHolds)
			<-letCarolGo
		}
	}

	carolErr := make(chan error, 1)
	go func() {
		_, err := f.scan(token, 3)
		carolErr <- err
	}()
	<-carolHolds

	type outcome struct {
		result *ScanResult
		err    error
	}
	aliceDone := make(chan outcome, 1)
	go func() {
		result, err := f.scan(token, 1)
		aliceDone <- outcome{result, err}
	}()

	select {
	case o := <-aliceDone:
		t.Fatalf("alice finished while carol held the token: %v", o.err)
	case <-time.After(50 * time.Millisecond):
	}
	close(letCarolGo)

	requireRejection(t, <-carolErr, ReasonNotEligibleForShift)

	alice := <-aliceDone
	require.NoError(t, alice.err)
	assert.Equal(t, "Alice", alice.result.EmployeeName)
	assert.Equal(t, 1, f.attendance.count())

	n, err := f.store.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = f.scan(token, 2)
	requireRejection(t, err, ReasonInvalidOrExpiredToken)
}
