package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"attendance_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestAttendanceCreate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAttendanceRepository(db)

	checkIn := time.Date(2026, 10, 19, 8, 10, 0, 0, time.UTC)
	shiftID := int64(3)
	mock.ExpectQuery("INSERT INTO attendance").
		WithArgs(int64(9), checkIn, "2026-10-19", models.AttendanceStatusOnTime, shiftID, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(77), checkIn))

	rec, err := repo.Create(context.Background(), &models.Attendance{
		EmployeeID:     9,
		Date:           checkIn,
		WorkDate:       "2026-10-19",
		Status:         models.AttendanceStatusOnTime,
		WorkScheduleID: &shiftID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(77), rec.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceCreateDuplicateDay(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("INSERT INTO attendance").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "attendance_employee_work_date_key"})

	_, err := repo.Create(context.Background(), &models.Attendance{EmployeeID: 9, Date: time.Now(), WorkDate: "2026-10-19"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestAttendanceFindByEmployeeAndDate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAttendanceRepository(db)

	checkIn := time.Date(2026, 10, 19, 7, 55, 0, 0, time.UTC)
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM attendance").
		WithArgs(int64(9), "2026-10-19").
		WillReturnRows(sqlmock.NewRows([]string{"id", "employee_id", "date", "work_date", "status", "work_schedules_id", "created_at"}).
			AddRow(int64(5), int64(9), checkIn, day, "OnTime", nil, checkIn))

	rec, err := repo.FindByEmployeeAndDate(context.Background(), 9, "2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, int64(5), rec.ID)
	assert.Equal(t, "2026-10-19", rec.WorkDate)
	assert.Nil(t, rec.WorkScheduleID)
}

func TestAttendanceFindByEmployeeAndDateNone(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("FROM attendance").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmployeeAndDate(context.Background(), 9, "2026-10-19")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAttendanceListFiltersAndPaging(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAttendanceRepository(db)

	day := "2026-10-19"
	at := time.Date(2026, 10, 19, 8, 1, 0, 0, time.UTC)
	mock.ExpectQuery(`WHERE a.work_date = \$1 ORDER BY a.date DESC, a.id DESC LIMIT \$2 OFFSET \$3`).
		WithArgs(day, 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "employee_id", "name", "position", "date", "status", "ws_name", "total_count"}).
			AddRow(int64(1), int64(2), "Budi", "Engineer", at, "Late", "Morning", 11))

	list, total, err := repo.List(context.Background(), models.AttendanceFilters{WorkDate: &day, Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, list, 1)
	assert.Equal(t, "Budi", list[0].EmployeeName)
	require.NotNil(t, list[0].ScheduleName)
	assert.Equal(t, "Morning", *list[0].ScheduleName)
}
