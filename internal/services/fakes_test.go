package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"attendance_backend/internal/models"
	"attendance_backend/internal/repositories"
)

// Fakes embed the repository interfaces; calling a method a test did not
// expect panics on the nil embedded value.

type fakeEmployeeRepo struct {
	repositories.EmployeeRepository
	mu        sync.Mutex
	employees map[int64]*models.Employee
	err       error
	// onGet runs at the start of GetByID, outside the lock.
	onGet func(id int64)
}

func newFakeEmployeeRepo(employees ...*models.Employee) *fakeEmployeeRepo {
	r := &fakeEmployeeRepo{employees: map[int64]*models.Employee{}}
	for _, e := range employees {
		r.employees[e.ID] = e
	}
	return r
}

func (r *fakeEmployeeRepo) GetByID(_ context.Context, id int64) (*models.Employee, error) {
	if r.onGet != nil {
		r.onGet(id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	e, ok := r.employees[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEmployeeRepo) GetByEmail(_ context.Context, email string) (*models.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.employees {
		if strings.EqualFold(e.Email, email) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeEmployeeRepo) Exists(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.employees[id]
	return ok, nil
}

type fakeScheduleRepo struct {
	repositories.WorkScheduleRepository
	mu          sync.Mutex
	shifts      map[int64]*models.WorkShift
	days        map[int64]string
	assignments []models.EmployeeSchedule
	err         error
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	days := map[int64]string{}
	for i, name := range []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"} {
		days[int64(i+1)] = name
	}
	return &fakeScheduleRepo{shifts: map[int64]*models.WorkShift{}, days: days}
}

func (r *fakeScheduleRepo) addShift(id int64, name, start, end string, tolerance int) *models.WorkShift {
	s := &models.WorkShift{ID: id, Name: name, StartTime: start, EndTime: end, ToleranceMinutes: tolerance}
	r.shifts[id] = s
	return s
}

func (r *fakeScheduleRepo) assign(employeeID, shiftID int64, weekday string) {
	for id, name := range r.days {
		if name == weekday {
			r.assignments = append(r.assignments, models.EmployeeSchedule{
				ID:              int64(len(r.assignments) + 1),
				EmployeeID:      employeeID,
				WorkScheduleID:  shiftID,
				DailyScheduleID: id,
			})
			return
		}
	}
	panic("unknown weekday " + weekday)
}

func (r *fakeScheduleRepo) GetShiftByID(_ context.Context, id int64) (*models.WorkShift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	s, ok := r.shifts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeScheduleRepo) FindAssignments(_ context.Context, filter models.AssignmentFilter) ([]models.EmployeeScheduleView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	views := []models.EmployeeScheduleView{}
	for _, a := range r.assignments {
		if a.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.ShiftID != nil && a.WorkScheduleID != *filter.ShiftID {
			continue
		}
		day := r.days[a.DailyScheduleID]
		if filter.Weekday != nil && !strings.EqualFold(day, *filter.Weekday) {
			continue
		}
		s := r.shifts[a.WorkScheduleID]
		views = append(views, models.EmployeeScheduleView{
			AssignmentID:     a.ID,
			ScheduleID:       s.ID,
			ScheduleName:     s.Name,
			DayID:            a.DailyScheduleID,
			DayName:          day,
			StartTime:        s.StartTime,
			EndTime:          s.EndTime,
			ToleranceMinutes: s.ToleranceMinutes,
		})
	}
	return views, nil
}

type fakeAttendanceRepo struct {
	repositories.AttendanceRepository
	mu        sync.Mutex
	records     []models.Attendance
	createErr   error
	findErr     error
	lastFilters models.AttendanceFilters
}

func (r *fakeAttendanceRepo) Create(_ context.Context, a *models.Attendance) (*models.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.records {
		if existing.EmployeeID == a.EmployeeID && existing.WorkDate == a.WorkDate {
			return nil, repositories.ErrDuplicateKey
		}
	}
	a.ID = int64(len(r.records) + 1)
	a.CreatedAt = time.Now()
	r.records = append(r.records, *a)
	return a, nil
}

func (r *fakeAttendanceRepo) FindByEmployeeAndDate(_ context.Context, employeeID int64, workDate string) (*models.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, a := range r.records {
		if a.EmployeeID == employeeID && a.WorkDate == workDate {
			cp := a
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeAttendanceRepo) List(_ context.Context, filters models.AttendanceFilters) ([]models.AttendanceView, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilters = filters
	var out []models.AttendanceView
	for _, a := range r.records {
		if filters.EmployeeID != nil && a.EmployeeID != *filters.EmployeeID {
			continue
		}
		if filters.WorkDate != nil && a.WorkDate != *filters.WorkDate {
			continue
		}
		out = append(out, models.AttendanceView{
			AttendanceID:   a.ID,
			EmployeeID:     a.EmployeeID,
			AttendanceDate: a.Date,
			Status:         a.Status,
		})
	}
	return out, len(out), nil
}

func (r *fakeAttendanceRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func (r *fakeEmployeeRepo) Create(_ context.Context, e *models.Employee) (*models.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.employees {
		if existing.NIK == e.NIK {
			return nil, fmt.Errorf("%w: (constraint: employee_nik_key)", repositories.ErrDuplicateKey)
		}
		if existing.Email == e.Email {
			return nil, fmt.Errorf("%w: (constraint: employee_email_key)", repositories.ErrDuplicateKey)
		}
	}
	e.ID = int64(len(r.employees) + 100)
	cp := *e
	r.employees[e.ID] = &cp
	return e, nil
}

func (r *fakeEmployeeRepo) Update(_ context.Context, e *models.Employee) (*models.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.employees[e.ID]; !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *e
	r.employees[e.ID] = &cp
	return e, nil
}

func (r *fakeEmployeeRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.employees[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.employees, id)
	return nil
}

type fakeAdminRepo struct {
	repositories.AdminRepository
	admins map[int64]*models.Admin
}

func (r *fakeAdminRepo) GetByID(_ context.Context, id int64) (*models.Admin, error) {
	a, ok := r.admins[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAdminRepo) GetByEmail(_ context.Context, email string) (*models.Admin, error) {
	for _, a := range r.admins {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeAdminRepo) Create(_ context.Context, a *models.Admin) (*models.Admin, error) {
	for _, existing := range r.admins {
		if existing.Email == a.Email {
			return nil, repositories.ErrDuplicateKey
		}
	}
	a.ID = int64(len(r.admins) + 1)
	cp := *a
	r.admins[a.ID] = &cp
	return a, nil
}

func (r *fakeScheduleRepo) CreateShift(_ context.Context, s *models.WorkShift) (*models.WorkShift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = int64(len(r.shifts) + 1)
	cp := *s
	r.shifts[s.ID] = &cp
	return s, nil
}

func (r *fakeScheduleRepo) GetDailyScheduleByID(_ context.Context, id int64) (*models.DailySchedule, error) {
	name, ok := r.days[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &models.DailySchedule{ID: id, Name: name}, nil
}

func (r *fakeScheduleRepo) CreateAssignment(_ context.Context, a *models.EmployeeSchedule) (*models.EmployeeSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.assignments {
		if existing.EmployeeID == a.EmployeeID && existing.WorkScheduleID == a.WorkScheduleID && existing.DailyScheduleID == a.DailyScheduleID {
			return nil, repositories.ErrDuplicateKey
		}
	}
	a.ID = int64(len(r.assignments) + 1)
	r.assignments = append(r.assignments, *a)
	return a, nil
}

func (r *fakeScheduleRepo) DeleteAssignment(_ context.Context, employeeID, assignmentID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.assignments {
		if a.ID == assignmentID && a.EmployeeID == employeeID {
			r.assignments = append(r.assignments[:i], r.assignments[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}
