package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestCreateShift_NormalizesTimes(t *testing.T) {
	svc := NewWorkScheduleService(newFakeScheduleRepo())

	shift, err := svc.CreateShift(context.Background(), WorkScheduleRequest{
		Name: " Night ", StartTime: "22:00:00", EndTime: "6:00", ToleranceMinutes: intPtr(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "Night", shift.Name)
	assert.Equal(t, "22:00", shift.StartTime)
	assert.Equal(t, "06:00", shift.EndTime)
	assert.Equal(t, 10, shift.ToleranceMinutes)
}

func TestCreateShift_DefaultTolerance(t *testing.T) {
	svc := NewWorkScheduleService(newFakeScheduleRepo())

	shift, err := svc.CreateShift(context.Background(), WorkScheduleRequest{Name: "Day", StartTime: "09:00", EndTime: "17:00"})
	require.NoError(t, err)
	assert.Zero(t, shift.ToleranceMinutes)
}

func TestCreateShift_Validation(t *testing.T) {
	svc := NewWorkScheduleService(newFakeScheduleRepo())

	tests := []struct {
		name string
		req  WorkScheduleRequest
	}{
		{"missing name", WorkScheduleRequest{StartTime: "08:00", EndTime: "16:00"}},
		{"bad start", WorkScheduleRequest{Name: "A", StartTime: "25:00", EndTime: "16:00"}},
		{"bad end", WorkScheduleRequest{Name: "A", StartTime: "08:00", EndTime: "four"}},
		{"negative tolerance", WorkScheduleRequest{Name: "A", StartTime: "08:00", EndTime: "16:00", ToleranceMinutes: intPtr(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateShift(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}
