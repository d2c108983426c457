package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	"github.com/m04kA/SMC-SessionBookingService/pkg/ptr"
)

func TestValidateWindow(t *testing.T) {
	now := at(day, 12, 0, 0)

	valid := []domain.ScheduleWindow{
		{BookingDate: day, StartTime: "10:00", EndTime: "11:00"},
		{BookingDate: day, StartTime: "23:30", EndTime: "00:15"},
		{BookingDate: day.AddDate(0, 0, 3), StartTime: "09:00", EndTime: "09:45", Timezone: ptr.Ptr("UTC")},
	}
	for _, w := range valid {
		assert.NoError(t, ValidateWindow(w, now), "%s-%s", w.StartTime, w.EndTime)
	}

	invalid := []domain.ScheduleWindow{
		{StartTime: "10:00", EndTime: "11:00"},
		{BookingDate: day.AddDate(0, 0, -1), StartTime: "10:00", EndTime: "11:00"},
		{BookingDate: day, StartTime: "10:00", EndTime: "10:00"},
		{BookingDate: day, StartTime: "11:00", EndTime: "10:00"},
		// тот же час: перехода через полночь нет
		{BookingDate: day, StartTime: "10:30", EndTime: "10:15"},
		{BookingDate: day, StartTime: "25:00", EndTime: "26:00"},
		{BookingDate: day, StartTime: "10:00", EndTime: "11:00", Timezone: ptr.Ptr("Mars/Olympus")},
		{BookingDate: day, StartTime: "10:00", EndTime: "11:00", Timezone: ptr.Ptr(" ")},
	}
	for _, w := range invalid {
		assert.ErrorIs(t, ValidateWindow(w, now), ErrInvalidWindow, "%s-%s", w.StartTime, w.EndTime)
	}
}
