package availability

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
)

// ErrInvalidWindow возвращается, если окно сессии не проходит проверку
var ErrInvalidWindow = errors.New("availability: invalid session window")

// ValidateWindow проверяет запрошенное окно сессии до сохранения
//   - дата указана и не раньше сегодняшнего дня (по now)
//   - время в формате HH:MM
//   - окончание позже начала, кроме перехода через полночь
//   - метка часового пояса, если указана, должна быть известна
func ValidateWindow(w domain.ScheduleWindow, now time.Time) error {
	if w.BookingDate.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidWindow)
	}
	if isDateInPast(w.BookingDate, now) {
		return fmt.Errorf("%w: date %s is in the past", ErrInvalidWindow, w.BookingDate.Format(domain.DateFormat))
	}

	if err := w.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: startTime: %v", ErrInvalidWindow, err)
	}
	if err := w.EndTime.Validate(); err != nil {
		return fmt.Errorf("%w: endTime: %v", ErrInvalidWindow, err)
	}

	if !CrossesMidnight(w.StartTime, w.EndTime) && !w.EndTime.IsAfter(w.StartTime) {
		return fmt.Errorf("%w: endTime %s must be after startTime %s", ErrInvalidWindow, w.EndTime, w.StartTime)
	}

	if w.Timezone != nil {
		tz := strings.TrimSpace(*w.Timezone)
		if tz == "" {
			return fmt.Errorf("%w: timezone is empty", ErrInvalidWindow)
		}
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("%w: unknown timezone %q", ErrInvalidWindow, tz)
		}
	}

	return nil
}

// isDateInPast проверяет, что дата раньше сегодняшнего дня
func isDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return dateOnly.Before(nowOnly)
}
