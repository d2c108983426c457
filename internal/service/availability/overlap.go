package availability

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	"github.com/m04kA/SMC-SessionBookingService/pkg/ptr"
	"github.com/m04kA/SMC-SessionBookingService/pkg/types"
)

// SessionInterval абсолютные границы сессии в UTC с учётом перехода через полночь
func SessionInterval(date time.Time, start, end types.TimeString) (time.Time, time.Time, error) {
	from, err := start.On(date, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := end.On(date, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if CrossesMidnight(start, end) {
		to = to.AddDate(0, 0, 1)
	}
	return from, to, nil
}

// ProviderSessionsAround фильтр репозитория для проверки занятости исполнителя
// Сессия прошлого дня может перейти через полночь, поэтому берутся соседние дни
func ProviderSessionsAround(providerID int64, date time.Time) domain.BookingsFilter {
	return domain.BookingsFilter{
		UserID:    providerID,
		Role:      ptr.Ptr(domain.RoleProvider),
		StartDate: ptr.Ptr(date.AddDate(0, 0, -1)),
		EndDate:   ptr.Ptr(date.AddDate(0, 0, 1)),
	}
}

// CountOverlapping считает активные сессии, пересекающиеся с [from, to)
// Бронирования, подходящие под skip, не учитываются (nil - учитываются все)
func CountOverlapping(from, to time.Time, bookings []*domain.Booking, skip domain.BookingPredicate) (int, error) {
	counted := domain.ByStatus(domain.ActiveStatuses...)
	if skip != nil {
		counted = domain.And(counted, domain.Not(skip))
	}

	count := 0
	for _, b := range domain.Apply(bookings, counted) {
		bFrom, bTo, err := SessionInterval(b.BookingDate, b.StartTime, b.EndTime)
		if err != nil {
			return 0, fmt.Errorf("booking id=%d: %v", b.ID, err)
		}
		if from.Before(bTo) && bFrom.Before(to) {
			count++
		}
	}
	return count, nil
}
