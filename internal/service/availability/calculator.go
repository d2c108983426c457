package availability

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	"github.com/m04kA/SMC-SessionBookingService/pkg/types"
)

// ErrInvalidInput возвращается при некорректной дате или времени сессии
var ErrInvalidInput = errors.New("availability: invalid input")

// Input расписание сессии и признак оплаты
type Input struct {
	BookingDate time.Time
	StartTime   types.TimeString
	EndTime     types.TimeString
	IsPaid      bool
}

// FromBooking собирает Input из бронирования
// Оплаченной считается только сессия в статусе paid с флагом isPaid
func FromBooking(b *domain.Booking) Input {
	return Input{
		BookingDate: b.BookingDate,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		IsPaid:      b.IsSettled(),
	}
}

// CrossesMidnight сессия переходит через полночь, если час окончания меньше часа начала
// Сравниваются только часы: 10:30-10:15 полночь не пересекает
func CrossesMidnight(start, end types.TimeString) bool {
	return end.Hour() < start.Hour()
}

// Calculate вычисляет окно доступности сессии на момент now
// Функция чистая: без ввода-вывода, безопасна для вызова на каждом опросе
//
// Время начала и окончания строится в локации now (локальное время того, кто вычисляет),
// метка часового пояса бронирования не применяется
func Calculate(in Input, now time.Time) (domain.AvailabilityWindow, error) {
	if in.BookingDate.IsZero() {
		return domain.AvailabilityWindow{}, fmt.Errorf("%w: booking date is required", ErrInvalidInput)
	}

	loc := now.Location()

	sessionStart, err := in.StartTime.On(in.BookingDate, loc)
	if err != nil {
		return domain.AvailabilityWindow{}, fmt.Errorf("%w: start time: %v", ErrInvalidInput, err)
	}
	sessionEnd, err := in.EndTime.On(in.BookingDate, loc)
	if err != nil {
		return domain.AvailabilityWindow{}, fmt.Errorf("%w: end time: %v", ErrInvalidInput, err)
	}

	if CrossesMidnight(in.StartTime, in.EndTime) {
		sessionEnd = sessionEnd.AddDate(0, 0, 1)
	}

	// Момент окончания сам по себе ещё не "over"
	isOver := now.After(sessionEnd)

	goLiveOpensAt := sessionStart.Add(-domain.GoLiveBuffer)

	canGoLive := in.IsPaid && !now.Before(goLiveOpensAt) && !now.After(sessionEnd)

	var timeUntilOpen *time.Duration
	if d := goLiveOpensAt.Sub(now); d > 0 {
		timeUntilOpen = &d
	}

	isUpcoming := in.IsPaid && !isOver && !sessionStart.After(now.Add(domain.UpcomingHorizon))

	return domain.AvailabilityWindow{
		CanGoLive:     canGoLive,
		IsOver:        isOver,
		IsUpcoming:    isUpcoming,
		TimeUntilOpen: timeUntilOpen,
		SessionStart:  sessionStart,
		SessionEnd:    sessionEnd,
		GoLiveOpensAt: goLiveOpensAt,
	}, nil
}

// UpcomingPredicate предикат для списков: оплаченные сессии, начинающиеся в ближайшие 7 дней
func UpcomingPredicate(now time.Time) domain.BookingPredicate {
	return func(b *domain.Booking) bool {
		w, err := Calculate(FromBooking(b), now)
		if err != nil {
			return false
		}
		return w.IsUpcoming
	}
}
