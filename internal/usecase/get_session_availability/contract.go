package get_session_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/sessionevents"
)

// BookingService интерфейс сервиса бронирований
type BookingService interface {
	GetByID(ctx context.Context, id int64, userID int64) (*domain.Booking, error)
	EnsureCredentials(ctx context.Context, bookingID int64) (*domain.Booking, error)
}

// SessionTracker состояние видеосессий по событиям транспорта
type SessionTracker interface {
	Snapshot(bookingID int64) sessionevents.State
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// LocationTimeProvider текущее время в локации, где вычисляется доступность
type LocationTimeProvider struct {
	Location *time.Location
}

// Now возвращает текущее время в заданной локации
func (p *LocationTimeProvider) Now() time.Time {
	if p.Location == nil {
		return time.Now()
	}
	return time.Now().In(p.Location)
}
