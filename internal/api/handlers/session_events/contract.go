package session_events

import (
	"context"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/sessionevents"
)

type BookingService interface {
	GetByID(ctx context.Context, id int64, userID int64) (*domain.Booking, error)
}

type EventPublisher interface {
	Publish(e sessionevents.Event) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
