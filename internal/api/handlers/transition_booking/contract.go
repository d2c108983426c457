package transition_booking

import (
	"context"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
)

// Transition переход статуса бронирования по действию участника
type Transition func(ctx context.Context, bookingID, actorID int64) (*domain.Booking, error)

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
