package attach_recording

import (
	"context"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
)

type BookingService interface {
	AttachRecording(ctx context.Context, bookingID, actorID int64, rawURL string) (*domain.Booking, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
