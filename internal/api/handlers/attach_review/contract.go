package attach_review

import (
	"context"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
)

type BookingService interface {
	AttachReview(ctx context.Context, bookingID, actorID int64, text string) (*domain.Booking, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
