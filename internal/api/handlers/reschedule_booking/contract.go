package reschedule_booking

import (
	"context"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/bookings/models"
)

type BookingService interface {
	Reschedule(ctx context.Context, bookingID, actorID int64, req *models.RescheduleRequest) (*domain.Booking, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
