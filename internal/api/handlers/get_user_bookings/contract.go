package get_user_bookings

import (
	"context"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/bookings/models"
)

type BookingService interface {
	List(ctx context.Context, req *models.ListRequest) ([]*domain.Booking, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
