package get_session_availability

import (
	"context"

	getAvailability "github.com/m04kA/SMC-SessionBookingService/internal/usecase/get_session_availability"
)

type GetSessionAvailabilityUseCase interface {
	Execute(ctx context.Context, req *getAvailability.Request) (*getAvailability.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
