package get_session_availability

import (
	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/sessionevents"
)

// Request модель запроса доступности сессии
type Request struct {
	BookingID int64
	UserID    int64
}

// Response решение о возможности подключиться к сессии
type Response struct {
	BookingID int64
	Status    domain.BookingStatus
	IsPaid    bool
	Window    domain.AvailabilityWindow

	// Только при CanGoLive
	Credentials *domain.SessionCredentials

	Session sessionevents.State
}
