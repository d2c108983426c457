package get_session_availability

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/availability"
)

// UseCase use case проверки готовности сессии к подключению
type UseCase struct {
	bookingService BookingService
	tracker        SessionTracker
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
// loc - локация, в которой интерпретируется локальное время сессии
func NewUseCase(bookingService BookingService, tracker SessionTracker, loc *time.Location, logger Logger) *UseCase {
	return &UseCase{
		bookingService: bookingService,
		tracker:        tracker,
		timeProvider:   &LocationTimeProvider{Location: loc},
		logger:         logger,
	}
}

// Execute вычисляет окно доступности и выдает учётные данные, если подключение открыто
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.BookingID <= 0 {
		return nil, fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	// 1. Бронирование с проверкой участника
	booking, err := uc.bookingService.GetByID(ctx, req.BookingID, req.UserID)
	if err != nil {
		return nil, err
	}

	// 2. Окно доступности на текущий момент
	window, err := availability.Calculate(availability.FromBooking(booking), uc.timeProvider.Now())
	if err != nil {
		uc.logger.Error("GetSessionAvailability: booking id=%d has invalid schedule: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	resp := &Response{
		BookingID: booking.ID,
		Status:    booking.Status,
		IsPaid:    booking.IsPaid,
		Window:    window,
		Session:   uc.tracker.Snapshot(booking.ID),
	}

	if !window.CanGoLive {
		return resp, nil
	}

	// 3. Учётные данные только при открытом подключении
	resp.Credentials = uc.credentials(ctx, booking)
	return resp, nil
}

func (uc *UseCase) credentials(ctx context.Context, booking *domain.Booking) *domain.SessionCredentials {
	if !booking.Credentials.IsEmpty() {
		return booking.Credentials
	}

	updated, err := uc.bookingService.EnsureCredentials(ctx, booking.ID)
	if err != nil {
		uc.logger.Warn("GetSessionAvailability: credentials for booking id=%d unavailable: %v", booking.ID, err)
		return nil
	}
	if updated == nil || updated.Credentials.IsEmpty() {
		return nil
	}
	return updated.Credentials
}
