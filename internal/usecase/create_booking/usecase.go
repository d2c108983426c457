package create_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	catalogClient "github.com/m04kA/SMC-SessionBookingService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/availability"
)

// UseCase use case для создания бронирования (requestBooking)
type UseCase struct {
	bookingRepo   BookingRepository
	catalogClient CatalogServiceClient
	txManager     TransactionManager
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	catalogClient CatalogServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		catalogClient: catalogClient,
		txManager:     txManager,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет use case создания бронирования
// Проверка занятости исполнителя и вставка выполняются в одной сериализуемой транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: requester=%d, provider=%d, service=%d, date=%s, time=%s-%s",
		req.RequesterID, req.ProviderID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime, req.EndTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем исполнителя
	provider, err := uc.catalogClient.GetProvider(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrProviderNotFound) {
			uc.logger.Warn("CreateBooking: provider id=%d not found", req.ProviderID)
			return nil, ErrProviderNotFound
		}
		uc.logger.Error("CreateBooking: failed to get provider id=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}
	if !provider.IsActive {
		uc.logger.Warn("CreateBooking: provider id=%d is not active", req.ProviderID)
		return nil, fmt.Errorf("%w: provider id=%d is not active", ErrProviderNotFound, req.ProviderID)
	}

	// 3. Получаем услугу исполнителя
	service, err := uc.catalogClient.GetService(ctx, req.ProviderID, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found for provider id=%d", req.ServiceID, req.ProviderID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 4. Окно сессии
	endTime, err := resolveEndTime(req, service.DurationMinutes)
	if err != nil {
		uc.logger.Warn("CreateBooking: %v", err)
		return nil, err
	}

	window := domain.ScheduleWindow{
		BookingDate: req.Date,
		StartTime:   req.StartTime,
		EndTime:     endTime,
		Timezone:    resolveTimezone(req.Timezone, provider.Timezone),
	}
	if err := availability.ValidateWindow(window, uc.timeProvider.Now()); err != nil {
		uc.logger.Warn("CreateBooking: window validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}

	currency := strings.ToLower(strings.TrimSpace(service.Currency))
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	var result *domain.Booking

	// 5. Проверка занятости и вставка в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		from, to, err := availability.SessionInterval(window.BookingDate, window.StartTime, window.EndTime)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidWindow, err)
		}

		bookings, err := uc.bookingRepo.ListByUser(txCtx, availability.ProviderSessionsAround(req.ProviderID, window.BookingDate))
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get provider bookings: %v", err)
			return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}

		overlapping, err := availability.CountOverlapping(from, to, bookings, nil)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to count overlapping bookings: %v", err)
			return fmt.Errorf("%w: failed to count overlapping bookings: %v", ErrInternal, err)
		}
		if overlapping > 0 {
			uc.logger.Warn("CreateBooking: provider id=%d has %d active sessions at %s %s-%s",
				req.ProviderID, overlapping, window.BookingDate.Format(domain.DateFormat), window.StartTime, window.EndTime)
			return ErrSlotNotAvailable
		}

		booking := &domain.Booking{
			RequesterID: req.RequesterID,
			ProviderID:  req.ProviderID,
			ServiceID:   req.ServiceID,
			BookingDate: window.BookingDate,
			StartTime:   window.StartTime,
			EndTime:     window.EndTime,
			Timezone:    window.Timezone,
			Status:      domain.StatusAwaitingApproval,
			// Денормализация данных услуги
			ServiceName: service.Name,
			Price:       service.Price,
			Currency:    currency,
			Notes:       req.Notes,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = created
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotNotAvailable) || errors.Is(err, ErrInvalidWindow) || errors.Is(err, ErrInternal) {
			return nil, err
		}
		uc.logger.Error("CreateBooking: transaction error: %v", err)
		return nil, fmt.Errorf("%w: transaction error: %v", ErrInternal, err)
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d", result.ID)

	return &Response{
		ID:          result.ID,
		RequesterID: result.RequesterID,
		ProviderID:  result.ProviderID,
		ServiceID:   result.ServiceID,
		BookingDate: result.BookingDate,
		StartTime:   result.StartTime,
		EndTime:     result.EndTime,
		Timezone:    result.Timezone,
		Status:      string(result.Status),
		ServiceName: result.ServiceName,
		Price:       result.Price,
		Currency:    result.Currency,
		Notes:       result.Notes,
		CreatedAt:   result.CreatedAt,
		UpdatedAt:   result.UpdatedAt,
	}, nil
}
