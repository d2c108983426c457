package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SessionBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/availability"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/sessionevents"
)

// Service владеет машиной состояний бронирования
// Единственный компонент, который пишет статус, флаги оплаты и учётные данные сессии
type Service struct {
	bookingRepo  BookingRepository
	txManager    TransactionManager
	issuer       IntentIssuer
	videoClient  VideoServiceClient
	events       EventPublisher
	recorder     TransitionRecorder
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	txManager TransactionManager,
	issuer IntentIssuer,
	videoClient VideoServiceClient,
	events EventPublisher,
	recorder TransitionRecorder,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		txManager:    txManager,
		issuer:       issuer,
		videoClient:  videoClient,
		events:       events,
		recorder:     recorder,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// GetByID получает бронирование по ID
// Видеть бронирование могут только его участники
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*domain.Booking, error) {
	booking, err := s.load(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !booking.IsParticipant(userID) {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, ErrAccessDenied
	}

	return booking, nil
}

// List возвращает бронирования участника, отфильтрованные предикатами списка
func (s *Service) List(ctx context.Context, req *models.ListRequest) ([]*domain.Booking, error) {
	s.logger.Info("List: user=%d role=%v status=%v needsPayment=%t upcoming=%t",
		req.UserID, req.Role, req.Status, req.NeedsPayment, req.Upcoming)

	if req.ActorID != req.UserID {
		s.logger.Warn("List: user=%d requested bookings of user=%d", req.ActorID, req.UserID)
		return nil, ErrAccessDenied
	}

	bookings, err := s.bookingRepo.ListByUser(ctx, domain.BookingsFilter{
		UserID: req.UserID,
		Role:   req.Role,
		Status: req.Status,
	})
	if err != nil {
		s.logger.Error("List: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	var predicates []domain.BookingPredicate
	if req.NeedsPayment {
		// Оплачивает только заказчик
		predicates = append(predicates, domain.ByRole(req.UserID, domain.RoleRequester), domain.NeedsPaymentOnly())
	}
	if req.Upcoming {
		predicates = append(predicates, availability.UpcomingPredicate(s.timeProvider.Now()))
	}

	result := domain.Apply(bookings, domain.And(predicates...))
	s.logger.Info("List: %d of %d bookings matched for user=%d", len(result), len(bookings), req.UserID)
	return result, nil
}

// load читает бронирование вне транзакции
func (s *Service) load(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(op, id, err)
	}
	return booking, nil
}

// mutate применяет изменение к бронированию атомарно: чтение с блокировкой строки, проверка, запись
// fn получает копию и может вернуть errNoop, тогда возвращается текущий снимок без записи
func (s *Service) mutate(ctx context.Context, op string, id int64, fn func(b *domain.Booking) error) (*domain.Booking, error) {
	return s.mutateTx(ctx, op, id, func(_ context.Context, b *domain.Booking) error {
		return fn(b)
	})
}

// mutateTx как mutate, но fn получает контекст транзакции для дополнительных чтений под той же блокировкой
func (s *Service) mutateTx(ctx context.Context, op string, id int64, fn func(txCtx context.Context, b *domain.Booking) error) (*domain.Booking, error) {
	var (
		result *domain.Booking
		from   domain.BookingStatus
	)

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		current, err := s.bookingRepo.GetByID(txCtx, id)
		if err != nil {
			return s.mapRepoError(op, id, err)
		}
		from = current.Status

		next := current.Clone()
		if err := fn(txCtx, next); err != nil {
			if errors.Is(err, errNoop) {
				result = current
				return nil
			}
			return err
		}

		if next.Status != current.Status && !current.Status.CanTransitionTo(next.Status) {
			s.logger.Error("%s: DEFECT booking id=%d attempted %s -> %s", op, id, current.Status, next.Status)
			return fmt.Errorf("%w: %s -> %s is not in the transition graph", ErrInvariantViolation, current.Status, next.Status)
		}

		updated, err := s.bookingRepo.Update(txCtx, next)
		if err != nil {
			return s.mapRepoError(op, id, err)
		}
		result = updated
		return nil
	})
	if err != nil {
		return nil, s.passThrough(op, id, err)
	}

	if result.Status != from {
		s.recorder.ObserveTransition(string(from), string(result.Status))
		s.logger.Info("%s: booking id=%d %s -> %s", op, id, from, result.Status)
	}
	return result, nil
}

func (s *Service) mapRepoError(op string, id int64, err error) error {
	if errors.Is(err, bookingRepo.ErrBookingNotFound) {
		s.logger.Warn("%s: booking id=%d not found", op, id)
		return ErrBookingNotFound
	}
	s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

// passThrough пропускает ошибки сервиса из транзакции как есть, остальное (begin/commit) - внутренняя ошибка
func (s *Service) passThrough(op string, id int64, err error) error {
	for _, known := range []error{ErrBookingNotFound, ErrAccessDenied, ErrValidation, ErrStateConflict, ErrInvariantViolation, ErrInternal} {
		if errors.Is(err, known) {
			return err
		}
	}
	s.logger.Error("%s: transaction error for booking id=%d: %v", op, id, err)
	return fmt.Errorf("%w: %s - transaction error: %v", ErrInternal, op, err)
}

func (s *Service) publish(bookingID int64, eventType sessionevents.EventType, userID int64) {
	err := s.events.Publish(sessionevents.Event{
		BookingID: bookingID,
		Type:      eventType,
		UserID:    userID,
		At:        s.timeProvider.Now(),
	})
	if err != nil {
		s.logger.Warn("publish: booking id=%d event=%s: %v", bookingID, eventType, err)
	}
}

func conflict(b *domain.Booking, op string) error {
	return fmt.Errorf("%w: cannot %s booking id=%d in status %s", ErrStateConflict, op, b.ID, b.Status)
}
