package pay_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	"github.com/m04kA/SMC-SessionBookingService/internal/infra/locker"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/payment"
)

// BookingService интерфейс сервиса бронирований
type BookingService interface {
	GetByID(ctx context.Context, id int64, userID int64) (*domain.Booking, error)
	MarkPaid(ctx context.Context, bookingID int64, outcome *payment.Outcome) (*domain.Booking, error)
}

// PaymentEngine движок проведения оплаты
type PaymentEngine interface {
	Reconcile(ctx context.Context, req *payment.Request) (*payment.Outcome, error)
}

// AttemptLocker блокировка "одна попытка оплаты на бронирование"
type AttemptLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (locker.Lock, error)
}

// OutcomeRecorder интерфейс для метрик итогов оплаты
type OutcomeRecorder interface {
	ObservePaymentOutcome(result, reason string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
