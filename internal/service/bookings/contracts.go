package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	"github.com/m04kA/SMC-SessionBookingService/internal/integrations/stripegateway"
	"github.com/m04kA/SMC-SessionBookingService/internal/integrations/videoservice"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/sessionevents"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// IntentIssuer выпускает и отменяет payment intent в платёжном шлюзе
type IntentIssuer interface {
	CreateIntent(ctx context.Context, req stripegateway.IntentRequest) (*stripegateway.Intent, error)
	CancelIntent(ctx context.Context, intentID string) error
}

// VideoServiceClient интерфейс клиента для VideoService
type VideoServiceClient interface {
	IssueCredentials(ctx context.Context, req videoservice.IssueRequest) (*videoservice.Credentials, error)
	RevokeCredentials(ctx context.Context, bookingID int64) error
}

// EventPublisher публикует события видеосессий
type EventPublisher interface {
	Publish(e sessionevents.Event) error
}

// TransitionRecorder интерфейс для метрик переходов статусов
type TransitionRecorder interface {
	ObserveTransition(from, to string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
