package payment

import (
	"context"
	"time"
)

// Gateway внешний платёжный шлюз
// Каждый метод возвращает либо результат со статусом intent, либо *GatewayError
type Gateway interface {
	RetrieveIntent(ctx context.Context, clientSecret string) (*IntentResult, error)
	ConfirmPayment(ctx context.Context, clientSecret string, instrument Instrument, billing BillingDetails) (*IntentResult, error)
	HandleRequiredAction(ctx context.Context, clientSecret string) (*IntentResult, error)
}

// Recorder интерфейс для метрик обращений к шлюзу
type Recorder interface {
	ObserveGatewayCall(operation, result string, d time.Duration)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
