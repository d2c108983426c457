package payment

import "fmt"

// IntentStatus статус payment intent в словаре шлюза
type IntentStatus string

const (
	StatusSucceeded             IntentStatus = "succeeded"
	StatusRequiresPaymentMethod IntentStatus = "requires_payment_method"
	StatusRequiresConfirmation  IntentStatus = "requires_confirmation"
	StatusRequiresAction        IntentStatus = "requires_action"
	StatusProcessing            IntentStatus = "processing"
	StatusCanceled              IntentStatus = "canceled"
)

// IntentResult ответ шлюза
type IntentResult struct {
	IntentID string
	Status   IntentStatus
	Amount   int64  // в минимальных единицах валюты
	Currency string

	// NextAction заполнен, пока intent в статусе requires_action
	NextAction *NextAction
}

// Типы next_action, которые клиент умеет обработать
const (
	NextActionRedirectToURL = "redirect_to_url"
	NextActionUseStripeSDK  = "use_stripe_sdk"
)

// NextAction действие, которое должен выполнить клиент (3-D Secure challenge)
// Для redirect_to_url клиент открывает RedirectURL; для use_stripe_sdk
// вызывает handleNextAction в Stripe.js с client secret бронирования
type NextAction struct {
	Type        string
	RedirectURL string
	ReturnURL   string
}

// Instrument платёжное средство, токенизированное на клиенте (например, pm_...)
type Instrument struct {
	PaymentMethodID string
}

// BillingDetails платёжные данные плательщика
type BillingDetails struct {
	Name       string
	Email      string
	Phone      string
	PostalCode string
	Country    string
}

// Request запрос на проведение оплаты
type Request struct {
	BookingID    int64
	ClientSecret string
	Instrument   Instrument
	Billing      BillingDetails
}

// Outcome итог успешной оплаты
type Outcome struct {
	IntentID   string
	Status     IntentStatus
	Amount     int64
	Currency   string
	RetryCount int  // сколько раз протокол перезапускался после step-up аутентификации
	Confirmed  bool // false, если intent уже был оплачен ранее (идемпотентный повтор)
}

// Attempt локальная запись одной попытки оплаты, живёт только внутри Reconcile
type Attempt struct {
	ClientSecret  string
	GatewayStatus IntentStatus
	RetryCount    int
}

// Error categories and codes used by gateway errors
const (
	ErrorTypeCard           = "card_error"
	ErrorTypeValidation     = "validation_error"
	ErrorTypeInvalidRequest = "invalid_request_error"
	ErrorTypeAPI            = "api_error"

	ErrorCodeResourceMissing       = "resource_missing"
	ErrorCodeAuthenticationFailure = "payment_intent_authentication_failure"
)

// GatewayError ошибка, возвращённая шлюзом
type GatewayError struct {
	Type    string
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error type=%s code=%s: %s", e.Type, e.Code, e.Message)
}
