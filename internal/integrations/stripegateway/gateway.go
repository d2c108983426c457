package stripegateway

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/m04kA/SMC-SessionBookingService/internal/service/payment"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Gateway адаптер Stripe Payment Intents
// Реализует payment.Gateway (протокол оплаты) и выпуск/отмену intent для жизненного цикла бронирования
type Gateway struct {
	api       *client.API
	returnURL string
	log       Logger
}

// New создает адаптер Stripe
func New(cfg Config, log Logger) *Gateway {
	var backends *stripe.Backends
	if cfg.APIURL != "" {
		backends = &stripe.Backends{
			API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
				URL:               stripe.String(cfg.APIURL),
				MaxNetworkRetries: stripe.Int64(0),
				LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
			}),
		}
	}

	return &Gateway{
		api:       client.New(cfg.SecretKey, backends),
		returnURL: cfg.ReturnURL,
		log:       log,
	}
}

// RetrieveIntent получает текущее состояние intent по client secret
func (g *Gateway) RetrieveIntent(ctx context.Context, clientSecret string) (*payment.IntentResult, error) {
	id, err := payment.IntentIDFromClientSecret(clientSecret)
	if err != nil {
		return nil, &payment.GatewayError{Type: payment.ErrorTypeInvalidRequest, Message: err.Error()}
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, mapError(err)
	}

	// Секрет от чужого или пересозданного intent
	if pi.ClientSecret != "" && pi.ClientSecret != clientSecret {
		return nil, &payment.GatewayError{
			Type:    payment.ErrorTypeInvalidRequest,
			Code:    payment.ErrorCodeResourceMissing,
			Message: "client secret does not match payment intent",
		}
	}

	return toResult(pi), nil
}

// ConfirmPayment подтверждает intent выбранным платёжным средством
func (g *Gateway) ConfirmPayment(ctx context.Context, clientSecret string, instrument payment.Instrument, billing payment.BillingDetails) (*payment.IntentResult, error) {
	id, err := payment.IntentIDFromClientSecret(clientSecret)
	if err != nil {
		return nil, &payment.GatewayError{Type: payment.ErrorTypeInvalidRequest, Message: err.Error()}
	}

	if meta := billingMetadata(billing); len(meta) > 0 {
		update := &stripe.PaymentIntentParams{}
		update.Context = ctx
		for k, v := range meta {
			update.AddMetadata(k, v)
		}
		if _, err := g.api.PaymentIntents.Update(id, update); err != nil {
			return nil, mapError(err)
		}
	}

	params := &stripe.PaymentIntentConfirmParams{}
	params.Context = ctx
	if instrument.PaymentMethodID != "" {
		params.PaymentMethod = stripe.String(instrument.PaymentMethodID)
	}
	if billing.Email != "" {
		params.ReceiptEmail = stripe.String(billing.Email)
	}
	if g.returnURL != "" {
		params.ReturnURL = stripe.String(g.returnURL)
	}

	pi, err := g.api.PaymentIntents.Confirm(id, params)
	if err != nil {
		return nil, mapError(err)
	}
	return toResult(pi), nil
}

// HandleRequiredAction перечитывает intent после step-up аутентификации
// Challenge клиент проходит сам по next_action. Если статус всё ещё requires_action,
// результат несёт NextAction, и движок возвращает его клиенту вместо повторного цикла
func (g *Gateway) HandleRequiredAction(ctx context.Context, clientSecret string) (*payment.IntentResult, error) {
	id, err := payment.IntentIDFromClientSecret(clientSecret)
	if err != nil {
		return nil, &payment.GatewayError{Type: payment.ErrorTypeInvalidRequest, Message: err.Error()}
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, mapError(err)
	}

	if pi.Status == stripe.PaymentIntentStatusRequiresAction && pi.NextAction != nil {
		g.log.Info("Stripe intent=%s awaits customer action type=%s", pi.ID, pi.NextAction.Type)
	}
	return toResult(pi), nil
}

// CreateIntent создает payment intent на сумму бронирования
func (g *Gateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toMinorUnits(req.Amount, req.Currency)),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("booking_id", strconv.FormatInt(req.BookingID, 10))
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		g.log.Error("Stripe CreateIntent failed for booking_id=%d: %v", req.BookingID, err)
		return nil, mapError(err)
	}

	g.log.Info("Stripe intent=%s created for booking_id=%d amount=%d %s",
		pi.ID, req.BookingID, pi.Amount, pi.Currency)
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// CancelIntent отменяет intent, который больше не соответствует условиям бронирования
func (g *Gateway) CancelIntent(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx

	if _, err := g.api.PaymentIntents.Cancel(intentID, params); err != nil {
		return mapError(err)
	}
	return nil
}

func toResult(pi *stripe.PaymentIntent) *payment.IntentResult {
	res := &payment.IntentResult{
		IntentID: pi.ID,
		Status:   payment.IntentStatus(pi.Status),
		Amount:   pi.Amount,
		Currency: string(pi.Currency),
	}
	if pi.Status == stripe.PaymentIntentStatusRequiresAction && pi.NextAction != nil {
		res.NextAction = &payment.NextAction{Type: string(pi.NextAction.Type)}
		if r := pi.NextAction.RedirectToURL; r != nil {
			res.NextAction.RedirectURL = r.URL
			res.NextAction.ReturnURL = r.ReturnURL
		}
	}
	return res
}

// mapError переводит ошибку Stripe в словарь ошибок шлюза
func mapError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &payment.GatewayError{
			Type:    string(stripeErr.Type),
			Code:    string(stripeErr.Code),
			Message: stripeErr.Msg,
		}
	}
	return err
}

func billingMetadata(b payment.BillingDetails) map[string]string {
	meta := make(map[string]string)
	if b.Name != "" {
		meta["billing_name"] = b.Name
	}
	if b.Phone != "" {
		meta["billing_phone"] = b.Phone
	}
	if b.PostalCode != "" {
		meta["billing_postal_code"] = b.PostalCode
	}
	if b.Country != "" {
		meta["billing_country"] = b.Country
	}
	return meta
}

// zeroDecimalCurrencies валюты без дробной части: сумма передаётся в Stripe как есть
// https://docs.stripe.com/currencies#zero-decimal
var zeroDecimalCurrencies = map[string]struct{}{
	"bif": {}, "clp": {}, "djf": {}, "gnf": {}, "jpy": {}, "kmf": {}, "krw": {}, "mga": {},
	"pyg": {}, "rwf": {}, "ugx": {}, "vnd": {}, "vuv": {}, "xaf": {}, "xof": {}, "xpf": {},
}

func toMinorUnits(amount float64, currency string) int64 {
	if _, ok := zeroDecimalCurrencies[strings.ToLower(currency)]; ok {
		return int64(math.Round(amount))
	}
	return int64(math.Round(amount * 100))
}
