package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
)

// Engine проводит один payment intent через протокол шлюза:
// retrieve -> confirm -> handle action -> retrieve ...
// На каждый вызов Reconcile возвращается ровно один итог: Outcome или ошибка
//
// Если challenge ещё не пройден, Reconcile не крутит цикл, а сразу возвращает
// *ActionRequiredError с next_action для клиента
type Engine struct {
	gateway          Gateway
	maxActionRetries int
	recorder         Recorder
	logger           Logger
}

// NewEngine создает новый экземпляр движка оплаты
// maxActionRetries ограничивает число перезапусков протокола после step-up аутентификации
func NewEngine(gateway Gateway, maxActionRetries int, recorder Recorder, logger Logger) *Engine {
	if maxActionRetries <= 0 {
		maxActionRetries = domain.DefaultMaxActionRetries
	}
	return &Engine{
		gateway:          gateway,
		maxActionRetries: maxActionRetries,
		recorder:         recorder,
		logger:           logger,
	}
}

// Reconcile выполняет протокол оплаты для одного пользовательского submit
// Не меняет бронирование: отметку об оплате делает вызывающая сторона по успешному Outcome
//
// Если ctx отменён, ответ шлюза отбрасывается и возвращается ErrAttemptCancelled
func (e *Engine) Reconcile(ctx context.Context, req *Request) (*Outcome, error) {
	if err := ValidateClientSecret(req.ClientSecret); err != nil {
		e.logger.Warn("Reconcile: booking=%d invalid client secret: %v", req.BookingID, err)
		return nil, err
	}

	attempt := &Attempt{ClientSecret: req.ClientSecret}
	confirmed := false

	for {
		if attempt.RetryCount > e.maxActionRetries {
			e.logger.Warn("Reconcile: booking=%d exceeded %d action retries, last status=%s",
				req.BookingID, e.maxActionRetries, attempt.GatewayStatus)
			return nil, fail(fmt.Errorf("%w: %d retries", ErrTooManyAttempts, attempt.RetryCount), msgTooManyAttempts, nil)
		}

		// 1. Получаем текущий статус intent
		intent, err := e.retrieve(ctx, attempt)
		if err != nil {
			e.logger.Warn("Reconcile: booking=%d retrieve failed: %v", req.BookingID, err)
			return nil, err
		}
		attempt.GatewayStatus = intent.Status
		e.logger.Info("Reconcile: booking=%d intent=%s status=%s retry=%d",
			req.BookingID, intent.IntentID, intent.Status, attempt.RetryCount)

		switch intent.Status {
		case StatusSucceeded:
			// 2. Intent уже оплачен (например, прошлая попытка завершилась после таймаута клиента)
			return e.success(req, attempt, intent, confirmed), nil

		case StatusRequiresPaymentMethod, StatusRequiresConfirmation:
			// 3. Подтверждаем платёж
			result, err := e.confirm(ctx, req, attempt)
			if err != nil {
				e.logger.Warn("Reconcile: booking=%d confirm failed: %v", req.BookingID, err)
				return nil, err
			}
			confirmed = true
			attempt.GatewayStatus = result.Status

			if result.Status == StatusSucceeded {
				return e.success(req, attempt, result, confirmed), nil
			}
			if result.Status != StatusRequiresAction {
				return nil, e.statusFailure(req, attempt)
			}

		case StatusRequiresAction:
			// Прошлая попытка остановилась на step-up аутентификации

		default:
			return nil, e.statusFailure(req, attempt)
		}

		// 4. Step-up аутентификация, затем протокол перезапускается с шага 1
		action, err := e.handleAction(ctx, attempt)
		if err != nil {
			e.logger.Warn("Reconcile: booking=%d required action failed: %v", req.BookingID, err)
			return nil, err
		}
		attempt.GatewayStatus = action.Status

		if action.Status == StatusRequiresAction {
			// Challenge на стороне клиента: отдаём next_action, повторный submit начнёт с retrieve
			next := NextAction{}
			if action.NextAction != nil {
				next = *action.NextAction
			}
			e.logger.Info("Reconcile: booking=%d intent=%s waits for customer action %q",
				req.BookingID, action.IntentID, next.Type)
			return nil, &ActionRequiredError{IntentID: action.IntentID, NextAction: next}
		}
		attempt.RetryCount++
	}
}

func (e *Engine) retrieve(ctx context.Context, attempt *Attempt) (*IntentResult, error) {
	started := time.Now()
	intent, err := e.gateway.RetrieveIntent(ctx, attempt.ClientSecret)
	e.observe("retrieve", err, started)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fail(fmt.Errorf("%w: retrieve: %v", ErrAttemptCancelled, ctxErr), msgCancelled, nil)
	}
	if err != nil {
		return nil, mapRetrieveError(err)
	}
	if intent == nil {
		return nil, fail(fmt.Errorf("%w: empty retrieve response", ErrUnknownGateway), msgUnknownGateway, nil)
	}
	return intent, nil
}

func (e *Engine) confirm(ctx context.Context, req *Request, attempt *Attempt) (*IntentResult, error) {
	started := time.Now()
	result, err := e.gateway.ConfirmPayment(ctx, attempt.ClientSecret, req.Instrument, req.Billing)
	e.observe("confirm", err, started)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fail(fmt.Errorf("%w: confirm: %v", ErrAttemptCancelled, ctxErr), msgCancelled, nil)
	}
	if err != nil {
		return nil, mapConfirmError(err)
	}
	if result == nil {
		return nil, fail(fmt.Errorf("%w: empty confirm response", ErrConfirmationFailed), msgConfirmationFailed, nil)
	}
	return result, nil
}

func (e *Engine) handleAction(ctx context.Context, attempt *Attempt) (*IntentResult, error) {
	started := time.Now()
	result, err := e.gateway.HandleRequiredAction(ctx, attempt.ClientSecret)
	e.observe("handle_action", err, started)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fail(fmt.Errorf("%w: handle action: %v", ErrAttemptCancelled, ctxErr), msgCancelled, nil)
	}
	if err != nil {
		return nil, fail(ErrActionFailed, gatewayMessage(err, msgConfirmationFailed), err)
	}
	if result == nil {
		return nil, fail(fmt.Errorf("%w: empty action response", ErrActionFailed), msgConfirmationFailed, nil)
	}
	return result, nil
}

func (e *Engine) success(req *Request, attempt *Attempt, intent *IntentResult, confirmed bool) *Outcome {
	e.logger.Info("Reconcile: booking=%d intent=%s succeeded after %d retries (confirmed=%t)",
		req.BookingID, intent.IntentID, attempt.RetryCount, confirmed)
	return &Outcome{
		IntentID:   intent.IntentID,
		Status:     StatusSucceeded,
		Amount:     intent.Amount,
		Currency:   intent.Currency,
		RetryCount: attempt.RetryCount,
		Confirmed:  confirmed,
	}
}

// statusFailure терминальная неудача по статусу intent
func (e *Engine) statusFailure(req *Request, attempt *Attempt) error {
	e.logger.Warn("Reconcile: booking=%d terminal intent status=%s", req.BookingID, attempt.GatewayStatus)

	switch attempt.GatewayStatus {
	case StatusProcessing:
		return fail(ErrPaymentProcessing, msgProcessing, nil)
	case StatusCanceled:
		return fail(ErrPaymentCanceled, msgCanceled, nil)
	default:
		return fail(fmt.Errorf("%w: %q", ErrUnexpectedStatus, attempt.GatewayStatus), msgUnexpectedStatus, nil)
	}
}

func (e *Engine) observe(operation string, err error, started time.Time) {
	if e.recorder == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	e.recorder.ObserveGatewayCall(operation, result, time.Since(started))
}

func mapRetrieveError(err error) error {
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		return fail(ErrUnknownGateway, msgUnknownGateway, err)
	}

	switch {
	case gwErr.Code == ErrorCodeResourceMissing:
		return fail(ErrExpiredOrInvalidSession, msgSessionExpired, err)
	case gwErr.Type == ErrorTypeInvalidRequest:
		return fail(ErrInvalidRequest, msgInvalidRequest, err)
	default:
		return fail(ErrUnknownGateway, gatewayMessage(err, msgUnknownGateway), err)
	}
}

func mapConfirmError(err error) error {
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		return fail(ErrConfirmationFailed, msgConfirmationFailed, err)
	}

	switch {
	case gwErr.Type == ErrorTypeCard || gwErr.Type == ErrorTypeValidation:
		return fail(ErrCardError, gatewayMessage(err, msgConfirmationFailed), err)
	case gwErr.Code == ErrorCodeAuthenticationFailure:
		return fail(ErrAuthenticationFailure, msgAuthenticationFailed, err)
	default:
		return fail(ErrConfirmationFailed, msgConfirmationFailed, err)
	}
}

// gatewayMessage сообщение шлюза как есть либо fallback
func gatewayMessage(err error, fallback string) string {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) && gwErr.Message != "" {
		return gwErr.Message
	}
	return fallback
}
