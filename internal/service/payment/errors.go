package payment

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidClientSecret client secret отсутствует или имеет неверный формат (до обращения к шлюзу)
	ErrInvalidClientSecret = errors.New("payment: invalid client secret")

	// ErrExpiredOrInvalidSession intent не найден в шлюзе
	ErrExpiredOrInvalidSession = errors.New("payment: payment session expired or invalid")

	// ErrInvalidRequest шлюз отклонил запрос как некорректный
	ErrInvalidRequest = errors.New("payment: invalid gateway request")

	// ErrUnknownGateway прочие ошибки шлюза
	ErrUnknownGateway = errors.New("payment: unknown gateway error")

	// ErrCardError ошибка карты или данных карты, исправляется пользователем
	ErrCardError = errors.New("payment: card error")

	// ErrAuthenticationFailure не пройдена step-up аутентификация, можно повторить оплату
	ErrAuthenticationFailure = errors.New("payment: authentication failure")

	// ErrConfirmationFailed прочие ошибки подтверждения
	ErrConfirmationFailed = errors.New("payment: confirmation failed")

	// ErrActionFailed ошибка при обработке требуемого действия (3-D Secure)
	ErrActionFailed = errors.New("payment: required action failed")

	// ErrPaymentProcessing платёж ещё обрабатывается, повторять сразу нельзя
	ErrPaymentProcessing = errors.New("payment: payment is processing")

	// ErrPaymentCanceled intent отменён
	ErrPaymentCanceled = errors.New("payment: payment canceled")

	// ErrUnexpectedStatus шлюз вернул статус, который протокол не обрабатывает
	ErrUnexpectedStatus = errors.New("payment: unexpected intent status")

	// ErrTooManyAttempts превышен лимит повторов после step-up аутентификации
	ErrTooManyAttempts = errors.New("payment: too many attempts")

	// ErrActionRequired клиент должен пройти step-up аутентификацию и повторить submit
	ErrActionRequired = errors.New("payment: customer action required")

	// ErrAttemptCancelled вызывающая сторона отменила попытку, ответ шлюза отброшен
	ErrAttemptCancelled = errors.New("payment: attempt cancelled by caller")
)

// Failure терминальная неудача попытки оплаты с сообщением для пользователя
type Failure struct {
	Err         error  // одна из sentinel-ошибок пакета
	UserMessage string // текст, который можно показать пользователю
	Cause       error  // исходная ошибка шлюза, если есть
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return f.Err.Error() + ": " + f.Cause.Error()
	}
	return f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func fail(err error, userMessage string, cause error) *Failure {
	return &Failure{Err: err, UserMessage: userMessage, Cause: cause}
}

// ActionRequiredError попытка остановлена на step-up аутентификации
// Это не неудача: после challenge клиент повторяет submit, и протокол начинается с retrieve
type ActionRequiredError struct {
	IntentID   string
	NextAction NextAction
}

func (e *ActionRequiredError) Error() string {
	return fmt.Sprintf("%s: intent=%s next_action=%s", ErrActionRequired, e.IntentID, e.NextAction.Type)
}

func (e *ActionRequiredError) Unwrap() error {
	return ErrActionRequired
}

// RequiredAction извлекает действие для клиента из ошибки оплаты
func RequiredAction(err error) (*ActionRequiredError, bool) {
	var a *ActionRequiredError
	if errors.As(err, &a) {
		return a, true
	}
	return nil, false
}

// UserMessage извлекает текст для пользователя из ошибки оплаты
func UserMessage(err error) (string, bool) {
	var f *Failure
	if errors.As(err, &f) && f.UserMessage != "" {
		return f.UserMessage, true
	}
	return "", false
}

const (
	msgRefreshAndRetry      = "Платёжная сессия недействительна. Обновите страницу и попробуйте снова."
	msgSessionExpired       = "Платёжная сессия истекла или не найдена. Обновите страницу и попробуйте снова."
	msgInvalidRequest       = "Некорректный платёжный запрос. Обновите страницу и попробуйте снова."
	msgUnknownGateway       = "Не удалось провести оплату. Попробуйте ещё раз."
	msgAuthenticationFailed = "Не удалось подтвердить платёж. Попробуйте ещё раз или используйте другую карту."
	msgConfirmationFailed   = "Не удалось подтвердить платёж. Попробуйте ещё раз."
	msgProcessing           = "Платёж обрабатывается. Не повторяйте оплату, проверьте статус бронирования позже."
	msgCanceled             = "Платёж был отменён. Начните оплату заново."
	msgUnexpectedStatus     = "Неожиданный статус платежа. Обновите страницу и проверьте статус бронирования."
	msgTooManyAttempts      = "Слишком много попыток подтверждения. Начните оплату заново."
	msgCancelled            = "Оплата прервана."
)
