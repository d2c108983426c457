package pay_booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-SessionBookingService/internal/service/payment"
)

func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(req.PaymentMethodID) == "" {
		return fmt.Errorf("%w: paymentMethodId is required", ErrInvalidInput)
	}
	return nil
}

// failureReasons метки метрик для терминальных неудач движка
var failureReasons = []struct {
	err    error
	reason string
}{
	{payment.ErrInvalidClientSecret, "invalid_client_secret"},
	{payment.ErrExpiredOrInvalidSession, "session_expired"},
	{payment.ErrInvalidRequest, "invalid_request"},
	{payment.ErrUnknownGateway, "gateway_error"},
	{payment.ErrCardError, "card_error"},
	{payment.ErrAuthenticationFailure, "authentication_failure"},
	{payment.ErrConfirmationFailed, "confirmation_failed"},
	{payment.ErrActionFailed, "action_failed"},
	{payment.ErrPaymentProcessing, "processing"},
	{payment.ErrPaymentCanceled, "canceled"},
	{payment.ErrUnexpectedStatus, "unexpected_status"},
	{payment.ErrTooManyAttempts, "too_many_attempts"},
	{payment.ErrAttemptCancelled, "cancelled"},
}

func failureReason(err error) string {
	for _, fr := range failureReasons {
		if errors.Is(err, fr.err) {
			return fr.reason
		}
	}
	return "unknown"
}
