package pay_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SessionBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SessionBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/payment"
	payBooking "github.com/m04kA/SMC-SessionBookingService/internal/usecase/pay_booking"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidInput       = "не указано платёжное средство"
	msgInProgress         = "оплата уже выполняется, дождитесь её завершения"
	msgAlreadyPaid        = "бронирование уже оплачено"
	msgNothingToPay       = "бронирование не ожидает оплаты"
	msgPaymentFailed      = "не удалось провести оплату"
)

type Handler struct {
	useCase PayBookingUseCase
	logger  Logger
}

func NewHandler(useCase PayBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/pay
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/pay - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/pay - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req PayBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/pay - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(bookingID, userID))
	if action, ok := payment.RequiredAction(err); ok {
		// Клиент проходит challenge и отправляет форму повторно
		h.logger.Info("POST /bookings/{id}/pay - Customer action required: booking_id=%d, user_id=%d, type=%s",
			bookingID, userID, action.NextAction.Type)
		handlers.RespondJSON(w, http.StatusAccepted, FromActionRequired(action))
		return
	}
	if err != nil {
		h.respondError(w, err, bookingID, userID)
		return
	}

	h.logger.Info("POST /bookings/{id}/pay - Booking paid: booking_id=%d, user_id=%d, intent=%s",
		bookingID, userID, result.Outcome.IntentID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result, userID))
}

func (h *Handler) respondError(w http.ResponseWriter, err error, bookingID, userID int64) {
	switch {
	case errors.Is(err, payBooking.ErrInvalidInput):
		h.logger.Warn("POST /bookings/{id}/pay - Invalid input: booking_id=%d, error=%v", bookingID, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	case errors.Is(err, payBooking.ErrPaymentInProgress):
		h.logger.Warn("POST /bookings/{id}/pay - Attempt in progress: booking_id=%d", bookingID)
		handlers.RespondConflict(w, msgInProgress)

	case errors.Is(err, payBooking.ErrAlreadyPaid):
		handlers.RespondConflict(w, msgAlreadyPaid)

	case errors.Is(err, payBooking.ErrNothingToPay):
		handlers.RespondConflict(w, msgNothingToPay)

	default:
		// Неудача протокола оплаты: показываем сообщение для пользователя
		if message, ok := payment.UserMessage(err); ok {
			h.logger.Warn("POST /bookings/{id}/pay - Payment failed: booking_id=%d, user_id=%d, error=%v",
				bookingID, userID, err)
			handlers.RespondPaymentRequired(w, message)
			return
		}
		if errors.Is(err, payment.ErrAttemptCancelled) {
			handlers.RespondPaymentRequired(w, msgPaymentFailed)
			return
		}

		status := handlers.RespondBookingError(w, err, msgNothingToPay)
		if status >= http.StatusInternalServerError {
			h.logger.Error("POST /bookings/{id}/pay - Failed: booking_id=%d, user_id=%d, error=%v", bookingID, userID, err)
		} else {
			h.logger.Warn("POST /bookings/{id}/pay - Rejected: booking_id=%d, user_id=%d, status=%d, error=%v",
				bookingID, userID, status, err)
		}
	}
}
