package handlers

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SessionBookingService/internal/service/bookings"
)

const (
	msgBookingNotFound    = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgInvalidData        = "некорректные данные запроса"
	msgPaymentUnavailable = "платёжный сервис временно недоступен, попробуйте позже"
)

// RespondBookingError отвечает на ошибку сервиса бронирований и возвращает выбранный статус
// conflictMessage показывается при несовместимом текущем статусе бронирования
func RespondBookingError(w http.ResponseWriter, err error, conflictMessage string) int {
	switch {
	case errors.Is(err, bookings.ErrValidation):
		RespondBadRequest(w, msgInvalidData)
		return http.StatusBadRequest

	case errors.Is(err, bookings.ErrBookingNotFound):
		RespondNotFound(w, msgBookingNotFound)
		return http.StatusNotFound

	case errors.Is(err, bookings.ErrAccessDenied):
		RespondForbidden(w, msgForbidden)
		return http.StatusForbidden

	case errors.Is(err, bookings.ErrStateConflict):
		RespondConflict(w, conflictMessage)
		return http.StatusConflict

	case errors.Is(err, bookings.ErrPaymentUnavailable):
		RespondServiceUnavailable(w, msgPaymentUnavailable)
		return http.StatusServiceUnavailable

	default:
		RespondInternalError(w)
		return http.StatusInternalServerError
	}
}
