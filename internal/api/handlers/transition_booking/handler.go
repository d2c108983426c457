package transition_booking

import (
	"net/http"

	"github.com/m04kA/SMC-SessionBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SessionBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/bookings/models"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgMissingUserID    = "отсутствует ID пользователя"

	msgCannotAccept   = "бронирование не может быть принято в текущем статусе"
	msgCannotReject   = "бронирование не может быть отклонено в текущем статусе"
	msgCannotComplete = "сессия не может быть завершена в текущем статусе"
)

// Handler обработчик переходов без тела запроса: accept, reject, complete
type Handler struct {
	transition      Transition
	action          string
	conflictMessage string
	logger          Logger
}

// NewAcceptHandler PATCH /api/v1/bookings/{bookingId}/accept
func NewAcceptHandler(transition Transition, logger Logger) *Handler {
	return &Handler{transition: transition, action: "accept", conflictMessage: msgCannotAccept, logger: logger}
}

// NewRejectHandler PATCH /api/v1/bookings/{bookingId}/reject
func NewRejectHandler(transition Transition, logger Logger) *Handler {
	return &Handler{transition: transition, action: "reject", conflictMessage: msgCannotReject, logger: logger}
}

// NewCompleteHandler PATCH /api/v1/bookings/{bookingId}/complete
func NewCompleteHandler(transition Transition, logger Logger) *Handler {
	return &Handler{transition: transition, action: "complete", conflictMessage: msgCannotComplete, logger: logger}
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/%s - Invalid booking ID: %v", h.action, err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /bookings/{id}/%s - Missing user ID", h.action)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	booking, err := h.transition(r.Context(), bookingID, userID)
	if err != nil {
		status := handlers.RespondBookingError(w, err, h.conflictMessage)
		if status >= http.StatusInternalServerError {
			h.logger.Error("PATCH /bookings/{id}/%s - Failed: booking_id=%d, user_id=%d, error=%v",
				h.action, bookingID, userID, err)
		} else {
			h.logger.Warn("PATCH /bookings/{id}/%s - Rejected: booking_id=%d, user_id=%d, status=%d, error=%v",
				h.action, bookingID, userID, status, err)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/%s - Success: booking_id=%d, user_id=%d, status=%s",
		h.action, bookingID, userID, booking.Status)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainBooking(booking, userID))
}
