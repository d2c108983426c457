package session_events

import (
	"net/http"

	"github.com/m04kA/SMC-SessionBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SessionBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/sessionevents"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgUnknownEvent       = "неизвестный тип события"
	msgSessionNotOpen     = "сессия не оплачена"
)

// EventRequest HTTP request model, событие видеотранспорта от клиента участника
type EventRequest struct {
	Type string `json:"type"` // track_published, participant_joined, ...
}

type Handler struct {
	service   BookingService
	publisher EventPublisher
	logger    Logger
}

func NewHandler(service BookingService, publisher EventPublisher, logger Logger) *Handler {
	return &Handler{
		service:   service,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/session-events
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/session-events - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req EventRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/session-events - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Выдачу и отзыв учётных данных публикует только сервис бронирований
	eventType, known := sessionevents.ParseEventType(req.Type)
	if !known || eventType == sessionevents.EventCredentialsIssued || eventType == sessionevents.EventCredentialsRevoked {
		h.logger.Warn("POST /bookings/{id}/session-events - Rejected event type %q: booking_id=%d", req.Type, bookingID)
		handlers.RespondBadRequest(w, msgUnknownEvent)
		return
	}

	booking, err := h.service.GetByID(r.Context(), bookingID, userID)
	if err != nil {
		status := handlers.RespondBookingError(w, err, "")
		h.logger.Warn("POST /bookings/{id}/session-events - Failed: booking_id=%d, user_id=%d, status=%d, error=%v",
			bookingID, userID, status, err)
		return
	}
	if !booking.IsSettled() {
		handlers.RespondConflict(w, msgSessionNotOpen)
		return
	}

	if err := h.publisher.Publish(sessionevents.Event{BookingID: bookingID, Type: eventType, UserID: userID}); err != nil {
		h.logger.Error("POST /bookings/{id}/session-events - Publish failed: booking_id=%d, error=%v", bookingID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
