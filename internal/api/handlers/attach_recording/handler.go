package attach_recording

import (
	"net/http"

	"github.com/m04kA/SMC-SessionBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SessionBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/bookings/models"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotCompleted       = "запись можно прикрепить только после завершения сессии"
)

// RecordingRequest HTTP request model
type RecordingRequest struct {
	RecordingURL string `json:"recordingUrl"`
}

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/bookings/{bookingId}/recording
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("PUT /bookings/{id}/recording - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RecordingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /bookings/{id}/recording - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	booking, err := h.service.AttachRecording(r.Context(), bookingID, userID, req.RecordingURL)
	if err != nil {
		status := handlers.RespondBookingError(w, err, msgNotCompleted)
		h.logger.Warn("PUT /bookings/{id}/recording - Failed: booking_id=%d, user_id=%d, status=%d, error=%v",
			bookingID, userID, status, err)
		return
	}

	h.logger.Info("PUT /bookings/{id}/recording - Recording attached: booking_id=%d, user_id=%d", bookingID, userID)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainBooking(booking, userID))
}
