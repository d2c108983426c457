package attach_review

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
	msgNotCompleted       = "отзыв можно оставить только после завершения сессии"
)

// ReviewRequest HTTP request model
type ReviewRequest struct {
	Review string `json:"review"`
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

// Handle PUT /api/v1/bookings/{bookingId}/review
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("PUT /bookings/{id}/review - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req ReviewRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /bookings/{id}/review - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	booking, err := h.service.AttachReview(r.Context(), bookingID, userID, req.Review)
	if err != nil {
		status := handlers.RespondBookingError(w, err, msgNotCompleted)
		h.logger.Warn("PUT /bookings/{id}/review - Failed: booking_id=%d, user_id=%d, status=%d, error=%v",
			bookingID, userID, status, err)
		return
	}

	h.logger.Info("PUT /bookings/{id}/review - Review attached: booking_id=%d, user_id=%d", bookingID, userID)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainBooking(booking, userID))
}
