package get_session_availability

import (
	"net/http"

	"github.com/m04kA/SMC-SessionBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SessionBookingService/internal/api/middleware"
	getAvailability "github.com/m04kA/SMC-SessionBookingService/internal/usecase/get_session_availability"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgMissingUserID    = "отсутствует ID пользователя"
)

type Handler struct {
	useCase GetSessionAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetSessionAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/{bookingId}/availability
// Клиент опрашивает эндпоинт, ответ всегда вычисляется заново
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("GET /bookings/{id}/availability - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /bookings/{id}/availability - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailability.Request{BookingID: bookingID, UserID: userID})
	if err != nil {
		status := handlers.RespondBookingError(w, err, "")
		if status >= http.StatusInternalServerError {
			h.logger.Error("GET /bookings/{id}/availability - Failed: booking_id=%d, error=%v", bookingID, err)
		} else {
			h.logger.Warn("GET /bookings/{id}/availability - Rejected: booking_id=%d, user_id=%d, status=%d",
				bookingID, userID, status)
		}
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
