package get_user_bookings

import (
	"fmt"
	"net/http"

	"github.com/m04kA/SMC-SessionBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SessionBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/bookings/models"
)

const (
	msgInvalidUserID = "некорректный ID пользователя"
	msgInvalidFilter = "некорректные параметры фильтра"
	msgMissingUserID = "отсутствует ID пользователя"
)

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

// Handle GET /api/v1/users/{userId}/bookings?role=&status=&needsPayment=&upcoming=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, err := handlers.PathID(r, "userId")
	if err != nil {
		h.logger.Warn("GET /users/{userId}/bookings - Invalid user ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidUserID)
		return
	}

	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /users/{userId}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	serviceReq, err := parseListRequest(r, actorID, userID)
	if err != nil {
		h.logger.Warn("GET /users/{userId}/bookings - Invalid filter: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFilter)
		return
	}

	result, err := h.service.List(r.Context(), serviceReq)
	if err != nil {
		status := handlers.RespondBookingError(w, err, "")
		h.logger.Warn("GET /users/{userId}/bookings - Failed: user_id=%d, status=%d, error=%v", userID, status, err)
		return
	}

	h.logger.Info("GET /users/{userId}/bookings - Bookings retrieved successfully: user_id=%d, count=%d",
		userID, len(result))
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainBookingList(result, actorID).Bookings)
}

func parseListRequest(r *http.Request, actorID, userID int64) (*models.ListRequest, error) {
	query := r.URL.Query()
	req := &models.ListRequest{ActorID: actorID, UserID: userID}

	if raw := query.Get("role"); raw != "" {
		role, ok := domain.ParseRole(raw)
		if !ok {
			return nil, fmt.Errorf("unknown role %q", raw)
		}
		req.Role = &role
	}

	if raw := query.Get("status"); raw != "" {
		status, ok := domain.ParseBookingStatus(raw)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", raw)
		}
		req.Status = &status
	}

	var err error
	if req.NeedsPayment, err = handlers.QueryBool(r, "needsPayment"); err != nil {
		return nil, fmt.Errorf("needsPayment: %v", err)
	}
	if req.Upcoming, err = handlers.QueryBool(r, "upcoming"); err != nil {
		return nil, fmt.Errorf("upcoming: %v", err)
	}

	return req, nil
}
