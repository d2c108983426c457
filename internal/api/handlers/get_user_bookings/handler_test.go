package get_user_bookings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SessionBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SessionBookingService/pkg/logger"
)

type fakeService struct {
	got *models.ListRequest
	err error
}

func (s *fakeService) List(_ context.Context, req *models.ListRequest) ([]*domain.Booking, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return []*domain.Booking{{
		ID:          1,
		RequesterID: req.UserID,
		ProviderID:  9,
		BookingDate: time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC),
		StartTime:   "10:00",
		EndTime:     "11:00",
		Status:      domain.StatusPaid,
		IsPaid:      true,
	}}, nil
}

func request(query string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/users/4/bookings"+query, nil)
	r = mux.SetURLVars(r, map[string]string{"userId": "4"})
	return r.WithContext(middleware.WithUserID(r.Context(), 4))
}

func TestHandle_ParsesFilter(t *testing.T) {
	svc := &fakeService{}
	w := httptest.NewRecorder()
	NewHandler(svc, logger.NewNop()).Handle(w, request("?role=requester&status=paid&upcoming=true"))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.got)
	assert.Equal(t, int64(4), svc.got.ActorID)
	require.NotNil(t, svc.got.Role)
	assert.Equal(t, domain.RoleRequester, *svc.got.Role)
	require.NotNil(t, svc.got.Status)
	assert.Equal(t, domain.StatusPaid, *svc.got.Status)
	assert.True(t, svc.got.Upcoming)
	assert.False(t, svc.got.NeedsPayment)

	var body []models.BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "paid", body[0].Status)
}

func TestHandle_InvalidFilter(t *testing.T) {
	for _, q := range []string{"?role=admin", "?status=done", "?needsPayment=maybe"} {
		svc := &fakeService{}
		w := httptest.NewRecorder()
		NewHandler(svc, logger.NewNop()).Handle(w, request(q))
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Nil(t, svc.got, q)
	}
}

func TestHandle_ForeignList(t *testing.T) {
	w := httptest.NewRecorder()
	NewHandler(&fakeService{err: bookings.ErrAccessDenied}, logger.NewNop()).Handle(w, request(""))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
