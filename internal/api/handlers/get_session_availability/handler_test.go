package get_session_availability

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
	"github.com/m04kA/SMC-SessionBookingService/internal/service/sessionevents"
	getAvailability "github.com/m04kA/SMC-SessionBookingService/internal/usecase/get_session_availability"
	"github.com/m04kA/SMC-SessionBookingService/pkg/logger"
)

type fakeUseCase struct {
	resp *getAvailability.Response
	err  error
}

func (u *fakeUseCase) Execute(context.Context, *getAvailability.Request) (*getAvailability.Response, error) {
	return u.resp, u.err
}

func request() *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/5/availability", nil)
	r = mux.SetURLVars(r, map[string]string{"bookingId": "5"})
	return r.WithContext(middleware.WithUserID(r.Context(), 1))
}

func TestHandle_Live(t *testing.T) {
	start := time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC)
	uc := &fakeUseCase{resp: &getAvailability.Response{
		BookingID: 5,
		Status:    domain.StatusPaid,
		IsPaid:    true,
		Window: domain.AvailabilityWindow{
			CanGoLive:     true,
			SessionStart:  start,
			SessionEnd:    start.Add(time.Hour),
			GoLiveOpensAt: start.Add(-domain.GoLiveBuffer),
		},
		Credentials: &domain.SessionCredentials{Channel: "booking-5", Token: "tok", UID: "1"},
		Session:     sessionevents.State{CredentialsIssued: true, Participants: 1},
	}}

	w := httptest.NewRecorder()
	NewHandler(uc, logger.NewNop()).Handle(w, request())

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	var body AvailabilityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.CanGoLive)
	assert.Nil(t, body.TimeUntilOpenMs)
	require.NotNil(t, body.Credentials)
	assert.Equal(t, "booking-5", body.Credentials.Channel)
	assert.Equal(t, "2025-10-15T09:50:00Z", body.GoLiveOpensAt)
	assert.Equal(t, 1, body.Session.Participants)
}

func TestHandle_NotOpenYet(t *testing.T) {
	until := 30 * time.Minute
	uc := &fakeUseCase{resp: &getAvailability.Response{
		BookingID: 5,
		Status:    domain.StatusPaid,
		IsPaid:    true,
		Window:    domain.AvailabilityWindow{TimeUntilOpen: &until},
	}}

	w := httptest.NewRecorder()
	NewHandler(uc, logger.NewNop()).Handle(w, request())
	require.Equal(t, http.StatusOK, w.Code)

	var body AvailabilityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.CanGoLive)
	require.NotNil(t, body.TimeUntilOpenMs)
	assert.Equal(t, int64(30*60*1000), *body.TimeUntilOpenMs)
	assert.Nil(t, body.Credentials)
	assert.NotContains(t, w.Body.String(), `"credentials"`)
}

func TestHandle_Errors(t *testing.T) {
	w := httptest.NewRecorder()
	NewHandler(&fakeUseCase{err: bookings.ErrAccessDenied}, logger.NewNop()).Handle(w, request())
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	NewHandler(&fakeUseCase{err: bookings.ErrBookingNotFound}, logger.NewNop()).Handle(w, request())
	assert.Equal(t, http.StatusNotFound, w.Code)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/x/availability", nil)
	r = mux.SetURLVars(r, map[string]string{"bookingId": "x"})
	w = httptest.NewRecorder()
	NewHandler(&fakeUseCase{}, logger.NewNop()).Handle(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
