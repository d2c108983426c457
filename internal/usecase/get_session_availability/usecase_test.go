package get_session_availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/sessionevents"
	"github.com/m04kA/SMC-SessionBookingService/pkg/logger"
)

var sessionDay = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

type fakeBookings struct {
	booking   *domain.Booking
	getErr    error
	ensureErr error
	ensured   int
}

func (f *fakeBookings) GetByID(_ context.Context, _ int64, userID int64) (*domain.Booking, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if !f.booking.IsParticipant(userID) {
		return nil, bookings.ErrAccessDenied
	}
	return f.booking.Clone(), nil
}

func (f *fakeBookings) EnsureCredentials(_ context.Context, _ int64) (*domain.Booking, error) {
	f.ensured++
	if f.ensureErr != nil {
		return nil, f.ensureErr
	}
	b := f.booking.Clone()
	b.Credentials = &domain.SessionCredentials{Channel: "booking-7", Token: "fresh"}
	return b, nil
}

type fakeTracker struct {
	state sessionevents.State
}

func (f fakeTracker) Snapshot(_ int64) sessionevents.State { return f.state }

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

func paidBooking() *domain.Booking {
	return &domain.Booking{
		ID:          7,
		RequesterID: 10,
		ProviderID:  20,
		BookingDate: sessionDay,
		StartTime:   "10:00",
		EndTime:     "11:00",
		Status:      domain.StatusPaid,
		IsPaid:      true,
		Credentials: &domain.SessionCredentials{Channel: "booking-7", Token: "tok"},
	}
}

func newUseCase(b *fakeBookings, now time.Time) *UseCase {
	uc := NewUseCase(b, fakeTracker{state: sessionevents.State{CredentialsIssued: true, Participants: 1}}, time.UTC, logger.NewNop())
	uc.timeProvider = fixedTime{now: now}
	return uc
}

func TestExecute_CredentialsOnlyWhenLive(t *testing.T) {
	fb := &fakeBookings{booking: paidBooking()}

	resp, err := newUseCase(fb, time.Date(2025, 10, 15, 9, 0, 0, 0, time.UTC)).Execute(context.Background(), &Request{BookingID: 7, UserID: 10})
	require.NoError(t, err)
	assert.False(t, resp.Window.CanGoLive)
	assert.Nil(t, resp.Credentials)
	require.NotNil(t, resp.Window.TimeUntilOpen)
	assert.Equal(t, 50*time.Minute, *resp.Window.TimeUntilOpen)
	assert.Equal(t, 1, resp.Session.Participants)

	resp, err = newUseCase(fb, time.Date(2025, 10, 15, 9, 55, 0, 0, time.UTC)).Execute(context.Background(), &Request{BookingID: 7, UserID: 20})
	require.NoError(t, err)
	assert.True(t, resp.Window.CanGoLive)
	require.NotNil(t, resp.Credentials)
	assert.Equal(t, "tok", resp.Credentials.Token)
	assert.Equal(t, 0, fb.ensured)
}

func TestExecute_UnpaidNeverLive(t *testing.T) {
	b := paidBooking()
	b.IsPaid = false
	b.Status = domain.StatusAccepted
	b.Credentials = nil
	fb := &fakeBookings{booking: b}

	resp, err := newUseCase(fb, time.Date(2025, 10, 15, 10, 30, 0, 0, time.UTC)).Execute(context.Background(), &Request{BookingID: 7, UserID: 10})
	require.NoError(t, err)
	assert.False(t, resp.Window.CanGoLive)
	assert.Nil(t, resp.Credentials)
	assert.Equal(t, 0, fb.ensured)
}

func TestExecute_IssuesMissingCredentials(t *testing.T) {
	b := paidBooking()
	b.Credentials = nil
	fb := &fakeBookings{booking: b}
	now := time.Date(2025, 10, 15, 10, 30, 0, 0, time.UTC)

	resp, err := newUseCase(fb, now).Execute(context.Background(), &Request{BookingID: 7, UserID: 10})
	require.NoError(t, err)
	require.NotNil(t, resp.Credentials)
	assert.Equal(t, "fresh", resp.Credentials.Token)

	// Сбой выдачи не ломает ответ, окно возвращается без учётных данных
	fb.ensureErr = errors.New("video down")
	resp, err = newUseCase(fb, now).Execute(context.Background(), &Request{BookingID: 7, UserID: 10})
	require.NoError(t, err)
	assert.True(t, resp.Window.CanGoLive)
	assert.Nil(t, resp.Credentials)
}

func TestExecute_Errors(t *testing.T) {
	fb := &fakeBookings{booking: paidBooking()}
	now := time.Date(2025, 10, 15, 10, 30, 0, 0, time.UTC)

	_, err := newUseCase(fb, now).Execute(context.Background(), &Request{BookingID: 0, UserID: 10})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = newUseCase(fb, now).Execute(context.Background(), &Request{BookingID: 7, UserID: 99})
	assert.ErrorIs(t, err, bookings.ErrAccessDenied)

	broken := paidBooking()
	broken.StartTime = "25:00"
	_, err = newUseCase(&fakeBookings{booking: broken}, now).Execute(context.Background(), &Request{BookingID: 7, UserID: 10})
	assert.ErrorIs(t, err, ErrInternal)
}

func TestLocationTimeProvider(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	p := &LocationTimeProvider{Location: loc}
	assert.Equal(t, loc, p.Now().Location())
}
