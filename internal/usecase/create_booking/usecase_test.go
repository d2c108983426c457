package create_booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	"github.com/m04kA/SMC-SessionBookingService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-SessionBookingService/pkg/logger"
	"github.com/m04kA/SMC-SessionBookingService/pkg/ptr"
	"github.com/m04kA/SMC-SessionBookingService/pkg/types"
)

var (
	testNow  = time.Date(2025, 10, 15, 9, 0, 0, 0, time.UTC)
	tomorrow = time.Date(2025, 10, 16, 0, 0, 0, 0, time.UTC)
)

type fakeRepo struct {
	existing []*domain.Booking
	created  []*domain.Booking
	filters  []domain.BookingsFilter
}

func (r *fakeRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	c := b.Clone()
	c.ID = int64(len(r.created) + 1)
	c.CreatedAt = testNow
	c.UpdatedAt = testNow
	r.created = append(r.created, c)
	return c.Clone(), nil
}

func (r *fakeRepo) ListByUser(_ context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	r.filters = append(r.filters, filter)
	return r.existing, nil
}

type fakeCatalog struct {
	provider    *catalogservice.Provider
	service     *catalogservice.Service
	providerErr error
	serviceErr  error
}

func (c *fakeCatalog) GetProvider(_ context.Context, _ int64) (*catalogservice.Provider, error) {
	return c.provider, c.providerErr
}

func (c *fakeCatalog) GetService(_ context.Context, _, _ int64) (*catalogservice.Service, error) {
	return c.service, c.serviceErr
}

type fakeTx struct{}

func (fakeTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

func newCatalog() *fakeCatalog {
	return &fakeCatalog{
		provider: &catalogservice.Provider{ID: 20, Name: "Анна", Timezone: ptr.Ptr("UTC"), IsActive: true},
		service:  &catalogservice.Service{ID: 3, ProviderID: 20, Name: "Консультация", Price: 50, Currency: "USD", DurationMinutes: ptr.Ptr(60)},
	}
}

func newUseCase(repo *fakeRepo, catalog *fakeCatalog) *UseCase {
	uc := NewUseCase(repo, catalog, fakeTx{}, logger.NewNop())
	uc.timeProvider = fixedTime{now: testNow}
	return uc
}

func validRequest() *Request {
	return &Request{
		RequesterID: 10,
		ProviderID:  20,
		ServiceID:   3,
		Date:        tomorrow,
		StartTime:   "10:00",
		EndTime:     "11:00",
	}
}

func TestExecute_CreatesAwaitingApproval(t *testing.T) {
	repo := &fakeRepo{}
	resp, err := newUseCase(repo, newCatalog()).Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusAwaitingApproval), resp.Status)
	assert.Equal(t, "Консультация", resp.ServiceName)
	assert.Equal(t, 50.0, resp.Price)
	assert.Equal(t, "usd", resp.Currency)
	require.NotNil(t, resp.Timezone)
	assert.Equal(t, "UTC", *resp.Timezone)

	require.Len(t, repo.created, 1)
	assert.False(t, repo.created[0].IsPaid)
	assert.Nil(t, repo.created[0].PaymentIntentID)

	require.Len(t, repo.filters, 1)
	assert.Equal(t, domain.RoleProvider, *repo.filters[0].Role)
}

func TestExecute_EndTimeFromDuration(t *testing.T) {
	req := validRequest()
	req.StartTime = "23:30"
	req.EndTime = ""

	resp, err := newUseCase(&fakeRepo{}, newCatalog()).Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("00:30"), resp.EndTime)
}

func TestExecute_ValidationErrors(t *testing.T) {
	cases := []struct {
		name   string
		modify func(r *Request)
		want   error
	}{
		{"self booking", func(r *Request) { r.ProviderID = r.RequesterID }, ErrInvalidInput},
		{"missing service", func(r *Request) { r.ServiceID = 0 }, ErrInvalidInput},
		{"missing start", func(r *Request) { r.StartTime = "" }, ErrInvalidInput},
		{"long notes", func(r *Request) { r.Notes = ptr.Ptr(string(make([]byte, domain.MaxNotesLength+1))) }, ErrInvalidInput},
		{"past date", func(r *Request) { r.Date = testNow.AddDate(0, 0, -1) }, ErrInvalidWindow},
		{"bad format", func(r *Request) { r.StartTime = "9:00" }, ErrInvalidWindow},
		{"end before start", func(r *Request) { r.StartTime, r.EndTime = "10:30", "10:15" }, ErrInvalidWindow},
		{"unknown timezone", func(r *Request) { r.Timezone = ptr.Ptr("Mars/Olympus") }, ErrInvalidWindow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeRepo{}
			req := validRequest()
			tc.modify(req)

			_, err := newUseCase(repo, newCatalog()).Execute(context.Background(), req)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, repo.created)
		})
	}
}

func TestExecute_CatalogErrors(t *testing.T) {
	catalog := newCatalog()
	catalog.providerErr = catalogservice.ErrProviderNotFound
	_, err := newUseCase(&fakeRepo{}, catalog).Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrProviderNotFound)

	catalog = newCatalog()
	catalog.provider.IsActive = false
	_, err = newUseCase(&fakeRepo{}, catalog).Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrProviderNotFound)

	catalog = newCatalog()
	catalog.serviceErr = catalogservice.ErrServiceNotFound
	_, err = newUseCase(&fakeRepo{}, catalog).Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrServiceNotFound)

	catalog = newCatalog()
	catalog.serviceErr = errors.New("timeout")
	_, err = newUseCase(&fakeRepo{}, catalog).Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrInternal)
}

func TestExecute_ProviderBusy(t *testing.T) {
	busy := &domain.Booking{ID: 1, ProviderID: 20, BookingDate: tomorrow, StartTime: "10:30", EndTime: "11:30", Status: domain.StatusPaid}
	repo := &fakeRepo{existing: []*domain.Booking{busy}}

	_, err := newUseCase(repo, newCatalog()).Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Empty(t, repo.created)

	// Отменённая сессия время не занимает
	busy.Status = domain.StatusCancelled
	_, err = newUseCase(repo, newCatalog()).Execute(context.Background(), validRequest())
	assert.NoError(t, err)
}

func TestResolveEndTime(t *testing.T) {
	req := &Request{StartTime: "22:15"}

	end, err := resolveEndTime(req, ptr.Ptr(120))
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("00:15"), end)

	_, err = resolveEndTime(req, ptr.Ptr(24*60))
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = resolveEndTime(req, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req.EndTime = "23:00"
	end, err = resolveEndTime(req, ptr.Ptr(120))
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("23:00"), end, "explicit end wins over duration")
}
