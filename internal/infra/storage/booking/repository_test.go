package booking

import (
	"context"
	"database/sql/driver"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	"github.com/m04kA/SMC-SessionBookingService/pkg/ptr"
	"github.com/m04kA/SMC-SessionBookingService/pkg/sqlfake"
	"github.com/m04kA/SMC-SessionBookingService/pkg/txmanager"
)

var (
	testDate    = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)
	testCreated = time.Date(2025, 10, 1, 9, 30, 0, 0, time.UTC)
)

// bookingRow строка таблицы в порядке columns
func bookingRow() []driver.Value {
	return []driver.Value{
		int64(7),                    // id
		int64(10),                   // requester_id
		int64(20),                   // provider_id
		int64(3),                    // service_id
		testDate,                    // booking_date
		"10:00:00",                  // start_time
		"11:00:00",                  // end_time
		"Europe/Moscow",             // timezone
		"paid",                      // status
		"Mentoring",                 // service_name
		float64(50),                 // price
		"usd",                       // currency
		"pi_3Nabc123",               // payment_intent_id
		"pi_3Nabc123_secret_xyz789", // payment_intent_client_secret
		true,                        // is_paid
		testCreated,                 // paid_at
		"booking-7",                 // session_channel
		"tok",                       // session_token
		"42",                        // session_uid
		nil,                         // recording_url
		nil,                         // review
		"bring questions",           // notes
		nil,                         // cancellation_reason
		nil,                         // cancelled_at
		testCreated,                 // created_at
		testCreated,                 // updated_at
	}
}

func newRepo(t *testing.T) (*Repository, *sqlfake.DB, *txmanager.TransactionManager) {
	t.Helper()
	db, fake := sqlfake.Open()
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db), fake, txmanager.NewTransactionManager(db)
}

func TestSelectByID_ForUpdateSuffix(t *testing.T) {
	plain, args, err := selectByID(7, false).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, plain, "FOR UPDATE")
	assert.Equal(t, []interface{}{int64(7)}, args)

	locked, _, err := selectByID(7, true).ToSql()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(locked, "WHERE id = $1 FOR UPDATE"), locked)
}

func TestGetByID_LocksRowOnlyInsideTransaction(t *testing.T) {
	repo, fake, tx := newRepo(t)

	fake.Row(columns, bookingRow()...)
	_, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.NotContains(t, fake.LastQuery().SQL, "FOR UPDATE")
	assert.False(t, fake.LastQuery().InTx)

	fake.Row(columns, bookingRow()...)
	err = tx.DoSerializable(context.Background(), func(ctx context.Context) error {
		_, err := repo.GetByID(ctx, 7)
		return err
	})
	require.NoError(t, err)
	assert.Contains(t, fake.LastQuery().SQL, "FOR UPDATE")
	assert.True(t, fake.LastQuery().InTx)
	assert.Equal(t, []string{"begin", "commit"}, fake.Events())
}

func TestGetByID_ScansAllColumns(t *testing.T) {
	repo, fake, _ := newRepo(t)
	require.Len(t, bookingRow(), len(columns))

	fake.Row(columns, bookingRow()...)
	b, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(7), b.ID)
	assert.Equal(t, int64(10), b.RequesterID)
	assert.Equal(t, int64(20), b.ProviderID)
	assert.Equal(t, int64(3), b.ServiceID)
	assert.Equal(t, testDate, b.BookingDate)
	assert.Equal(t, "10:00", b.StartTime.String())
	assert.Equal(t, "11:00", b.EndTime.String())
	assert.Equal(t, "Europe/Moscow", *b.Timezone)
	assert.Equal(t, domain.StatusPaid, b.Status)
	assert.Equal(t, "Mentoring", b.ServiceName)
	assert.Equal(t, 50.0, b.Price)
	assert.Equal(t, "usd", b.Currency)
	assert.Equal(t, "pi_3Nabc123", *b.PaymentIntentID)
	assert.Equal(t, "pi_3Nabc123_secret_xyz789", *b.PaymentIntentClientSecret)
	assert.True(t, b.IsPaid)
	require.NotNil(t, b.PaidAt)
	assert.Equal(t, testCreated, *b.PaidAt)
	require.NotNil(t, b.Credentials)
	assert.Equal(t, domain.SessionCredentials{Channel: "booking-7", Token: "tok", UID: "42"}, *b.Credentials)
	assert.Nil(t, b.RecordingURL)
	assert.Nil(t, b.Review)
	assert.Equal(t, "bring questions", *b.Notes)
	assert.Nil(t, b.CancellationReason)
	assert.Nil(t, b.CancelledAt)
	assert.Equal(t, testCreated, b.CreatedAt)
	assert.Equal(t, testCreated, b.UpdatedAt)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, _, _ := newRepo(t)

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCreate_WritesKnownColumns(t *testing.T) {
	repo, fake, _ := newRepo(t)

	fake.Row([]string{"id", "created_at", "updated_at"}, int64(41), testCreated, testCreated)
	created, err := repo.Create(context.Background(), &domain.Booking{
		RequesterID: 10,
		ProviderID:  20,
		ServiceID:   3,
		BookingDate: testDate,
		StartTime:   "10:00",
		EndTime:     "11:00",
		Status:      domain.StatusAwaitingApproval,
		ServiceName: "Mentoring",
		Price:       50,
		Currency:    "usd",
		Notes:       ptr.Ptr("bring questions"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(41), created.ID)
	assert.Equal(t, testCreated, created.CreatedAt)

	q := fake.LastQuery()
	written := insertedColumns(t, q.SQL)
	require.Len(t, q.Args, len(written))
	assertKnownColumns(t, written)

	arg := func(col string) driver.Value {
		for i, c := range written {
			if c == col {
				return q.Args[i]
			}
		}
		t.Fatalf("column %s not written", col)
		return nil
	}
	assert.Equal(t, int64(10), arg("requester_id"))
	assert.Equal(t, "awaiting_approval", arg("status"))
	assert.Equal(t, "10:00", arg("start_time"))
	assert.Equal(t, "bring questions", arg("notes"))
	assert.Nil(t, arg("payment_intent_client_secret"))
	assert.Nil(t, arg("session_token"))
}

func TestUpdate_WritesKnownColumns(t *testing.T) {
	repo, fake, tx := newRepo(t)

	fake.Row([]string{"updated_at"}, testCreated)
	b := &domain.Booking{
		ID:          7,
		BookingDate: testDate,
		StartTime:   "12:00",
		EndTime:     "13:00",
		Status:      domain.StatusPaid,
		IsPaid:      true,
		Credentials: &domain.SessionCredentials{Channel: "booking-7", Token: "tok", UID: "42"},
	}
	err := tx.Do(context.Background(), func(ctx context.Context) error {
		_, err := repo.Update(ctx, b)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, testCreated, b.UpdatedAt)

	q := fake.LastQuery()
	assert.True(t, q.InTx)
	set := updatedColumns(t, q.SQL)
	assertKnownColumns(t, set)
	assert.Contains(t, set, "updated_at")

	// updated_at = NOW() без аргумента, последним идёт id из WHERE
	require.Len(t, q.Args, len(set))
	assert.Equal(t, int64(7), q.Args[len(q.Args)-1])
	assert.Equal(t, "tok", q.Args[indexOf(set, "session_token")])
	assert.Equal(t, "paid", q.Args[indexOf(set, "status")])
}

func TestUpdate_NotFound(t *testing.T) {
	repo, _, _ := newRepo(t)

	_, err := repo.Update(context.Background(), &domain.Booking{ID: 404, StartTime: "10:00", EndTime: "11:00"})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestListByUser_RoleFilters(t *testing.T) {
	repo, fake, _ := newRepo(t)

	rows := [][]driver.Value{bookingRow(), bookingRow()}
	rows[1][0] = int64(8)
	fake.Push(sqlfake.Result{Columns: columns, Rows: rows})

	list, err := repo.ListByUser(context.Background(), domain.BookingsFilter{UserID: 10})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(8), list[1].ID)
	assert.Contains(t, fake.LastQuery().SQL, "(requester_id = $1 OR provider_id = $2)")

	provider := domain.RoleProvider
	status := domain.StatusAccepted
	from := testDate
	_, err = repo.ListByUser(context.Background(), domain.BookingsFilter{UserID: 20, Role: &provider, Status: &status, StartDate: &from})
	require.NoError(t, err)
	q := fake.LastQuery()
	assert.Contains(t, q.SQL, "provider_id = $1")
	assert.NotContains(t, q.SQL, "requester_id =")
	assert.Equal(t, []driver.Value{int64(20), "accepted", testDate}, q.Args)
}

func insertedColumns(t *testing.T, query string) []string {
	t.Helper()
	open, closing := strings.Index(query, "("), strings.Index(query, ")")
	require.True(t, open > 0 && closing > open, query)
	return strings.Split(query[open+1:closing], ",")
}

func updatedColumns(t *testing.T, query string) []string {
	t.Helper()
	start, end := strings.Index(query, " SET "), strings.Index(query, " WHERE ")
	require.True(t, start > 0 && end > start, query)

	var cols []string
	for _, assignment := range strings.Split(query[start+len(" SET "):end], ", ") {
		cols = append(cols, strings.TrimSpace(strings.SplitN(assignment, "=", 2)[0]))
	}
	return cols
}

func assertKnownColumns(t *testing.T, written []string) {
	t.Helper()
	for _, col := range written {
		assert.Contains(t, columns, col, "column %q is written but never read back", col)
	}
}

func indexOf(list []string, item string) int {
	for i, v := range list {
		if v == item {
			return i
		}
	}
	return -1
}
