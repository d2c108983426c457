package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	"github.com/m04kA/SMC-SessionBookingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SessionBookingService/pkg/txmanager"
)

const table = "bookings"

var columns = []string{
	"id",
	"requester_id",
	"provider_id",
	"service_id",
	"booking_date",
	"start_time",
	"end_time",
	"timezone",
	"status",
	"service_name",
	"price",
	"currency",
	"payment_intent_id",
	"payment_intent_client_secret",
	"is_paid",
	"paid_at",
	"session_channel",
	"session_token",
	"session_uid",
	"recording_url",
	"review",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Если в контексте передана активная транзакция, использует её
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	channel, token, uid := credentialColumns(booking.Credentials)

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"requester_id",
			"provider_id",
			"service_id",
			"booking_date",
			"start_time",
			"end_time",
			"timezone",
			"status",
			"service_name",
			"price",
			"currency",
			"payment_intent_id",
			"payment_intent_client_secret",
			"is_paid",
			"paid_at",
			"session_channel",
			"session_token",
			"session_uid",
			"notes",
		).
		Values(
			booking.RequesterID,
			booking.ProviderID,
			booking.ServiceID,
			booking.BookingDate,
			booking.StartTime,
			booking.EndTime,
			booking.Timezone,
			booking.Status,
			booking.ServiceName,
			booking.Price,
			booking.Currency,
			booking.PaymentIntentID,
			booking.PaymentIntentClientSecret,
			booking.IsPaid,
			booking.PaidAt,
			channel,
			token,
			uid,
			booking.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
// Внутри транзакции строка блокируется (FOR UPDATE) до конца транзакции
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := selectByID(id, txmanager.IsInTransaction(ctx)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

func selectByID(id int64, forUpdate bool) squirrel.SelectBuilder {
	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id})

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}
	return selectBuilder
}

// ListByUser получает бронирования участника
// Роль в фильтре ограничивает выборку стороной бронирования, без роли - обе стороны
func (r *Repository) ListByUser(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		OrderBy("booking_date DESC", "start_time DESC")

	switch {
	case filter.Role == nil:
		selectBuilder = selectBuilder.Where(squirrel.Or{
			squirrel.Eq{"requester_id": filter.UserID},
			squirrel.Eq{"provider_id": filter.UserID},
		})
	case *filter.Role == domain.RoleRequester:
		selectBuilder = selectBuilder.Where(squirrel.Eq{"requester_id": filter.UserID})
	default:
		selectBuilder = selectBuilder.Where(squirrel.Eq{"provider_id": filter.UserID})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"booking_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"booking_date": *filter.EndDate})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByUser - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByUser - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByUser - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByUser - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

// Update сохраняет изменяемые поля бронирования целиком
// Вызывается из транзакции после GetByID (read-modify-write)
func (r *Repository) Update(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	channel, token, uid := credentialColumns(booking.Credentials)

	query, args, err := psqlbuilder.Update(table).
		Set("booking_date", booking.BookingDate).
		Set("start_time", booking.StartTime).
		Set("end_time", booking.EndTime).
		Set("timezone", booking.Timezone).
		Set("status", booking.Status).
		Set("payment_intent_id", booking.PaymentIntentID).
		Set("payment_intent_client_secret", booking.PaymentIntentClientSecret).
		Set("is_paid", booking.IsPaid).
		Set("paid_at", booking.PaidAt).
		Set("session_channel", channel).
		Set("session_token", token).
		Set("session_uid", uid).
		Set("recording_url", booking.RecordingURL).
		Set("review", booking.Review).
		Set("cancellation_reason", booking.CancellationReason).
		Set("cancelled_at", booking.CancelledAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": booking.ID}).
		Suffix("RETURNING updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	booking.UpdatedAt = updatedAt.Time
	return booking, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBooking сканирует строку в порядке columns
func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var (
		createdAt, updatedAt sql.NullTime
		channel, token, uid  sql.NullString
	)

	err := row.Scan(
		&booking.ID,
		&booking.RequesterID,
		&booking.ProviderID,
		&booking.ServiceID,
		&booking.BookingDate,
		&booking.StartTime,
		&booking.EndTime,
		&booking.Timezone,
		&booking.Status,
		&booking.ServiceName,
		&booking.Price,
		&booking.Currency,
		&booking.PaymentIntentID,
		&booking.PaymentIntentClientSecret,
		&booking.IsPaid,
		&booking.PaidAt,
		&channel,
		&token,
		&uid,
		&booking.RecordingURL,
		&booking.Review,
		&booking.Notes,
		&booking.CancellationReason,
		&booking.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if channel.Valid || token.Valid {
		booking.Credentials = &domain.SessionCredentials{
			Channel: channel.String,
			Token:   token.String,
			UID:     uid.String,
		}
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

func credentialColumns(c *domain.SessionCredentials) (channel, token, uid *string) {
	if c.IsEmpty() {
		return nil, nil, nil
	}
	return &c.Channel, &c.Token, &c.UID
}
