package models

import (
	"time"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	"github.com/m04kA/SMC-SessionBookingService/pkg/types"
)

// Request модели

// ListRequest запрос списка бронирований участника
type ListRequest struct {
	ActorID      int64                 // кто запрашивает
	UserID       int64                 // чьи бронирования
	Role         *domain.Role          // requester/provider, nil - обе стороны
	Status       *domain.BookingStatus // опционально
	NeedsPayment bool                  // только ожидающие оплаты от участника
	Upcoming     bool                  // только оплаченные сессии ближайших 7 дней
}

// RescheduleRequest новое окно сессии
type RescheduleRequest struct {
	BookingDate time.Time
	StartTime   types.TimeString
	EndTime     types.TimeString
	Timezone    *string
}

// Window конвертирует запрос в окно расписания
func (r *RescheduleRequest) Window() domain.ScheduleWindow {
	return domain.ScheduleWindow{
		BookingDate: r.BookingDate,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Timezone:    r.Timezone,
	}
}

// Response модели

// CredentialsResponse учётные данные видеосессии
type CredentialsResponse struct {
	Channel string `json:"channel"`
	Token   string `json:"token"`
	UID     string `json:"uid"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID          int64   `json:"id"`
	RequesterID int64   `json:"requesterId"`
	ProviderID  int64   `json:"providerId"`
	ServiceID   int64   `json:"serviceId"`
	BookingDate string  `json:"bookingDate"` // "2025-10-15"
	StartTime   string  `json:"startTime"`   // "10:00"
	EndTime     string  `json:"endTime"`     // "11:00"
	Timezone    *string `json:"timezone,omitempty"`
	Status      string  `json:"status"`

	// Денормализованные данные
	ServiceName string  `json:"serviceName"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`

	// Оплата
	PaymentIntentID           *string `json:"paymentIntentId,omitempty"`
	PaymentIntentClientSecret *string `json:"paymentIntentClientSecret,omitempty"`
	IsPaid                    bool    `json:"isPaid"`
	NeedsPayment              bool    `json:"needsPayment"`
	PaidAt                    *string `json:"paidAt,omitempty"` // ISO 8601 format

	RecordingURL *string `json:"recordingUrl,omitempty"`
	Review       *string `json:"review,omitempty"`
	Notes        *string `json:"notes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
// Учётные данные видеосессии сюда не попадают, их отдаёт только эндпоинт доступности
// Client secret отдается только заказчику, которому предстоит оплата
func FromDomainBooking(b *domain.Booking, viewerID int64) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		RequesterID:        b.RequesterID,
		ProviderID:         b.ProviderID,
		ServiceID:          b.ServiceID,
		BookingDate:        b.BookingDate.Format(domain.DateFormat),
		StartTime:          b.StartTime.String(),
		EndTime:            b.EndTime.String(),
		Timezone:           b.Timezone,
		Status:             string(b.Status),
		ServiceName:        b.ServiceName,
		Price:              b.Price,
		Currency:           b.Currency,
		PaymentIntentID:    b.PaymentIntentID,
		IsPaid:             b.IsPaid,
		NeedsPayment:       b.NeedsPayment(),
		RecordingURL:       b.RecordingURL,
		Review:             b.Review,
		Notes:              b.Notes,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if viewerID == b.RequesterID {
		resp.PaymentIntentClientSecret = b.PaymentIntentClientSecret
	}

	resp.PaidAt = formatTime(b.PaidAt)
	resp.CancelledAt = formatTime(b.CancelledAt)

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking, viewerID int64) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking, viewerID); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// FromDomainCredentials конвертирует учётные данные видеосессии
func FromDomainCredentials(c *domain.SessionCredentials) *CredentialsResponse {
	if c.IsEmpty() {
		return nil
	}
	return &CredentialsResponse{Channel: c.Channel, Token: c.Token, UID: c.UID}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
