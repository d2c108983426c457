package domain

import (
	"strings"
	"time"

	"github.com/m04kA/SMC-SessionBookingService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusAwaitingApproval BookingStatus = "awaiting_approval"
	StatusAccepted         BookingStatus = "accepted"
	StatusPaid             BookingStatus = "paid" // оплачено, сессия запланирована
	StatusRescheduled      BookingStatus = "rescheduled"
	StatusRejected         BookingStatus = "rejected"
	StatusCompleted        BookingStatus = "completed"
	StatusCancelled        BookingStatus = "cancelled"
)

// transitions is the only source of truth for allowed status changes.
// Terminal statuses have no outgoing edges.
var transitions = map[BookingStatus][]BookingStatus{
	StatusAwaitingApproval: {StatusAccepted, StatusRejected, StatusRescheduled, StatusCancelled},
	StatusRescheduled:      {StatusAccepted, StatusCancelled},
	StatusAccepted:         {StatusPaid, StatusRescheduled, StatusCancelled},
	StatusPaid:             {StatusCompleted, StatusCancelled},
	StatusRejected:         {},
	StatusCompleted:        {},
	StatusCancelled:        {},
}

// IsValid returns true if the status is a known booking status
func (s BookingStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo returns true if the graph has an edge from s to target
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further status writes are permitted
func (s BookingStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string into a known BookingStatus
func ParseBookingStatus(s string) (BookingStatus, bool) {
	status := BookingStatus(s)
	return status, status.IsValid()
}

// SessionCredentials opaque bundle for joining the real-time video transport
type SessionCredentials struct {
	Channel string
	Token   string
	UID     string
}

// IsEmpty returns true if no credentials were issued
func (c *SessionCredentials) IsEmpty() bool {
	return c == nil || (c.Channel == "" && c.Token == "")
}

// Booking represents one requested/scheduled session between requester and provider
type Booking struct {
	ID          int64
	RequesterID int64
	ProviderID  int64
	ServiceID   int64

	// Расписание в локальном времени "HH:MM"
	BookingDate time.Time
	StartTime   types.TimeString
	EndTime     types.TimeString
	Timezone    *string // метка часового пояса, в арифметике не используется

	Status BookingStatus

	// Денормализованные данные услуги
	ServiceName string
	Price       float64
	Currency    string

	// Оплата
	PaymentIntentID           *string
	PaymentIntentClientSecret *string
	IsPaid                    bool
	PaidAt                    *time.Time

	Credentials *SessionCredentials

	// Артефакты после завершения
	RecordingURL *string
	Review       *string

	Notes              *string
	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy so transitions never mutate the caller's snapshot
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	c := *b
	c.Timezone = cloneString(b.Timezone)
	c.PaymentIntentID = cloneString(b.PaymentIntentID)
	c.PaymentIntentClientSecret = cloneString(b.PaymentIntentClientSecret)
	c.RecordingURL = cloneString(b.RecordingURL)
	c.Review = cloneString(b.Review)
	c.Notes = cloneString(b.Notes)
	c.CancellationReason = cloneString(b.CancellationReason)
	if b.PaidAt != nil {
		t := *b.PaidAt
		c.PaidAt = &t
	}
	if b.CancelledAt != nil {
		t := *b.CancelledAt
		c.CancelledAt = &t
	}
	if b.Credentials != nil {
		cred := *b.Credentials
		c.Credentials = &cred
	}
	return &c
}

// HasPaymentIntent returns true if a usable payment intent is attached
func (b *Booking) HasPaymentIntent() bool {
	return b.PaymentIntentID != nil && strings.TrimSpace(*b.PaymentIntentID) != "" &&
		b.PaymentIntentClientSecret != nil && strings.TrimSpace(*b.PaymentIntentClientSecret) != ""
}

// NeedsPayment gates the "pay now" action and the MarkPaid guard alike
func (b *Booking) NeedsPayment() bool {
	return b.HasPaymentIntent() && b.Status == StatusAccepted && !b.IsPaid
}

// IsSettled returns true when the session is paid and scheduled
func (b *Booking) IsSettled() bool {
	return b.IsPaid && b.Status == StatusPaid
}

// IsParticipant returns true if userID is the requester or the provider
func (b *Booking) IsParticipant(userID int64) bool {
	return b.RequesterID == userID || b.ProviderID == userID
}

// ClearPaymentIntent drops a payment intent that no longer matches the booking terms
func (b *Booking) ClearPaymentIntent() {
	b.PaymentIntentID = nil
	b.PaymentIntentClientSecret = nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// BookingsFilter фильтр выборки бронирований участника из хранилища
type BookingsFilter struct {
	UserID    int64          // Обязательный параметр
	Role      *Role          // nil - любая роль
	Status    *BookingStatus // Фильтр по статусу (опционально)
	StartDate *time.Time     // Начало периода (опционально)
	EndDate   *time.Time     // Конец периода (опционально)
}

// Role participant role in a booking
type Role string

const (
	RoleRequester Role = "requester"
	RoleProvider  Role = "provider"
)

// ParseRole converts a string into a Role
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleRequester, RoleProvider:
		return Role(s), true
	}
	return "", false
}
