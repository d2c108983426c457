package domain

import "time"

// Session readiness constants
const (
	GoLiveBuffer    = 10 * time.Minute   // join opens this long before start
	UpcomingHorizon = 7 * 24 * time.Hour // preview lists only
)

// Payment constants
const (
	DefaultMaxActionRetries = 3
	DefaultCurrency         = "usd"
)

// Business validation constants
const (
	MaxNotesLength              = 500
	MaxReviewLength             = 2000
	MaxCancellationReasonLength = 500
	MaxRecordingURLLength       = 2048
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// TerminalStatuses статусы, после которых запись статуса запрещена
var TerminalStatuses = []BookingStatus{
	StatusRejected,
	StatusCompleted,
	StatusCancelled,
}

// ActiveStatuses статусы бронирований в работе
var ActiveStatuses = []BookingStatus{
	StatusAwaitingApproval,
	StatusAccepted,
	StatusPaid,
	StatusRescheduled,
}
