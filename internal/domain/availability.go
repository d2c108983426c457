package domain

import (
	"time"

	"github.com/m04kA/SMC-SessionBookingService/pkg/types"
)

// AvailabilityWindow is the derived join-readiness of a session at one instant.
// It is recomputed on every evaluation and never stored.
type AvailabilityWindow struct {
	CanGoLive     bool
	IsOver        bool
	IsUpcoming    bool
	TimeUntilOpen *time.Duration // nil when already open or past

	SessionStart  time.Time
	SessionEnd    time.Time
	GoLiveOpensAt time.Time
}

// CrossesMidnight returns true if the session ends on the following day
func (w AvailabilityWindow) CrossesMidnight() bool {
	y1, m1, d1 := w.SessionStart.Date()
	y2, m2, d2 := w.SessionEnd.Date()
	return y1 != y2 || m1 != m2 || d1 != d2
}

// TimeUntilOpenMs returns the wait in milliseconds, or nil
func (w AvailabilityWindow) TimeUntilOpenMs() *int64 {
	if w.TimeUntilOpen == nil {
		return nil
	}
	ms := w.TimeUntilOpen.Milliseconds()
	return &ms
}

// ScheduleWindow requested local schedule of a session
type ScheduleWindow struct {
	BookingDate time.Time
	StartTime   types.TimeString
	EndTime     types.TimeString
	Timezone    *string // IANA label, stored as is
}
