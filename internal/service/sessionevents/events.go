package sessionevents

import (
	"errors"
	"time"
)

// EventType тип события видеотранспорта (закрытый набор)
type EventType string

const (
	EventCredentialsIssued  EventType = "credentials_issued"
	EventCredentialsRevoked EventType = "credentials_revoked"
	EventTrackPublished     EventType = "track_published"
	EventTrackUnpublished   EventType = "track_unpublished"
	EventParticipantJoined  EventType = "participant_joined"
	EventParticipantLeft    EventType = "participant_left"
)

var knownEvents = map[EventType]struct{}{
	EventCredentialsIssued:  {},
	EventCredentialsRevoked: {},
	EventTrackPublished:     {},
	EventTrackUnpublished:   {},
	EventParticipantJoined:  {},
	EventParticipantLeft:    {},
}

// ErrUnknownEventType возвращается для типа события вне закрытого набора
var ErrUnknownEventType = errors.New("sessionevents: unknown event type")

// ParseEventType проверяет, что строка является известным типом события
func ParseEventType(s string) (EventType, bool) {
	_, ok := knownEvents[EventType(s)]
	return EventType(s), ok
}

// Event событие по бронированию
type Event struct {
	BookingID int64
	Type      EventType
	UserID    int64 // участник, к которому относится событие (0 - не указан)
	At        time.Time
}

// Recorder интерфейс для метрик
type Recorder interface {
	ObserveSessionEvent(eventType string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
