package sessionevents

import (
	"context"
	"sync"
)

// State состояние видеосессии бронирования, собранное из событий
type State struct {
	CredentialsIssued bool
	Participants      int
	PublishedTracks   int
}

// Tracker поддерживает состояние видеосессий по потоку событий
// Зависит только от факта наличия учётных данных и счётчиков, порядок событий транспорта не важен
type Tracker struct {
	mu     sync.RWMutex
	states map[int64]*State
}

func NewTracker() *Tracker {
	return &Tracker{states: make(map[int64]*State)}
}

// Run применяет события из канала до его закрытия или отмены ctx
func (t *Tracker) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			t.Apply(e)
		}
	}
}

// Apply применяет одно событие
func (t *Tracker) Apply(e Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.states[e.BookingID]
	if !ok {
		st = &State{}
		t.states[e.BookingID] = st
	}

	switch e.Type {
	case EventCredentialsIssued:
		st.CredentialsIssued = true
	case EventCredentialsRevoked:
		delete(t.states, e.BookingID)
	case EventParticipantJoined:
		st.Participants++
	case EventParticipantLeft:
		if st.Participants > 0 {
			st.Participants--
		}
	case EventTrackPublished:
		st.PublishedTracks++
	case EventTrackUnpublished:
		if st.PublishedTracks > 0 {
			st.PublishedTracks--
		}
	}
}

// Snapshot возвращает копию состояния сессии бронирования
func (t *Tracker) Snapshot(bookingID int64) State {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if st, ok := t.states[bookingID]; ok {
		return *st
	}
	return State{}
}
