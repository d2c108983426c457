package sessionevents

import (
	"fmt"
	"sync"
	"time"
)

const defaultBuffer = 32

type subscriber struct {
	bookingID int64 // 0 - все бронирования
	ch        chan Event
}

// Bus раздаёт события подписчикам через буферизованные каналы
// Publish не блокируется: при заполненном буфере событие для подписчика отбрасывается
type Bus struct {
	mu       sync.RWMutex
	subs     map[int]*subscriber
	nextID   int
	buffer   int
	closed   bool
	recorder Recorder
	logger   Logger
	now      func() time.Time
}

// NewBus создает новую шину событий
func NewBus(buffer int, recorder Recorder, logger Logger) *Bus {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Bus{
		subs:     make(map[int]*subscriber),
		buffer:   buffer,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Publish отправляет событие всем подходящим подписчикам
func (b *Bus) Publish(e Event) error {
	if _, ok := ParseEventType(string(e.Type)); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEventType, e.Type)
	}
	if e.At.IsZero() {
		e.At = b.now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil
	}

	if b.recorder != nil {
		b.recorder.ObserveSessionEvent(string(e.Type))
	}

	for id, sub := range b.subs {
		if sub.bookingID != 0 && sub.bookingID != e.BookingID {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			b.logger.Warn("sessionevents: subscriber=%d buffer full, dropped %s for booking=%d", id, e.Type, e.BookingID)
		}
	}
	return nil
}

// Subscribe подписывает на события бронирования (bookingID = 0 - на все)
// Возвращает канал и функцию отписки, которая закрывает канал
func (b *Bus) Subscribe(bookingID int64) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = &subscriber{bookingID: bookingID, ch: ch}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub.ch)
			}
		})
	}
}

// Close закрывает все подписки
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, id)
	}
}
