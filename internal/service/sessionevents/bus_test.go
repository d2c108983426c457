package sessionevents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SessionBookingService/pkg/logger"
)

func TestBus_PublishFiltersByBooking(t *testing.T) {
	bus := NewBus(4, nil, logger.NewNop())

	only7, unsub7 := bus.Subscribe(7)
	defer unsub7()
	all, unsubAll := bus.Subscribe(0)
	defer unsubAll()

	require.NoError(t, bus.Publish(Event{BookingID: 7, Type: EventCredentialsIssued}))
	require.NoError(t, bus.Publish(Event{BookingID: 8, Type: EventTrackPublished}))

	e := <-only7
	assert.Equal(t, EventCredentialsIssued, e.Type)
	assert.False(t, e.At.IsZero())
	assert.Len(t, only7, 0)

	assert.Len(t, all, 2)
}

func TestBus_RejectsUnknownType(t *testing.T) {
	bus := NewBus(1, nil, logger.NewNop())
	err := bus.Publish(Event{BookingID: 1, Type: "video_frame"})
	assert.ErrorIs(t, err, ErrUnknownEventType)
}

func TestBus_FullBufferDoesNotBlock(t *testing.T) {
	bus := NewBus(1, nil, logger.NewNop())
	ch, unsub := bus.Subscribe(1)
	defer unsub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			_ = bus.Publish(Event{BookingID: 1, Type: EventTrackPublished})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber buffer")
	}
	assert.Len(t, ch, 1)
}

func TestBus_UnsubscribeAndClose(t *testing.T) {
	bus := NewBus(1, nil, logger.NewNop())
	ch, unsub := bus.Subscribe(1)
	unsub()
	unsub()

	_, ok := <-ch
	assert.False(t, ok)

	other, _ := bus.Subscribe(0)
	bus.Close()
	_, ok = <-other
	assert.False(t, ok)

	assert.NoError(t, bus.Publish(Event{BookingID: 1, Type: EventTrackPublished}))
}
