package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusSubscribeKind(t *testing.T) {
	bus := NewBus()

	sayCount := 0
	phaseCount := 0

	h1 := bus.SubscribeKind(KindSay, func(Notification) { sayCount++ })
	bus.SubscribeKind(KindPhaseChanged, func(Notification) { phaseCount++ })

	bus.Publish(New(KindSay, nil))
	assert.Equal(t, 1, sayCount)
	assert.Equal(t, 0, phaseCount)

	bus.Publish(New(KindPhaseChanged, nil))
	assert.Equal(t, 1, sayCount)
	assert.Equal(t, 1, phaseCount)

	bus.Unsubscribe(h1)
	bus.Publish(New(KindSay, nil))
	assert.Equal(t, 1, sayCount, "unsubscribed listener must not fire")
}

func TestBusDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.Subscribe(func(Notification) { order = append(order, "first") })
	bus.SubscribeKind(KindDraw, func(Notification) { order = append(order, "second") })
	bus.Subscribe(func(Notification) { order = append(order, "third") })

	bus.Publish(New(KindDraw, nil))
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

type recordingObserver struct {
	got []Kind
}

func (r *recordingObserver) Notify(n Notification) {
	r.got = append(r.got, n.Kind)
}

func TestBusObserver(t *testing.T) {
	bus := NewBus()
	obs := &recordingObserver{}
	bus.SubscribeObserver(obs)

	bus.PublishBatch([]Notification{New(KindGameStart, nil), New(KindShuffle, nil)})
	assert.Equal(t, []Kind{KindGameStart, KindShuffle}, obs.got)

	assert.Equal(t, -1, bus.SubscribeObserver(nil))
	assert.Equal(t, -1, bus.Subscribe(nil))
}

func TestBusListenerMayUnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus()

	count := 0
	var handle int
	handle = bus.Subscribe(func(Notification) {
		count++
		bus.Unsubscribe(handle)
	})

	bus.Publish(New(KindSay, nil))
	bus.Publish(New(KindSay, nil))
	assert.Equal(t, 1, count)
	assert.Equal(t, 0, bus.Len())
}

func TestNewStampsTime(t *testing.T) {
	before := time.Now()
	n := New(KindRollDie, &PlayerRef{ID: 1, Name: "Alice"})
	after := time.Now()

	require.NotNil(t, n.Player)
	assert.Equal(t, "Alice", n.Player.Name)
	assert.False(t, n.Timestamp.Before(before) || n.Timestamp.After(after))
}
