package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChangeFeedInvokesCreateHandlersSynchronously(t *testing.T) {
	feed := NewMemoryChangeFeed()

	var got []any
	feed.OnCreate(CollAppointments, func(doc any) {
		got = append(got, doc)
	})

	feed.EmitCreate(CollAppointments, "doc-1")
	feed.EmitCreate(CollNotifications, "doc-2")

	// Handlers fire on the emitting goroutine, scoped to their collection.
	assert.Equal(t, []any{"doc-1"}, got)
}

func TestChangeFeedUpdatePassesBothSnapshots(t *testing.T) {
	feed := NewMemoryChangeFeed()

	var gotBefore, gotAfter any
	feed.OnUpdate(CollAppointments, func(before, after any) {
		gotBefore, gotAfter = before, after
	})

	feed.EmitUpdate(CollAppointments, "old", "new")

	assert.Equal(t, "old", gotBefore)
	assert.Equal(t, "new", gotAfter)
}

func TestChangeFeedSubscriptionSeesAllEventKinds(t *testing.T) {
	feed := NewMemoryChangeFeed()

	var events []ChangeEvent
	feed.Subscribe(CollNotifications, func(ev ChangeEvent) {
		events = append(events, ev)
	})

	feed.EmitCreate(CollNotifications, "created")
	feed.EmitUpdate(CollNotifications, "old", "new")
	feed.EmitDelete(CollNotifications, "removed")

	if assert.Len(t, events, 3) {
		assert.Nil(t, events[0].Before)
		assert.Equal(t, "created", events[0].After)
		assert.Equal(t, "old", events[1].Before)
		assert.Equal(t, "new", events[1].After)
		assert.Equal(t, "removed", events[2].Before)
		assert.Nil(t, events[2].After)
	}
}

func TestChangeFeedCancelStopsDelivery(t *testing.T) {
	feed := NewMemoryChangeFeed()

	count := 0
	sub := feed.Subscribe(CollNotifications, func(ChangeEvent) {
		count++
	})

	feed.EmitCreate(CollNotifications, "one")
	sub.Cancel()
	sub.Cancel()
	feed.EmitCreate(CollNotifications, "two")

	assert.Equal(t, 1, count)
}

func TestChangeFeedIndependentSubscriptions(t *testing.T) {
	feed := NewMemoryChangeFeed()

	a, b := 0, 0
	subA := feed.Subscribe(CollNotifications, func(ChangeEvent) { a++ })
	feed.Subscribe(CollNotifications, func(ChangeEvent) { b++ })

	feed.EmitCreate(CollNotifications, "one")
	subA.Cancel()
	feed.EmitCreate(CollNotifications, "two")

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}
