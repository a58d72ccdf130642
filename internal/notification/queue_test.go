package notification_test

import (
	"context"
	"testing"
	"time"

	"event-link-gateway/internal/model"
	"event-link-gateway/internal/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(toasts []model.Toast) []int {
	out := make([]int, 0, len(toasts))
	for _, t := range toasts {
		out = append(out, t.ID)
	}
	return out
}

func TestQueue_Push(t *testing.T) {
	sched := notification.NewManualScheduler()
	q := notification.NewQueue(sched)

	assert.Equal(t, 1, q.Push("Registered", model.ToastSuccess))
	assert.Equal(t, 2, q.Error("Failed"))
	assert.Equal(t, 3, q.Info("Heads up"))

	snap := q.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, model.Toast{ID: 1, Kind: model.ToastSuccess, Text: "Registered"}, snap[0])
	assert.Equal(t, model.ToastError, snap[1].Kind)
	assert.Equal(t, 3, sched.Pending())
}

func TestQueue_Eviction(t *testing.T) {
	t.Run("Success - evicted after fixed delay", func(t *testing.T) {
		sched := notification.NewManualScheduler()
		q := notification.NewQueue(sched)
		q.Success("Registered")
		q.Success("Again")

		sched.Advance(notification.EvictAfter - time.Millisecond)
		assert.Len(t, q.Snapshot(), 2)

		sched.Advance(time.Millisecond)
		assert.Empty(t, q.Snapshot())
	})

	t.Run("Success - eviction follows push order", func(t *testing.T) {
		sched := notification.NewManualScheduler()
		q := notification.NewQueue(sched)
		q.Success("first")
		sched.Advance(2 * time.Second)
		q.Success("second")

		sched.Advance(3 * time.Second)
		assert.Equal(t, []int{2}, ids(q.Snapshot()))

		sched.Advance(2 * time.Second)
		assert.Empty(t, q.Snapshot())
	})
}

func TestQueue_Dismiss(t *testing.T) {
	sched := notification.NewManualScheduler()
	q := notification.NewQueue(sched)
	q.Success("one")
	q.Success("two")

	q.Dismiss(1)
	assert.Equal(t, []int{2}, ids(q.Snapshot()))
	assert.Equal(t, 1, sched.Pending())

	// idempotent
	q.Dismiss(1)
	q.Dismiss(99)
	assert.Equal(t, []int{2}, ids(q.Snapshot()))

	sched.Advance(notification.EvictAfter)
	assert.Empty(t, q.Snapshot())
	q.Dismiss(2)
}

func TestQueue_IDsNeverReused(t *testing.T) {
	sched := notification.NewManualScheduler()
	q := notification.NewQueue(sched)
	q.Success("a")
	q.Dismiss(1)
	sched.Advance(notification.EvictAfter)
	assert.Equal(t, 2, q.Success("b"))
}

func TestQueue_Stream(t *testing.T) {
	sched := notification.NewManualScheduler()
	q := notification.NewQueue(sched)
	q.Success("before")

	ctx, cancel := context.WithCancel(context.Background())
	stream := q.Stream(ctx)

	first := <-stream
	assert.Equal(t, []int{1}, ids(first))

	q.Error("after")
	assert.Equal(t, []int{1, 2}, ids(<-stream))

	sched.Advance(notification.EvictAfter)
	assert.Empty(t, <-stream)

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-stream
		return !open
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, q.Subscribers())
}

func TestQueue_StreamKeepsLatest(t *testing.T) {
	sched := notification.NewManualScheduler()
	q := notification.NewQueue(sched)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream := q.Stream(ctx)

	q.Success("a")
	q.Success("b")
	q.Success("c")

	assert.Equal(t, []int{1, 2, 3}, ids(<-stream))
}

func TestQueue_CloseEndsStreams(t *testing.T) {
	sched := notification.NewManualScheduler()
	q := notification.NewQueue(sched)
	q.Info("pending")

	stream := q.Stream(context.Background())
	assert.Equal(t, []int{1}, ids(<-stream))
	require.Equal(t, 1, q.Subscribers())

	q.Close()
	_, open := <-stream
	assert.False(t, open)
	assert.Equal(t, 0, q.Subscribers())
	assert.Equal(t, 0, sched.Pending())

	// 關閉後訂閱只會拿到最後的快照
	late := q.Stream(context.Background())
	assert.Equal(t, []int{1}, ids(<-late))
	_, open = <-late
	assert.False(t, open)

	q.Close()
}

func TestQueue_RealScheduler(t *testing.T) {
	q := notification.NewQueue(nil)
	id := q.Info("real timer")
	q.Dismiss(id)
	assert.Empty(t, q.Snapshot())
	q.Close()
}
