package queue_test

import (
	"context"
	"testing"
	"time"

	"event-link-gateway/internal/queue"
	apperrors "event-link-gateway/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactionQueue_DeliversInOrder(t *testing.T) {
	q := queue.NewReactionQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := q.Subscribe(ctx)
	require.NoError(t, err)

	var order []string
	for _, name := range []string{"a", "b", "c"} {
		n := name
		require.NoError(t, q.Publish(ctx, queue.Reaction{Name: n, Apply: func() { order = append(order, n) }}))
	}

	for i := 0; i < 3; i++ {
		select {
		case d := <-msgs:
			d.Data.Apply()
			d.Ack()
		case <-time.After(time.Second):
			t.Fatal("delivery timed out")
		}
	}
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestReactionQueue_AckClosesDone(t *testing.T) {
	q := queue.NewReactionQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, _ := q.Subscribe(ctx)
	done := make(chan struct{})
	require.NoError(t, q.Publish(ctx, queue.Reaction{Name: "x", Apply: func() {}, Done: done}))

	d := <-msgs
	d.Ack()
	select {
	case <-done:
	default:
		t.Fatal("done not closed after ack")
	}
}

func TestReactionQueue_PublishAfterClose(t *testing.T) {
	q := queue.NewReactionQueue(1)
	q.Close()
	q.Close()

	err := q.Publish(context.Background(), queue.Reaction{Name: "late"})
	assert.ErrorIs(t, err, apperrors.ErrVisitorClosed)

	select {
	case <-q.Closed():
	default:
		t.Fatal("closed channel not closed")
	}
}

func TestReactionQueue_PublishRespectsContext(t *testing.T) {
	q := queue.NewReactionQueue(0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := q.Publish(ctx, queue.Reaction{Name: "blocked"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
