package queue

import (
	"context"
	"sync"

	apperrors "event-link-gateway/pkg/app_errors"
)

// Reaction 訪客事件迴圈中的一個不可中斷步驟
type Reaction struct {
	Name  string
	Apply func()
	// Done 非 nil 時，處理完成後關閉
	Done chan struct{}
}

type Delivery struct {
	Data Reaction
	Ack  func()
}

type ReactionQueue interface {
	// 發送 reaction 到隊列
	Publish(ctx context.Context, r Reaction) error
	// 訂閱 reaction 隊列
	Subscribe(ctx context.Context) (<-chan Delivery, error)
	// Closed 隊列關閉後會被 close
	Closed() <-chan struct{}
	Close()
}

type ReactionQueueImpl struct {
	// 使用 Go channel 依序排隊
	ch     chan Reaction
	closed chan struct{}
	once   sync.Once
}

func NewReactionQueue(bufferSize int) ReactionQueue {
	return &ReactionQueueImpl{
		ch:     make(chan Reaction, bufferSize),
		closed: make(chan struct{}),
	}
}

func (q *ReactionQueueImpl) Publish(ctx context.Context, r Reaction) error {
	select {
	case <-q.closed:
		return apperrors.ErrVisitorClosed
	default:
	}

	select {
	case <-q.closed:
		return apperrors.ErrVisitorClosed
	case <-ctx.Done():
		return ctx.Err()
	case q.ch <- r:
		return nil
	}
}

func (q *ReactionQueueImpl) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-q.closed:
				return
			case r := <-q.ch:
				d := Delivery{
					Data: r,
					Ack: func() {
						if r.Done != nil {
							close(r.Done)
						}
					},
				}
				select {
				case out <- d:
				case <-ctx.Done():
					return
				case <-q.closed:
					return
				}
			}
		}
	}()

	return out, nil
}

func (q *ReactionQueueImpl) Closed() <-chan struct{} {
	return q.closed
}

// Close 之後 Publish 一律回傳 ErrVisitorClosed，尚未處理的 reaction 會被丟棄
func (q *ReactionQueueImpl) Close() {
	q.once.Do(func() { close(q.closed) })
}
