package worker

import (
	"context"
	"fmt"

	"event-link-gateway/internal/queue"
	apperrors "event-link-gateway/pkg/app_errors"
	"event-link-gateway/pkg/logger"

	"go.uber.org/zap"
)

type ReactionWorker interface {
	// 訂閱 reaction 隊列，一次只執行一個
	Start(ctx context.Context) error
}

type ReactionWorkerImpl struct {
	queue queue.ReactionQueue
	log   *zap.Logger
}

func NewReactionWorker(q queue.ReactionQueue, log *zap.Logger) ReactionWorker {
	if log == nil {
		log = logger.WithComponent("worker")
	}
	return &ReactionWorkerImpl{
		queue: q,
		log:   log,
	}
}

func (w *ReactionWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			w.run(msg.Data)
			msg.Ack()
		}
	}()
	return nil
}

// run panic 只影響單一 reaction，事件迴圈繼續
func (w *ReactionWorkerImpl) run(r queue.Reaction) {
	defer func() {
		if rec := recover(); rec != nil {
			w.log.Error("reaction panicked",
				zap.String("reaction", r.Name),
				zap.String("panic", fmt.Sprint(rec)),
			)
		}
	}()
	if r.Apply != nil {
		r.Apply()
	}
}

// Do 排入 reaction 並等待執行完成
func Do(ctx context.Context, q queue.ReactionQueue, name string, apply func()) error {
	done := make(chan struct{})
	if err := q.Publish(ctx, queue.Reaction{Name: name, Apply: apply, Done: done}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.Closed():
		// 關閉前可能剛好處理完
		select {
		case <-done:
			return nil
		default:
		}
		return fmt.Errorf("%s: %w", name, apperrors.ErrVisitorClosed)
	}
}
