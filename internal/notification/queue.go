// Package notification 短暫顯示的通知佇列 (toast)。
package notification

import (
	"context"
	"sync"
	"time"

	"event-link-gateway/internal/model"
)

// EvictAfter 每則通知的存活時間
const EvictAfter = 5 * time.Second

// Queue 依推入順序保存通知，到期自動移除。
// id 從 1 開始遞增，在同一個 Queue 的生命週期內不會重複使用。
type Queue struct {
	mu       sync.Mutex
	counter  int
	messages []model.Toast
	timers   map[int]Timer
	subs     map[int]chan []model.Toast
	nextSub  int
	sched    Scheduler
	closed   bool
	done     chan struct{}
}

func NewQueue(sched Scheduler) *Queue {
	if sched == nil {
		sched = RealScheduler()
	}
	return &Queue{
		timers: make(map[int]Timer),
		subs:   make(map[int]chan []model.Toast),
		sched:  sched,
		done:   make(chan struct{}),
	}
}

func (q *Queue) Success(text string) int {
	return q.Push(text, model.ToastSuccess)
}

func (q *Queue) Error(text string) int {
	return q.Push(text, model.ToastError)
}

func (q *Queue) Info(text string) int {
	return q.Push(text, model.ToastInfo)
}

// Push 新增通知並排程到期移除，回傳 id
func (q *Queue) Push(text string, kind model.ToastKind) int {
	q.mu.Lock()
	q.counter++
	id := q.counter
	q.messages = append(q.messages, model.Toast{ID: id, Kind: kind, Text: text})
	q.publishLocked()
	closed := q.closed
	q.mu.Unlock()
	if closed {
		return id
	}

	// 排程在鎖外進行，避免 Scheduler 同步回呼造成死鎖
	timer := q.sched.AfterFunc(EvictAfter, func() { q.evict(id) })

	q.mu.Lock()
	if q.contains(id) {
		q.timers[id] = timer
	}
	q.mu.Unlock()
	return id
}

// Dismiss 移除指定通知並取消它的計時器；已移除時不做任何事
func (q *Queue) Dismiss(id int) {
	q.mu.Lock()
	timer, ok := q.timers[id]
	delete(q.timers, id)
	removed := q.removeLocked(id)
	if removed {
		q.publishLocked()
	}
	q.mu.Unlock()
	if ok {
		timer.Stop()
	}
}

func (q *Queue) evict(id int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.timers, id)
	if q.removeLocked(id) {
		q.publishLocked()
	}
}

// Snapshot 目前的通知序列副本
func (q *Queue) Snapshot() []model.Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked()
}

// Stream 訂閱通知序列：先送出目前內容，之後每次變更都送出最新快照。
// 只保留最新一筆，消費者慢時中間的快照會被略過。
// ctx 結束或 Queue 關閉時關閉 channel。
func (q *Queue) Stream(ctx context.Context) <-chan []model.Toast {
	ch := make(chan []model.Toast, 1)

	q.mu.Lock()
	ch <- q.snapshotLocked()
	if q.closed {
		q.mu.Unlock()
		close(ch)
		return ch
	}
	q.nextSub++
	subID := q.nextSub
	q.subs[subID] = ch
	q.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-q.done:
		}
		q.detach(subID)
	}()
	return ch
}

func (q *Queue) detach(subID int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if ch, ok := q.subs[subID]; ok {
		delete(q.subs, subID)
		close(ch)
	}
}

// Subscribers 目前訂閱者數量
func (q *Queue) Subscribers() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.subs)
}

// Close 取消所有計時器並關閉所有訂閱中的 Stream
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.done)
	for id, ch := range q.subs {
		delete(q.subs, id)
		close(ch)
	}
	timers := q.timers
	q.timers = make(map[int]Timer)
	q.mu.Unlock()
	for _, t := range timers {
		t.Stop()
	}
}

func (q *Queue) contains(id int) bool {
	for _, m := range q.messages {
		if m.ID == id {
			return true
		}
	}
	return false
}

func (q *Queue) removeLocked(id int) bool {
	for i, m := range q.messages {
		if m.ID == id {
			q.messages = append(q.messages[:i:i], q.messages[i+1:]...)
			return true
		}
	}
	return false
}

func (q *Queue) snapshotLocked() []model.Toast {
	out := make([]model.Toast, len(q.messages))
	copy(out, q.messages)
	return out
}

func (q *Queue) publishLocked() {
	snap := q.snapshotLocked()
	for _, ch := range q.subs {
		// 丟掉尚未被讀取的舊快照
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
