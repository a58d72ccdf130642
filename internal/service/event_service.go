package service

import (
	"context"

	"event-link-gateway/internal/model"
)

// EventAPI 活動詳情與報名相關的上游端點
type EventAPI interface {
	GetEvent(ctx context.Context, id int) (model.EventDetail, error)
	RegisterForEvent(ctx context.Context, id int) error
	UnregisterFromEvent(ctx context.Context, id int) error
	DeleteEvent(ctx context.Context, id int) error
	CloneEvent(ctx context.Context, id int) (model.EventSummary, error)
}

type EventService interface {
	GetByID(ctx context.Context, id int) (model.EventDetail, error)
	// Register 只送出請求，成功後的座位調整由 DetailScreen 負責
	Register(ctx context.Context, id int) error
	Unregister(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
	Clone(ctx context.Context, id int) (model.EventSummary, error)
}

type EventServiceImpl struct {
	api EventAPI
}

func NewEventService(api EventAPI) EventService {
	return &EventServiceImpl{api: api}
}

func (s *EventServiceImpl) GetByID(ctx context.Context, id int) (model.EventDetail, error) {
	return s.api.GetEvent(ctx, id)
}

func (s *EventServiceImpl) Register(ctx context.Context, id int) error {
	return s.api.RegisterForEvent(ctx, id)
}

func (s *EventServiceImpl) Unregister(ctx context.Context, id int) error {
	return s.api.UnregisterFromEvent(ctx, id)
}

func (s *EventServiceImpl) Delete(ctx context.Context, id int) error {
	return s.api.DeleteEvent(ctx, id)
}

func (s *EventServiceImpl) Clone(ctx context.Context, id int) (model.EventSummary, error) {
	return s.api.CloneEvent(ctx, id)
}
