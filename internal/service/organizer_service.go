package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"time"

	"event-link-gateway/internal/model"
)

// ListAPI 使用者自己的活動列表端點
type ListAPI interface {
	MyEvents(ctx context.Context) ([]model.EventSummary, error)
	OrganizerEvents(ctx context.Context) ([]model.EventSummary, error)
	Participants(ctx context.Context, eventID int) (model.ParticipantList, error)
}

type OrganizerService interface {
	// MyEvents 學生已報名的活動
	MyEvents(ctx context.Context) ([]model.EventSummary, error)
	OwnEvents(ctx context.Context) ([]model.EventSummary, error)
	Participants(ctx context.Context, eventID int) (model.ParticipantList, error)
}

type OrganizerServiceImpl struct {
	api ListAPI
}

func NewOrganizerService(api ListAPI) OrganizerService {
	return &OrganizerServiceImpl{api: api}
}

func (s *OrganizerServiceImpl) MyEvents(ctx context.Context) ([]model.EventSummary, error) {
	events, err := s.api.MyEvents(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(events), nil
}

func (s *OrganizerServiceImpl) OwnEvents(ctx context.Context) ([]model.EventSummary, error) {
	events, err := s.api.OrganizerEvents(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(events), nil
}

func (s *OrganizerServiceImpl) Participants(ctx context.Context, eventID int) (model.ParticipantList, error) {
	list, err := s.api.Participants(ctx, eventID)
	if err != nil {
		return model.ParticipantList{}, err
	}
	if list.Participants == nil {
		list.Participants = []model.Participant{}
	}
	return list, nil
}

// ParticipantsCSV 匯出姓名、email 與報名時間，缺少姓名時以 "-" 表示
func ParticipantsCSV(list model.ParticipantList, header []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, p := range list.Participants {
		name := "-"
		if p.FullName != nil && *p.FullName != "" {
			name = *p.FullName
		}
		if err := w.Write([]string{name, p.Email, p.RegistrationTime.Format(time.RFC3339)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func nonNil(events []model.EventSummary) []model.EventSummary {
	if events == nil {
		return []model.EventSummary{}
	}
	return events
}
