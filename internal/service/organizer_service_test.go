package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"event-link-gateway/internal/model"
	"event-link-gateway/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockListAPI struct {
	mock.Mock
}

func (m *MockListAPI) MyEvents(ctx context.Context) ([]model.EventSummary, error) {
	args := m.Called(ctx)
	events, _ := args.Get(0).([]model.EventSummary)
	return events, args.Error(1)
}

func (m *MockListAPI) OrganizerEvents(ctx context.Context) ([]model.EventSummary, error) {
	args := m.Called(ctx)
	events, _ := args.Get(0).([]model.EventSummary)
	return events, args.Error(1)
}

func (m *MockListAPI) Participants(ctx context.Context, eventID int) (model.ParticipantList, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(model.ParticipantList), args.Error(1)
}

func TestOrganizerService_EmptyListsAreNonNil(t *testing.T) {
	api := &MockListAPI{}
	api.On("MyEvents", mock.Anything).Return(nil, nil)
	api.On("OrganizerEvents", mock.Anything).Return(nil, nil)
	api.On("Participants", mock.Anything, 3).Return(model.ParticipantList{EventID: 3}, nil)

	s := service.NewOrganizerService(api)
	ctx := context.Background()

	mine, err := s.MyEvents(ctx)
	require.NoError(t, err)
	assert.NotNil(t, mine)

	own, err := s.OwnEvents(ctx)
	require.NoError(t, err)
	assert.NotNil(t, own)

	list, err := s.Participants(ctx, 3)
	require.NoError(t, err)
	assert.NotNil(t, list.Participants)
	api.AssertExpectations(t)
}

func TestParticipantsCSV(t *testing.T) {
	name := "Ana, Pop"
	registered := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	list := model.ParticipantList{
		EventID: 3,
		Participants: []model.Participant{
			{ID: 1, Email: "ana@x.ro", FullName: &name, RegistrationTime: registered},
			{ID: 2, Email: "ion@x.ro", RegistrationTime: registered},
		},
	}

	out, err := service.ParticipantsCSV(list, []string{"Name", "Email", "Registered at"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Equal(t, []string{
		"Name,Email,Registered at",
		`"Ana, Pop",ana@x.ro,2025-03-01T10:00:00Z`,
		"-,ion@x.ro,2025-03-01T10:00:00Z",
	}, lines)
}
