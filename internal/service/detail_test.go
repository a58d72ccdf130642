package service_test

import (
	"net/http"
	"testing"

	"event-link-gateway/internal/i18n"
	"event-link-gateway/internal/model"
	"event-link-gateway/internal/service"
	apperrors "event-link-gateway/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type toastLog struct {
	success []string
	errors  []string
}

func (l *toastLog) Success(text string) int {
	l.success = append(l.success, text)
	return len(l.success) + len(l.errors)
}

func (l *toastLog) Error(text string) int {
	l.errors = append(l.errors, text)
	return len(l.success) + len(l.errors)
}

func intPtr(v int) *int { return &v }

func workshop() model.EventDetail {
	return model.EventDetail{
		EventSummary: model.EventSummary{
			ID:         7,
			Title:      "Workshop",
			SeatsTaken: 4,
			MaxSeats:   intPtr(10),
		},
		AvailableSeats: intPtr(6),
	}
}

var student = model.Session{Token: "tok", Role: model.RoleStudent}

func loaded(t *testing.T) (*service.DetailScreen, *toastLog) {
	t.Helper()
	toasts := &toastLog{}
	d := service.NewDetailScreen(toasts, i18n.New("en", "en"))
	d.BeginLoad()
	assert.True(t, d.View(student).Loading)
	d.ApplyLoad(workshop(), nil)
	return d, toasts
}

func TestDetailScreen_RegisterSuccess(t *testing.T) {
	d, toasts := loaded(t)
	assert.True(t, d.View(student).CanRegister)

	d.ApplyRegister(7, nil)

	view := d.View(student)
	require.NotNil(t, view.Event)
	assert.True(t, view.Event.IsRegistered)
	assert.Equal(t, 5, view.Event.SeatsTaken)
	assert.Equal(t, 5, *view.Event.AvailableSeats)
	assert.False(t, view.CanRegister)
	assert.Equal(t, "Registration confirmed!", view.Success)
	assert.Empty(t, view.Error)
	assert.Equal(t, []string{"Registration confirmed!"}, toasts.success)

	d.ApplyUnregister(7, nil)
	view = d.View(student)
	assert.Equal(t, workshop(), *view.Event)
	assert.Equal(t, "You have unregistered from the event.", view.Success)
}

func TestDetailScreen_RegisterFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"seats full", &apperrors.APIError{Status: http.StatusConflict, Detail: "Full"}, "Sorry, all seats have been taken."},
		{"server detail", &apperrors.APIError{Status: http.StatusBadRequest, Detail: "Registration closed"}, "Registration closed"},
		{"no detail", &apperrors.APIError{Status: http.StatusForbidden}, "We could not process your registration."},
		{"network", apperrors.ErrNetworkFailure, "We could not process your registration."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, toasts := loaded(t)
			d.ApplyRegister(7, tt.err)

			view := d.View(student)
			assert.Equal(t, tt.want, view.Error)
			assert.Empty(t, view.Success)
			// 失敗時不修改任何欄位
			assert.Equal(t, workshop(), *view.Event)
			assert.Equal(t, []string{tt.want}, toasts.errors)
		})
	}
}

func TestDetailScreen_UnregisterConflictIsGeneric(t *testing.T) {
	d, _ := loaded(t)
	d.ApplyUnregister(7, &apperrors.APIError{Status: http.StatusConflict})
	assert.Equal(t, "We could not cancel your registration.", d.View(student).Error)
}

func TestDetailScreen_StaleResponseOnlyToasts(t *testing.T) {
	d, toasts := loaded(t)
	d.ApplyRegister(99, nil)

	view := d.View(student)
	assert.False(t, view.Event.IsRegistered)
	assert.Empty(t, view.Success)
	assert.Len(t, toasts.success, 1)
}

func TestDetailScreen_LoadFailureAndDelete(t *testing.T) {
	d, _ := loaded(t)
	d.ApplyDelete(7, nil)
	assert.Nil(t, d.View(student).Event)
	assert.Zero(t, d.EventID())

	d.BeginLoad()
	d.ApplyLoad(model.EventDetail{}, apperrors.ErrEventNotFound)
	view := d.View(student)
	assert.Nil(t, view.Event)
	assert.Equal(t, "The event does not exist or is no longer available.", view.Error)
	_, ok := d.Event()
	assert.False(t, ok)
}
