package ledger_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"event-link-gateway/internal/ledger"
	"event-link-gateway/internal/model"
	apperrors "event-link-gateway/pkg/app_errors"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func studentSession() model.Session {
	return model.Session{Token: "t", Role: model.RoleStudent, UserID: "7"}
}

func TestConfirmRegister(t *testing.T) {
	original := model.EventDetail{
		EventSummary:   model.EventSummary{ID: 1, SeatsTaken: 4, MaxSeats: intPtr(10)},
		AvailableSeats: intPtr(6),
	}

	registered := ledger.ConfirmRegister(original)
	assert.True(t, registered.IsRegistered)
	assert.Equal(t, 5, registered.SeatsTaken)
	assert.Equal(t, 5, *registered.AvailableSeats)
	assert.Equal(t, 10, *registered.MaxSeats)

	// 原始資料不受影響
	assert.Equal(t, 4, original.SeatsTaken)
	assert.Equal(t, 6, *original.AvailableSeats)

	restored := ledger.ConfirmUnregister(registered)
	assert.Equal(t, original, restored)
}

func TestConfirmRegister_Unlimited(t *testing.T) {
	detail := model.EventDetail{EventSummary: model.EventSummary{SeatsTaken: 2}}
	out := ledger.ConfirmRegister(detail)
	assert.Nil(t, out.AvailableSeats)
	assert.Equal(t, 3, out.SeatsTaken)
}

func TestConfirmUnregister_NeverNegative(t *testing.T) {
	detail := model.EventDetail{IsRegistered: true, AvailableSeats: intPtr(10)}
	out := ledger.ConfirmUnregister(detail)
	assert.Equal(t, 0, out.SeatsTaken)
	assert.False(t, out.IsRegistered)
	assert.Equal(t, 11, *out.AvailableSeats)
}

func TestCanRegister(t *testing.T) {
	open := model.EventDetail{AvailableSeats: intPtr(3)}

	t.Run("Success - student with seats", func(t *testing.T) {
		assert.True(t, ledger.CanRegister(open, studentSession()))
	})

	t.Run("Success - unlimited seats", func(t *testing.T) {
		assert.True(t, ledger.CanRegister(model.EventDetail{}, studentSession()))
	})

	t.Run("Failed - no seats left", func(t *testing.T) {
		full := model.EventDetail{AvailableSeats: intPtr(0)}
		assert.False(t, ledger.CanRegister(full, studentSession()))
	})

	t.Run("Failed - already registered", func(t *testing.T) {
		assert.False(t, ledger.CanRegister(model.EventDetail{IsRegistered: true}, studentSession()))
	})

	t.Run("Failed - organizer", func(t *testing.T) {
		s := model.Session{Token: "t", Role: model.RoleOrganizer}
		assert.False(t, ledger.CanRegister(open, s))
	})

	t.Run("Failed - anonymous", func(t *testing.T) {
		assert.False(t, ledger.CanRegister(open, model.Session{}))
	})
}

func TestClassify(t *testing.T) {
	conflict := &apperrors.APIError{Status: http.StatusConflict, Detail: "Evenimentul este plin."}
	rejected := &apperrors.APIError{Status: http.StatusBadRequest, Detail: "Ești deja înscris la eveniment."}
	bare := &apperrors.APIError{Status: http.StatusBadRequest}
	network := fmt.Errorf("dial: %w", apperrors.ErrNetworkFailure)

	assert.Equal(t, ledger.FailureNone, ledger.Classify(nil, true))
	assert.Equal(t, ledger.FailureSeatsFull, ledger.Classify(conflict, true))
	assert.Equal(t, ledger.FailureRejected, ledger.Classify(conflict, false))
	assert.Equal(t, ledger.FailureRejected, ledger.Classify(rejected, true))
	assert.Equal(t, ledger.FailureGeneric, ledger.Classify(bare, true))
	assert.Equal(t, ledger.FailureGeneric, ledger.Classify(network, true))
	assert.Equal(t, ledger.FailureGeneric, ledger.Classify(errors.New("boom"), false))
}
