// Package ledger 在伺服器確認報名/取消報名成功後，修正單一活動詳情的名額欄位。
// 只在收到 2xx 之後套用，不做任何推測性修改。
package ledger

import (
	"errors"

	"event-link-gateway/internal/model"
	apperrors "event-link-gateway/pkg/app_errors"
)

// ConfirmRegister 報名成功：is_registered=true，seats_taken+1，available_seats-1 (若有)
func ConfirmRegister(detail model.EventDetail) model.EventDetail {
	out := detail.Clone()
	out.IsRegistered = true
	out.SeatsTaken++
	if out.AvailableSeats != nil {
		*out.AvailableSeats--
	}
	return out
}

// ConfirmUnregister 取消報名成功：seats_taken 不會小於 0
func ConfirmUnregister(detail model.EventDetail) model.EventDetail {
	out := detail.Clone()
	out.IsRegistered = false
	if out.SeatsTaken > 0 {
		out.SeatsTaken--
	}
	if out.AvailableSeats != nil {
		*out.AvailableSeats++
	}
	return out
}

// CanRegister 學生、尚未報名、且仍有名額 (或不限名額) 時才可報名
func CanRegister(detail model.EventDetail, session model.Session) bool {
	if !session.IsLoggedIn() || !session.IsStudent() {
		return false
	}
	if detail.IsRegistered {
		return false
	}
	if detail.AvailableSeats != nil && *detail.AvailableSeats <= 0 {
		return false
	}
	return true
}

// Failure 報名相關請求失敗的分類
type Failure int

const (
	FailureNone Failure = iota
	// 409：名額已滿
	FailureSeatsFull
	// 其他 4xx，附帶伺服器說明
	FailureRejected
	FailureGeneric
)

// Classify 依錯誤類型分類，只有 register 會把 409 視為名額已滿
func Classify(err error, isRegister bool) Failure {
	switch {
	case err == nil:
		return FailureNone
	case isRegister && apperrors.IsConflict(err):
		return FailureSeatsFull
	case errors.Is(err, apperrors.ErrNetworkFailure):
		return FailureGeneric
	case apperrors.IsClientError(err) && apperrors.Detail(err) != "":
		return FailureRejected
	default:
		return FailureGeneric
	}
}
