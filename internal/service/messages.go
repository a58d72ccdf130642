package service

import (
	"event-link-gateway/internal/i18n"
	"event-link-gateway/internal/ledger"
	apperrors "event-link-gateway/pkg/app_errors"
)

// Op 會產生使用者訊息的動作
type Op int

const (
	OpRegister Op = iota
	OpUnregister
	OpDelete
	OpClone
)

var failureKeys = map[Op]string{
	OpRegister:   i18n.RegisterFailed,
	OpUnregister: i18n.UnregisterFailed,
	OpDelete:     i18n.DeleteFailed,
	OpClone:      i18n.CloneFailed,
}

var successKeys = map[Op]string{
	OpRegister:   i18n.Registered,
	OpUnregister: i18n.Unregistered,
	OpDelete:     i18n.Deleted,
	OpClone:      i18n.Cloned,
}

// FailureText 409 (僅報名) 顯示名額已滿，其他 4xx 優先使用伺服器說明
func FailureText(tr *i18n.Translator, op Op, err error) string {
	switch ledger.Classify(err, op == OpRegister) {
	case ledger.FailureNone:
		return ""
	case ledger.FailureSeatsFull:
		return tr.T(i18n.SeatsFull)
	case ledger.FailureRejected:
		return apperrors.Detail(err)
	default:
		return tr.T(failureKeys[op])
	}
}

func SuccessText(tr *i18n.Translator, op Op) string {
	return tr.T(successKeys[op])
}
