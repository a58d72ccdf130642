package model

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

// Toast 短暫顯示的通知
type Toast struct {
	ID   int       `json:"id"`
	Kind ToastKind `json:"kind"`
	Text string    `json:"text"`
}
