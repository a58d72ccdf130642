package service

import (
	"event-link-gateway/internal/i18n"
	"event-link-gateway/internal/ledger"
	"event-link-gateway/internal/model"
)

// Notifier 成功與錯誤訊息的 toast 通道
type Notifier interface {
	Success(text string) int
	Error(text string) int
}

// DetailView 活動詳情畫面
type DetailView struct {
	Event       *model.EventDetail `json:"event,omitempty"`
	Loading     bool               `json:"loading"`
	Error       string             `json:"error,omitempty"`
	Success     string             `json:"success,omitempty"`
	CanRegister bool               `json:"can_register"`
}

// DetailScreen 詳情畫面狀態，只在 reaction 迴圈內修改。
// 報名結果只在伺服器確認後才套用，失敗時不改動任何欄位。
type DetailScreen struct {
	event    *model.EventDetail
	loading  bool
	errText  string
	success  string
	notifier Notifier
	tr       *i18n.Translator
}

func NewDetailScreen(notifier Notifier, tr *i18n.Translator) *DetailScreen {
	return &DetailScreen{notifier: notifier, tr: tr}
}

func (d *DetailScreen) SetTranslator(tr *i18n.Translator) {
	d.tr = tr
}

// EventID 目前顯示的活動，沒有時回傳 0
func (d *DetailScreen) EventID() int {
	if d.event == nil {
		return 0
	}
	return d.event.ID
}

func (d *DetailScreen) Event() (model.EventDetail, bool) {
	if d.event == nil {
		return model.EventDetail{}, false
	}
	return d.event.Clone(), true
}

func (d *DetailScreen) BeginLoad() {
	d.loading = true
	d.errText = ""
	d.success = ""
}

// ApplyLoad 載入失敗時清除目前的活動
func (d *DetailScreen) ApplyLoad(detail model.EventDetail, err error) {
	d.loading = false
	if err != nil {
		d.event = nil
		d.errText = d.tr.T(i18n.EventNotFound)
		return
	}
	loaded := detail.Clone()
	d.event = &loaded
}

// ApplyRegister 報名回應；id 與目前活動不同時 (使用者已離開) 只送出 toast
func (d *DetailScreen) ApplyRegister(id int, err error) {
	d.applyMutation(id, OpRegister, err, ledger.ConfirmRegister)
}

func (d *DetailScreen) ApplyUnregister(id int, err error) {
	d.applyMutation(id, OpUnregister, err, ledger.ConfirmUnregister)
}

// ApplyDelete 成功時清除畫面上的活動
func (d *DetailScreen) ApplyDelete(id int, err error) {
	d.applyMutation(id, OpDelete, err, nil)
	if err == nil && d.EventID() == id {
		d.event = nil
	}
}

func (d *DetailScreen) applyMutation(id int, op Op, err error, patch func(model.EventDetail) model.EventDetail) {
	current := d.EventID() == id
	if err != nil {
		text := FailureText(d.tr, op, err)
		if current {
			d.errText = text
		}
		d.notify(false, text)
		return
	}

	text := SuccessText(d.tr, op)
	if current {
		if patch != nil {
			patched := patch(*d.event)
			d.event = &patched
		}
		d.success = text
		d.errText = ""
	}
	d.notify(true, text)
}

// ShowOutcome 只更新畫面上的結果訊息，不再送出 toast
func (d *DetailScreen) ShowOutcome(op Op, err error) {
	if err != nil {
		d.errText = FailureText(d.tr, op, err)
		d.success = ""
		return
	}
	d.success = SuccessText(d.tr, op)
	d.errText = ""
}

func (d *DetailScreen) notify(ok bool, text string) {
	if d.notifier == nil || text == "" {
		return
	}
	if ok {
		d.notifier.Success(text)
	} else {
		d.notifier.Error(text)
	}
}

// View 依目前 session 計算可否報名
func (d *DetailScreen) View(s model.Session) DetailView {
	view := DetailView{
		Loading: d.loading,
		Error:   d.errText,
		Success: d.success,
	}
	if d.event != nil {
		ev := d.event.Clone()
		view.Event = &ev
		view.CanRegister = ledger.CanRegister(ev, s)
	}
	return view
}
