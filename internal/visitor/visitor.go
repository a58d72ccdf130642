// Package visitor 每個瀏覽器 (sid cookie) 一組獨立的 session、通知佇列、目錄與詳情狀態。
package visitor

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"event-link-gateway/internal/api"
	"event-link-gateway/internal/catalog"
	"event-link-gateway/internal/filter"
	"event-link-gateway/internal/i18n"
	"event-link-gateway/internal/model"
	"event-link-gateway/internal/notification"
	"event-link-gateway/internal/queue"
	"event-link-gateway/internal/service"
	"event-link-gateway/internal/session"
	"event-link-gateway/internal/worker"
	apperrors "event-link-gateway/pkg/app_errors"

	"go.uber.org/zap"
)

const reactionBuffer = 32

type Visitor struct {
	ID string

	store     *session.Store
	toasts    *notification.Queue
	events    service.EventService
	lists     service.OrganizerService
	catalog   *catalog.Catalog
	filters   *filter.Synchronizer
	detail    *service.DetailScreen
	reactions queue.ReactionQueue
	log       *zap.Logger

	// 以下欄位只在 reaction 內讀寫
	tr        *i18n.Translator
	navigated url.Values

	lastSeen atomic.Int64
	cancel   context.CancelFunc
	closeMu  sync.Once
}

func newVisitor(id string, client *api.Client, persister session.Persister, sched notification.Scheduler, tr *i18n.Translator, log *zap.Logger) *Visitor {
	v := &Visitor{
		ID:        id,
		toasts:    notification.NewQueue(sched),
		reactions: queue.NewReactionQueue(reactionBuffer),
		log:       log,
		tr:        tr,
	}
	v.store = session.NewStore(persister, client, session.WithLogger(log))

	upstream := client.As(v.store.Token)
	v.events = service.NewEventService(upstream)
	v.lists = service.NewOrganizerService(upstream)
	v.catalog = catalog.New(upstream, upstream, v.toasts, tr)
	v.catalog.SetLogger(log)
	v.detail = service.NewDetailScreen(v.toasts, tr)
	v.filters = filter.NewSynchronizer(func(q url.Values) { v.navigated = q })
	return v
}

// start 啟動 reaction 迴圈並訂閱 session 變更
func (v *Visitor) start() error {
	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	if err := worker.NewReactionWorker(v.reactions, v.log).Start(ctx); err != nil {
		cancel()
		return err
	}

	updates, unsubscribe := v.store.Subscribe()
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case s, ok := <-updates:
				if !ok {
					return
				}
				v.onSession(ctx, s)
			}
		}
	}()
	return nil
}

// onSession 學生身分載入推薦，其他身分清除
func (v *Visitor) onSession(ctx context.Context, s model.Session) {
	if !catalog.WantsRecommendations(s) {
		_ = v.do(ctx, "clear recommendations", v.catalog.ClearRecommendations)
		return
	}
	res := v.catalog.LoadRecommendations(ctx, s)
	_ = v.do(ctx, "apply recommendations", func() { v.catalog.ApplyRecommendations(res) })
}

func (v *Visitor) do(ctx context.Context, name string, fn func()) error {
	return worker.Do(ctx, v.reactions, name, fn)
}

func (v *Visitor) touch(now time.Time) {
	v.lastSeen.Store(now.UnixNano())
}

func (v *Visitor) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, v.lastSeen.Load()))
}

// Close 停止 reaction 迴圈與所有 toast 計時器
func (v *Visitor) Close() {
	v.closeMu.Do(func() {
		v.reactions.Close()
		if v.cancel != nil {
			v.cancel()
		}
		v.toasts.Close()
	})
}

func (v *Visitor) Session() model.Session {
	return v.store.Current()
}

func (v *Visitor) Store() *session.Store {
	return v.store
}

func (v *Visitor) Toasts() *notification.Queue {
	return v.toasts
}

// SetTranslator 依本次請求的 Accept-Language 切換語系
func (v *Visitor) SetTranslator(ctx context.Context, tr *i18n.Translator) error {
	return v.do(ctx, "set locale", func() {
		v.tr = tr
		v.catalog.SetTranslator(tr)
		v.detail.SetTranslator(tr)
	})
}

// Translator 目前使用的語系
func (v *Visitor) Translator(ctx context.Context) *i18n.Translator {
	var tr *i18n.Translator
	if err := v.do(ctx, "translator", func() { tr = v.tr }); err != nil {
		return i18n.New("", "")
	}
	return tr
}

// LoadCatalog 由路由 query 同步篩選狀態並重新查詢；請求本身在迴圈外執行
func (v *Visitor) LoadCatalog(ctx context.Context, query url.Values) (catalog.View, error) {
	var req catalog.Request
	if err := v.do(ctx, "begin list", func() {
		state := v.filters.Sync(query)
		req = v.catalog.Begin(state)
	}); err != nil {
		return catalog.View{}, err
	}

	resp := v.catalog.Dispatch(ctx, req)

	var view catalog.View
	err := v.do(ctx, "apply list", func() {
		v.catalog.Apply(resp)
		view = v.catalog.View()
	})
	return view, err
}

// CatalogView 不重新查詢，只讀取目前狀態
func (v *Visitor) CatalogView(ctx context.Context) (catalog.View, string, error) {
	var view catalog.View
	var tagInput string
	err := v.do(ctx, "read catalog", func() {
		view = v.catalog.View()
		tagInput = v.filters.TagInput()
	})
	return view, tagInput, err
}

// UpdateFilter 以目前 URL 的 query 為基準套用篩選動作，回傳要導向的 canonical URL。
// 動作被拒絕 (例如超出最後一頁) 時回傳原本的 URL。
func (v *Visitor) UpdateFilter(ctx context.Context, current url.Values, action func(s *filter.Synchronizer, total int)) (string, error) {
	var target string
	err := v.do(ctx, "update filter", func() {
		state := v.filters.Sync(current)
		v.navigated = nil
		action(v.filters, v.catalog.View().Total)
		if v.navigated != nil {
			target = filter.CanonicalURL("/", filter.Parse(v.navigated))
			return
		}
		target = filter.CanonicalURL("/", state)
	})
	return target, err
}

// LoadDetail 載入活動詳情
func (v *Visitor) LoadDetail(ctx context.Context, id int) (service.DetailView, error) {
	if err := v.do(ctx, "begin detail", v.detail.BeginLoad); err != nil {
		return service.DetailView{}, err
	}
	ev, loadErr := v.events.GetByID(ctx, id)
	if loadErr != nil {
		v.log.Info("load event failed", zap.Int("event_id", id), zap.Error(loadErr))
	}
	return v.applyDetail(ctx, "apply detail", func() { v.detail.ApplyLoad(ev, loadErr) })
}

// Register 未登入時回傳 ErrLoginRequired，不送出請求
func (v *Visitor) Register(ctx context.Context, id int) (service.DetailView, error) {
	if !v.store.IsLoggedIn() {
		return service.DetailView{}, apperrors.ErrLoginRequired
	}
	err := v.events.Register(ctx, id)
	return v.mutate(ctx, "apply register", id, service.OpRegister, err, func() { v.detail.ApplyRegister(id, err) })
}

func (v *Visitor) Unregister(ctx context.Context, id int) (service.DetailView, error) {
	if !v.store.IsLoggedIn() {
		return service.DetailView{}, apperrors.ErrLoginRequired
	}
	err := v.events.Unregister(ctx, id)
	return v.mutate(ctx, "apply unregister", id, service.OpUnregister, err, func() { v.detail.ApplyUnregister(id, err) })
}

// Delete 回傳上游錯誤，讓呼叫端決定導向
func (v *Visitor) Delete(ctx context.Context, id int) (service.DetailView, error) {
	err := v.events.Delete(ctx, id)
	view, loopErr := v.mutate(ctx, "apply delete", id, service.OpDelete, err, func() { v.detail.ApplyDelete(id, err) })
	if loopErr != nil {
		return view, loopErr
	}
	return view, err
}

// mutate 套用操作結果。畫面停在其他活動時 (例如另一個分頁)，
// 改載入這次操作的活動，回應只描述被操作的活動。
func (v *Visitor) mutate(ctx context.Context, name string, id int, op service.Op, mutErr error, apply func()) (service.DetailView, error) {
	var onScreen bool
	view, err := v.applyDetail(ctx, name, func() {
		onScreen = v.detail.EventID() == id
		apply()
	})
	if err != nil || onScreen || (op == service.OpDelete && mutErr == nil) {
		return view, err
	}

	ev, loadErr := v.events.GetByID(ctx, id)
	if loadErr != nil {
		v.log.Info("reload event failed", zap.Int("event_id", id), zap.Error(loadErr))
	}
	return v.applyDetail(ctx, name+" reload", func() {
		v.detail.ApplyLoad(ev, loadErr)
		if loadErr == nil {
			v.detail.ShowOutcome(op, mutErr)
		}
	})
}

// Clone 成功與失敗都會送出 toast
func (v *Visitor) Clone(ctx context.Context, id int) (model.EventSummary, error) {
	cloned, err := v.events.Clone(ctx, id)
	if loopErr := v.do(ctx, "apply clone", func() {
		if err != nil {
			v.toasts.Error(service.FailureText(v.tr, service.OpClone, err))
			return
		}
		v.toasts.Success(service.SuccessText(v.tr, service.OpClone))
	}); loopErr != nil {
		return cloned, loopErr
	}
	return cloned, err
}

func (v *Visitor) applyDetail(ctx context.Context, name string, fn func()) (service.DetailView, error) {
	var view service.DetailView
	err := v.do(ctx, name, func() {
		fn()
		view = v.detail.View(v.store.Current())
	})
	return view, err
}

// ListResult 個人活動列表畫面
type ListResult struct {
	Events []model.EventSummary `json:"events"`
	Error  string               `json:"error,omitempty"`
}

func (v *Visitor) MyEvents(ctx context.Context) ListResult {
	events, err := v.lists.MyEvents(ctx)
	return v.listResult(ctx, events, err, i18n.MyEventsFailed)
}

func (v *Visitor) OwnEvents(ctx context.Context) ListResult {
	events, err := v.lists.OwnEvents(ctx)
	return v.listResult(ctx, events, err, i18n.OrganizerLoadFailed)
}

func (v *Visitor) listResult(ctx context.Context, events []model.EventSummary, err error, key string) ListResult {
	if err != nil {
		v.log.Warn("load list failed", zap.String("list", key), zap.Error(err))
		return ListResult{Events: []model.EventSummary{}, Error: v.Translator(ctx).T(key)}
	}
	return ListResult{Events: events}
}

// Participants 錯誤時回傳翻譯後的訊息
func (v *Visitor) Participants(ctx context.Context, eventID int) (model.ParticipantList, string) {
	list, err := v.lists.Participants(ctx, eventID)
	if err != nil {
		v.log.Warn("load participants failed", zap.Int("event_id", eventID), zap.Error(err))
		return model.ParticipantList{}, v.Translator(ctx).T(i18n.ParticipantsFailed)
	}
	return list, ""
}
