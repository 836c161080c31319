// Package preview 维护每个会话的预览状态机：最新产物与渲染纪元，
// 并把重挂载事件广播给 SSE 订阅者
package preview

import (
	"sync"
	"time"

	"ui-forge-api/internal/domain/entity"
	"ui-forge-api/pkg/metrics"
)

// PlaceholderArtifact 尚无产物时渲染的静态占位组件
var PlaceholderArtifact = entity.Artifact{
	ComponentSource: "export default function App() {\n  return <div className=\"preview-placeholder\">Nothing generated yet</div>;\n}",
	StyleSource:     ".preview-placeholder {\n  display: flex;\n  align-items: center;\n  justify-content: center;\n  min-height: 100vh;\n  color: #888;\n}",
}

// State 预览当前态。Placeholder 为 true 时 Artifact 是占位组件
type State struct {
	Artifact    entity.Artifact `json:"artifact"`
	RenderEpoch uint64          `json:"render_epoch"`
	Placeholder bool            `json:"placeholder"`
}

// Event 广播给订阅者的重挂载事件
type Event struct {
	SessionID string `json:"session_id"`
	State
}

// Reconciler 单会话预览状态机。
// 渲染纪元从 0 起，每次产物按值变化时加一；纪元变化即要求
// 预览环境整体销毁重建，不做增量更新。
// 状态迁移由互斥锁保证原子，两次 OnArtifact 不会交错。
type Reconciler struct {
	mu        sync.Mutex
	sessionID string
	current   entity.Artifact
	epoch     uint64
	has       bool
	debounce  time.Duration
	timer     *time.Timer
	subs      map[chan Event]struct{}
}

func newReconciler(sessionID string, debounce time.Duration) *Reconciler {
	return &Reconciler{
		sessionID: sessionID,
		debounce:  debounce,
		subs:      make(map[chan Event]struct{}),
	}
}

// OnArtifact 提交新产物：任一字段按值不同才推进纪元并广播。
// 返回当前纪元与本次是否触发了重挂载。
func (r *Reconciler) OnArtifact(artifact entity.Artifact) (uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.has && r.current.Equal(artifact) {
		return r.epoch, false
	}

	r.current = artifact
	r.has = true
	r.epoch++
	metrics.PreviewRemountsTotal.Inc()
	r.scheduleBroadcastLocked()
	return r.epoch, true
}

// State 返回当前预览态快照
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

func (r *Reconciler) stateLocked() State {
	if !r.has {
		return State{Artifact: PlaceholderArtifact, RenderEpoch: r.epoch, Placeholder: true}
	}
	return State{Artifact: r.current, RenderEpoch: r.epoch}
}

// subscribe 注册订阅者并立即补发当前态，晚连的客户端不必等下一次生成
func (r *Reconciler) subscribe() (chan Event, func()) {
	ch := make(chan Event, 1)

	r.mu.Lock()
	r.subs[ch] = struct{}{}
	ch <- Event{SessionID: r.sessionID, State: r.stateLocked()}
	r.mu.Unlock()

	metrics.PreviewSubscribers.Inc()

	cancel := func() {
		r.mu.Lock()
		delete(r.subs, ch)
		r.mu.Unlock()
		metrics.PreviewSubscribers.Dec()
	}
	return ch, cancel
}

// scheduleBroadcastLocked 去抖窗口内的连续纪元推进只广播最终态
func (r *Reconciler) scheduleBroadcastLocked() {
	if r.debounce <= 0 {
		r.broadcastLocked()
		return
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.timer = nil
		r.broadcastLocked()
	})
}

// broadcastLocked 向所有订阅者投递事件；慢订阅者只保留最新一条
func (r *Reconciler) broadcastLocked() {
	ev := Event{SessionID: r.sessionID, State: r.stateLocked()}
	for ch := range r.subs {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// close 停掉未触发的去抖定时器
func (r *Reconciler) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
