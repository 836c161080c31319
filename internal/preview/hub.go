package preview

import (
	"sync"
	"time"

	"ui-forge-api/internal/domain/entity"
)

// Hub 按会话维护预览状态机并向订阅者分发重挂载事件
type Hub struct {
	mu          sync.RWMutex
	debounce    time.Duration
	reconcilers map[string]*Reconciler
}

// NewHub 创建预览中枢，debounce 为 0 时纪元推进立即广播
func NewHub(debounce time.Duration) *Hub {
	return &Hub{
		debounce:    debounce,
		reconcilers: make(map[string]*Reconciler),
	}
}

func (h *Hub) reconciler(sessionID string) *Reconciler {
	h.mu.RLock()
	r, ok := h.reconcilers[sessionID]
	h.mu.RUnlock()
	if ok {
		return r
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.reconcilers[sessionID]; ok {
		return r
	}
	r = newReconciler(sessionID, h.debounce)
	h.reconcilers[sessionID] = r
	return r
}

// OnArtifact 提交会话的新产物，返回当前渲染纪元与是否触发重挂载
func (h *Hub) OnArtifact(sessionID string, artifact entity.Artifact) (uint64, bool) {
	return h.reconciler(sessionID).OnArtifact(artifact)
}

// State 返回会话预览当前态
func (h *Hub) State(sessionID string) State {
	return h.reconciler(sessionID).State()
}

// Subscribe 订阅会话的重挂载事件流，返回取消函数
func (h *Hub) Subscribe(sessionID string) (<-chan Event, func()) {
	return h.reconciler(sessionID).subscribe()
}

// Drop 会话删除时释放其预览状态
func (h *Hub) Drop(sessionID string) {
	h.mu.Lock()
	r := h.reconcilers[sessionID]
	delete(h.reconcilers, sessionID)
	h.mu.Unlock()

	if r != nil {
		r.close()
	}
}
