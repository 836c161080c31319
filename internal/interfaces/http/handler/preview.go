package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"ui-forge-api/internal/domain/repository"
	"ui-forge-api/internal/preview"
	"ui-forge-api/pkg/logger"
)

// PreviewHandler 预览事件流处理器
type PreviewHandler struct {
	sessionRepo repository.SessionRepository
	turnRepo    repository.TurnRepository
	hub         *preview.Hub
	heartbeat   time.Duration
}

// NewPreviewHandler 创建预览处理器
func NewPreviewHandler(
	sessionRepo repository.SessionRepository,
	turnRepo repository.TurnRepository,
	hub *preview.Hub,
	heartbeat time.Duration,
) *PreviewHandler {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &PreviewHandler{
		sessionRepo: sessionRepo,
		turnRepo:    turnRepo,
		hub:         hub,
		heartbeat:   heartbeat,
	}
}

// Stream 订阅会话的预览重挂载事件（SSE）
// @Summary 预览事件流
// @Tags Preview
// @Produce text/event-stream
// @Param sid path string true "会话 ID"
// @Success 200 "SSE stream"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/sessions/{sid}/preview/stream [get]
func (h *PreviewHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	session, ok := loadOwnedSession(ctx, c, h.sessionRepo, c.Param("sid"), userID)
	if !ok {
		return
	}

	// 预览态还是占位时，用最近一条已落库的轮次补种，
	// 让重启后首个订阅者也能看到既有产物
	if h.hub.State(session.ID).Placeholder {
		turns, err := h.turnRepo.ListRecent(ctx, session.ID, 1)
		if err != nil {
			logger.Warn(ctx, "failed to seed preview from latest turn", "session_id", session.ID, "error", err.Error())
		} else if len(turns) > 0 {
			h.hub.OnArtifact(session.ID, turns[0].ArtifactOf())
		}
	}

	events, cancel := h.hub.Subscribe(session.ID)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("remount", ev)
			return true

		case <-heartbeat.C:
			c.SSEvent("heartbeat", gin.H{"ts": time.Now().Unix()})
			return true

		case <-ctx.Done():
			// 客户端断开
			return false
		}
	})
}
