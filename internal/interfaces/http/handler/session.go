package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"ui-forge-api/internal/application/generation"
	"ui-forge-api/internal/domain/entity"
	"ui-forge-api/internal/domain/repository"
	"ui-forge-api/internal/interfaces/http/dto"
	"ui-forge-api/internal/preview"
	"ui-forge-api/pkg/logger"
)

// SessionHandler 会话处理器
type SessionHandler struct {
	sessionRepo repository.SessionRepository
	turnRepo    repository.TurnRepository
	txMgr       repository.Transactor
	cache       generation.ContextCache
	hub         *preview.Hub
}

// NewSessionHandler 创建会话处理器，cache/hub 可为 nil
func NewSessionHandler(
	sessionRepo repository.SessionRepository,
	turnRepo repository.TurnRepository,
	txMgr repository.Transactor,
	cache generation.ContextCache,
	hub *preview.Hub,
) *SessionHandler {
	return &SessionHandler{
		sessionRepo: sessionRepo,
		turnRepo:    turnRepo,
		txMgr:       txMgr,
		cache:       cache,
		hub:         hub,
	}
}

// ListSessions 分页列出调用方的会话
// @Summary 会话列表
// @Tags Sessions
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[[]dto.SessionDTO]
// @Router /v1/sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	pagination := repository.NewPagination(page, pageSize)

	result, err := h.sessionRepo.ListByOwner(ctx, userID, pagination)
	if err != nil {
		logger.Error(ctx, "failed to list sessions", err)
		dto.InternalError(c, "failed to list sessions")
		return
	}

	dto.SuccessWithPage(c, dto.ToSessionDTOs(result.Items),
		dto.NewPageMeta(result.Page, result.PageSize, int(result.Total)))
}

// CreateSession 创建会话
// @Summary 创建会话
// @Tags Sessions
// @Accept json
// @Produce json
// @Param body body dto.CreateSessionRequest false "会话信息"
// @Success 201 {object} dto.Response[dto.SessionDTO]
// @Router /v1/sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	// 请求体可为空，标题缺省为 New Session
	var req dto.CreateSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			dto.BadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	session := entity.NewSession(userID, req.Title)
	if err := h.sessionRepo.Create(ctx, session); err != nil {
		logger.Error(ctx, "failed to create session", err)
		dto.InternalError(c, "failed to create session")
		return
	}

	dto.Created(c, dto.ToSessionDTO(session))
}

// GetSession 会话详情，轮次按创建时间升序
// @Summary 会话详情
// @Tags Sessions
// @Produce json
// @Param sid path string true "会话 ID"
// @Success 200 {object} dto.Response[dto.SessionDetailDTO]
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/sessions/{sid} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	session, ok := loadOwnedSession(ctx, c, h.sessionRepo, c.Param("sid"), userID)
	if !ok {
		return
	}

	turns, err := h.turnRepo.ListBySession(ctx, session.ID)
	if err != nil {
		logger.Error(ctx, "failed to list turns", err, "session_id", session.ID)
		dto.InternalError(c, "failed to load session turns")
		return
	}

	dto.Success(c, &dto.SessionDetailDTO{
		SessionDTO: *dto.ToSessionDTO(session),
		Turns:      dto.ToTurnDTOs(turns),
	})
}

// UpdateSession 更新会话标题
// @Summary 更新会话标题
// @Tags Sessions
// @Accept json
// @Produce json
// @Param sid path string true "会话 ID"
// @Param body body dto.UpdateSessionRequest true "会话信息"
// @Success 200 {object} dto.Response[dto.SessionDTO]
// @Router /v1/sessions/{sid} [put]
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	var req dto.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	session, ok := loadOwnedSession(ctx, c, h.sessionRepo, c.Param("sid"), userID)
	if !ok {
		return
	}

	if err := h.sessionRepo.UpdateTitle(ctx, session.ID, req.Title); err != nil {
		logger.Error(ctx, "failed to update session title", err, "session_id", session.ID)
		dto.InternalError(c, "failed to update session")
		return
	}

	session.Title = req.Title
	dto.Success(c, dto.ToSessionDTO(session))
}

// DeleteSession 删除会话及其全部轮次
// @Summary 删除会话
// @Tags Sessions
// @Produce json
// @Param sid path string true "会话 ID"
// @Success 204 "No Content"
// @Router /v1/sessions/{sid} [delete]
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	session, ok := loadOwnedSession(ctx, c, h.sessionRepo, c.Param("sid"), userID)
	if !ok {
		return
	}

	err := h.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := h.turnRepo.DeleteBySession(txCtx, session.ID); err != nil {
			return err
		}
		return h.sessionRepo.Delete(txCtx, session.ID)
	})
	if err != nil {
		logger.Error(ctx, "failed to delete session", err, "session_id", session.ID)
		dto.InternalError(c, "failed to delete session")
		return
	}

	if h.cache != nil {
		if err := h.cache.InvalidateSession(ctx, session.ID); err != nil {
			logger.Warn(ctx, "failed to invalidate session context cache", "session_id", session.ID, "error", err.Error())
		}
	}
	if h.hub != nil {
		h.hub.Drop(session.ID)
	}

	dto.NoContent(c)
}
