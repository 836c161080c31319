// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"ui-forge-api/internal/domain/entity"
	"ui-forge-api/internal/domain/repository"
	"ui-forge-api/internal/interfaces/http/dto"
	"ui-forge-api/pkg/logger"
)

// requesterID 取认证中间件注入的调用方标识
func requesterID(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		dto.Unauthorized(c, "requester identity missing")
		return "", false
	}
	return userID, true
}

// loadOwnedSession 加载会话并校验归属。
// 会话不存在与归属不符分别返回 404/403，失败时已写入响应
func loadOwnedSession(ctx context.Context, c *gin.Context, sessions repository.SessionRepository, sessionID, userID string) (*entity.Session, bool) {
	session, err := sessions.GetByID(ctx, sessionID)
	if err != nil {
		logger.Error(ctx, "failed to load session", err, "session_id", sessionID)
		dto.InternalError(c, "failed to load session")
		return nil, false
	}
	if session == nil {
		dto.NotFound(c, "session not found")
		return nil, false
	}
	if !session.IsOwnedBy(userID) {
		dto.Forbidden(c, "session does not belong to the requester")
		return nil, false
	}
	return session, true
}
