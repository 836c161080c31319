// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(v1 *gin.RouterGroup, h Handlers) {
	// 认证管理
	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.POST("/logout", h.Auth.Logout)
	}

	// 无会话生成
	v1.POST("/generate", h.Generation.GenerateStandalone)

	// 会话管理
	sessions := v1.Group("/sessions")
	{
		sessions.GET("", h.Session.ListSessions)
		sessions.POST("", h.Session.CreateSession)
		sessions.GET("/:sid", h.Session.GetSession)
		sessions.PUT("/:sid", h.Session.UpdateSession)
		sessions.DELETE("/:sid", h.Session.DeleteSession)

		// 会话内生成
		sessions.POST("/:sid/generate", h.Generation.GenerateInSession)

		// 预览事件流 (SSE)
		sessions.GET("/:sid/preview/stream", h.Preview.Stream)
	}
}
