package handler

import (
	"github.com/gin-gonic/gin"

	"ui-forge-api/internal/application/generation"
	"ui-forge-api/internal/interfaces/http/dto"
)

// GenerationHandler 组件生成处理器
type GenerationHandler struct {
	svc *generation.Service
}

// NewGenerationHandler 创建生成处理器
func NewGenerationHandler(svc *generation.Service) *GenerationHandler {
	return &GenerationHandler{svc: svc}
}

// GenerateStandalone 无会话生成
// @Summary 无会话生成组件
// @Tags Generation
// @Accept json
// @Produce json
// @Param body body dto.StandaloneGenerateRequest true "生成请求"
// @Success 200 {object} dto.Response[dto.StandaloneGenerateResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/generate [post]
func (h *GenerationHandler) GenerateStandalone(c *gin.Context) {
	var req dto.StandaloneGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.GenerateStandalone(c.Request.Context(), req.Context, req.Prompt)
	if err != nil {
		dto.FromError(c, err)
		return
	}

	dto.Success(c, &dto.StandaloneGenerateResponse{
		ComponentSource: result.Artifact.ComponentSource,
		StyleSource:     result.Artifact.StyleSource,
		RawText:         result.RawText,
	})
}

// GenerateInSession 会话内生成
// @Summary 会话内生成组件
// @Tags Generation
// @Accept json
// @Produce json
// @Param sid path string true "会话 ID"
// @Param body body dto.SessionGenerateRequest true "生成请求"
// @Success 200 {object} dto.Response[dto.SessionGenerateResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/sessions/{sid}/generate [post]
func (h *GenerationHandler) GenerateInSession(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	var req dto.SessionGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.GenerateInSession(c.Request.Context(), c.Param("sid"), userID, req.Prompt)
	if err != nil {
		dto.FromError(c, err)
		return
	}

	dto.Success(c, &dto.SessionGenerateResponse{
		TurnID:          result.Turn.ID,
		ComponentSource: result.Turn.ComponentSource,
		StyleSource:     result.Turn.StyleSource,
		RenderEpoch:     result.RenderEpoch,
	})
}
