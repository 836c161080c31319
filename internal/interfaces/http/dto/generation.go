package dto

// StandaloneGenerateRequest 无会话生成请求，上下文由调用方自带
type StandaloneGenerateRequest struct {
	Prompt  string `json:"prompt" binding:"required"`
	Context string `json:"context"`
}

// StandaloneGenerateResponse 无会话生成响应
type StandaloneGenerateResponse struct {
	ComponentSource string `json:"component_source"`
	StyleSource     string `json:"style_source"`
	RawText         string `json:"raw_text"`
}

// SessionGenerateRequest 会话内生成请求
type SessionGenerateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// SessionGenerateResponse 会话内生成响应
type SessionGenerateResponse struct {
	TurnID          string `json:"turn_id"`
	ComponentSource string `json:"component_source"`
	StyleSource     string `json:"style_source"`
	RenderEpoch     uint64 `json:"render_epoch"`
}
