package dto

import (
	"time"

	"ui-forge-api/internal/domain/entity"
)

// CreateSessionRequest 创建会话请求
type CreateSessionRequest struct {
	Title string `json:"title"`
}

// UpdateSessionRequest 更新会话请求
type UpdateSessionRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

// SessionDTO 会话信息
type SessionDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TurnDTO 轮次信息
type TurnDTO struct {
	ID              string    `json:"id"`
	Prompt          string    `json:"prompt"`
	ComponentSource string    `json:"component_source"`
	StyleSource     string    `json:"style_source"`
	CreatedAt       time.Time `json:"created_at"`
}

// SessionDetailDTO 会话详情（含轮次，按创建时间升序）
type SessionDetailDTO struct {
	SessionDTO
	Turns []*TurnDTO `json:"turns"`
}

// ToSessionDTO 实体转会话 DTO
func ToSessionDTO(session *entity.Session) *SessionDTO {
	return &SessionDTO{
		ID:        session.ID,
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}

// ToSessionDTOs 实体列表转会话 DTO 列表
func ToSessionDTOs(sessions []*entity.Session) []*SessionDTO {
	out := make([]*SessionDTO, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, ToSessionDTO(s))
	}
	return out
}

// ToTurnDTO 实体转轮次 DTO
func ToTurnDTO(turn *entity.Turn) *TurnDTO {
	return &TurnDTO{
		ID:              turn.ID,
		Prompt:          turn.Prompt,
		ComponentSource: turn.ComponentSource,
		StyleSource:     turn.StyleSource,
		CreatedAt:       turn.CreatedAt,
	}
}

// ToTurnDTOs 实体列表转轮次 DTO 列表
func ToTurnDTOs(turns []*entity.Turn) []*TurnDTO {
	out := make([]*TurnDTO, 0, len(turns))
	for _, t := range turns {
		out = append(out, ToTurnDTO(t))
	}
	return out
}
