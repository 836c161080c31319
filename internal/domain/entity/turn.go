// Package entity 定义领域实体
package entity

import (
	"time"
)

// Turn 对话轮次：一次 prompt/生成交换，仅追加，归属唯一会话
// ComponentSource/StyleSource 恒为已定义字符串，允许为空
type Turn struct {
	ID              string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID       string    `json:"session_id" gorm:"type:uuid;index;not null"`
	Prompt          string    `json:"prompt" gorm:"type:text;not null"`
	ComponentSource string    `json:"component_source" gorm:"type:text;not null"`
	StyleSource     string    `json:"style_source" gorm:"type:text;not null"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

func (Turn) TableName() string {
	return "turns"
}

// NewTurn 创建轮次
func NewTurn(sessionID, prompt string, artifact Artifact) *Turn {
	return &Turn{
		SessionID:       sessionID,
		Prompt:          prompt,
		ComponentSource: artifact.ComponentSource,
		StyleSource:     artifact.StyleSource,
		CreatedAt:       time.Now(),
	}
}

// ArtifactOf 取出轮次携带的产物
func (t *Turn) ArtifactOf() Artifact {
	return Artifact{
		ComponentSource: t.ComponentSource,
		StyleSource:     t.StyleSource,
	}
}
