// Package entity 定义领域实体
package entity

import (
	"time"
)

// DefaultSessionTitle 未命名会话的标题
const DefaultSessionTitle = "New Session"

// Session 会话实体：用户独占的对话容器，OwnerID 创建后不可变更
type Session struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerID   string    `json:"owner_id" gorm:"type:uuid;index;not null"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Session) TableName() string {
	return "sessions"
}

// NewSession 创建会话
func NewSession(ownerID, title string) *Session {
	now := time.Now()
	if title == "" {
		title = DefaultSessionTitle
	}
	return &Session{
		OwnerID:   ownerID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsOwnedBy 检查会话归属
func (s *Session) IsOwnedBy(userID string) bool {
	return s.OwnerID == userID
}
