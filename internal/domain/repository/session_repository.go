// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"time"

	"ui-forge-api/internal/domain/entity"
)

// SessionRepository 会话仓储接口
type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	ListByOwner(ctx context.Context, ownerID string, pagination Pagination) (*PagedResult[*entity.Session], error)
	UpdateTitle(ctx context.Context, id, title string) error
	Delete(ctx context.Context, id string) error
}

// TurnRepository 轮次仓储接口
type TurnRepository interface {
	Create(ctx context.Context, turn *entity.Turn) error
	// ListRecent 按创建时间倒序返回会话最近的 limit 条轮次
	ListRecent(ctx context.Context, sessionID string, limit int) ([]*entity.Turn, error)
	ListBySession(ctx context.Context, sessionID string) ([]*entity.Turn, error)
	// LatestCreatedAt 返回会话最新轮次的创建时间，会话无轮次时返回 nil
	LatestCreatedAt(ctx context.Context, sessionID string) (*time.Time, error)
	DeleteBySession(ctx context.Context, sessionID string) error
}
