// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"ui-forge-api/internal/domain/entity"
	"ui-forge-api/internal/domain/repository"
)

type SessionRepository struct {
	client *Client
}

func NewSessionRepository(client *Client) *SessionRepository {
	return &SessionRepository{client: client}
}

func (r *SessionRepository) Create(ctx context.Context, session *entity.Session) error {
	ctx, span := tracer.Start(ctx, "postgres.SessionRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(session).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	ctx, span := tracer.Start(ctx, "postgres.SessionRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var session entity.Session
	if err := db.First(&session, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) ListByOwner(ctx context.Context, ownerID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Session], error) {
	ctx, span := tracer.Start(ctx, "postgres.SessionRepository.ListByOwner")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Session{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	var sessions []*entity.Session
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&sessions).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return repository.NewPagedResult(sessions, total, pagination), nil
}

func (r *SessionRepository) UpdateTitle(ctx context.Context, id, title string) error {
	ctx, span := tracer.Start(ctx, "postgres.SessionRepository.UpdateTitle")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Session{}).Where("id = ?", id).Update("title", title).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update session title: %w", err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.SessionRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Session{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
