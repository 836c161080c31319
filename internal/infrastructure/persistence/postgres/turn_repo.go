// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"ui-forge-api/internal/domain/entity"
)

type TurnRepository struct {
	client *Client
}

func NewTurnRepository(client *Client) *TurnRepository {
	return &TurnRepository{client: client}
}

func (r *TurnRepository) Create(ctx context.Context, turn *entity.Turn) error {
	ctx, span := tracer.Start(ctx, "postgres.TurnRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(turn).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create turn: %w", err)
	}
	return nil
}

func (r *TurnRepository) ListRecent(ctx context.Context, sessionID string, limit int) ([]*entity.Turn, error) {
	ctx, span := tracer.Start(ctx, "postgres.TurnRepository.ListRecent")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var turns []*entity.Turn
	if err := db.Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&turns).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list recent turns: %w", err)
	}
	return turns, nil
}

func (r *TurnRepository) ListBySession(ctx context.Context, sessionID string) ([]*entity.Turn, error) {
	ctx, span := tracer.Start(ctx, "postgres.TurnRepository.ListBySession")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var turns []*entity.Turn
	if err := db.Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&turns).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list turns: %w", err)
	}
	return turns, nil
}

func (r *TurnRepository) LatestCreatedAt(ctx context.Context, sessionID string) (*time.Time, error) {
	ctx, span := tracer.Start(ctx, "postgres.TurnRepository.LatestCreatedAt")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var turn entity.Turn
	if err := db.Where("session_id = ?", sessionID).
		Order("created_at DESC").
		First(&turn).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get latest turn time: %w", err)
	}
	return &turn.CreatedAt, nil
}

func (r *TurnRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	ctx, span := tracer.Start(ctx, "postgres.TurnRepository.DeleteBySession")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Turn{}, "session_id = ?", sessionID).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete session turns: %w", err)
	}
	return nil
}
